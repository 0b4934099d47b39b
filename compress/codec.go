// Package compress provides the chunk codecs used by the container package.
//
// Container chunks are small (a handful of KB for typical record sizes), so
// the codecs favor low per-call overhead: encoders and decoders are pooled
// and reused across chunks.
package compress

import (
	"fmt"

	"github.com/vsamtuc/tables/format"
)

// Compressor compresses a chunk payload.
//
// The returned slice is owned by the caller and is newly allocated, except
// for NoOpCompressor, which returns the input slice itself; the input slice
// is not modified.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor restores a chunk payload compressed with the same codec.
//
// Returns an error when the input is corrupted or was produced by a different
// codec.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both directions; chunk readers and writers share one value.
type Codec interface {
	Compressor
	Decompressor
}

var builtinCodecs = map[format.Compression]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec retrieves the built-in Codec for the given compression type.
func GetCodec(compression format.Compression) (Codec, error) {
	if codec, ok := builtinCodecs[compression]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("unsupported compression type: %s", compression)
}
