package compress

// ZstdCompressor implements Zstandard compression for chunk payloads. Best
// ratio of the built-in codecs; the right choice for archival containers.
//
// Two implementations exist behind build tags: a cgo binding (valyala/gozstd)
// when cgo is available, and a pure-Go fallback (klauspost/compress/zstd).
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd codec with default settings.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
