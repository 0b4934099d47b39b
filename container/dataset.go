package container

import (
	"fmt"

	"github.com/vsamtuc/tables/compress"
	"github.com/vsamtuc/tables/endian"
	"github.com/vsamtuc/tables/errs"
	"github.com/vsamtuc/tables/format"
)

// chunkBlockHeaderSize is the fixed header preceding every chunk payload:
// dataset id, chunk sequence, raw length, stored length, codec byte.
const chunkBlockHeaderSize = 17

// DefaultChunkRows is the chunk size used when a dataset is created without
// an explicit one.
const DefaultChunkRows = 16

// chunkRef locates one stored chunk within the file.
type chunkRef struct {
	offset    uint64 // file offset of the payload (past the block header)
	rawLen    uint32 // uncompressed payload length
	storedLen uint32 // on-disk payload length
}

// Dataset is an extendible one-dimensional array of compound records.
//
// Appended records are buffered until a chunk fills, then the chunk is
// compressed and written. All chunks except the last hold exactly chunkRows
// records. Closing the dataset, or flushing or closing the owning file,
// persists its tail chunk; the file does not mark its datasets closed.
type Dataset struct {
	file        *File
	id          uint32
	name        string
	ctype       *CompoundType
	chunkRows   int
	compression format.Compression
	codec       compress.Codec

	rows   uint64
	chunks []chunkRef

	pending []byte // buffered records of the unwritten tail chunk
	open    bool

	// read-side cache: the last decompressed chunk
	cachedChunk int
	cachedData  []byte
}

func newDataset(f *File, name string, ctype *CompoundType, chunkRows int, compression format.Compression) (*Dataset, error) {
	if ctype.Size == 0 {
		return nil, fmt.Errorf("dataset %s: zero-size record type", name)
	}
	if chunkRows <= 0 {
		chunkRows = DefaultChunkRows
	}
	codec, err := compress.GetCodec(compression)
	if err != nil {
		return nil, err
	}

	ds := &Dataset{
		file:        f,
		id:          f.nextID,
		name:        name,
		ctype:       ctype,
		chunkRows:   chunkRows,
		compression: compression,
		codec:       codec,
		open:        true,
		cachedChunk: -1,
	}
	f.nextID++

	return ds, nil
}

// Name returns the dataset's full name within the container.
func (ds *Dataset) Name() string { return ds.name }

// Type returns the dataset's compound record type.
func (ds *Dataset) Type() *CompoundType { return ds.ctype }

// Rows returns the current number of records.
func (ds *Dataset) Rows() uint64 { return ds.rows }

// reopen prepares a catalog-loaded dataset for further appends. A partial
// tail chunk is read back into the pending buffer and its block superseded,
// so appends continue to fill it.
func (ds *Dataset) reopen() error {
	if ds.open {
		return fmt.Errorf("%w: dataset %s", errs.ErrAlreadyOpen, ds.name)
	}
	ds.open = true
	ds.cachedChunk = -1
	ds.cachedData = nil

	if n := len(ds.chunks); n > 0 {
		tail := ds.chunks[n-1]
		if tail.rawLen < uint32(ds.chunkRows)*ds.ctype.Size {
			data, err := ds.readChunk(n - 1)
			if err != nil {
				return err
			}
			ds.pending = append(ds.pending[:0], data...)
			ds.chunks = ds.chunks[:n-1]
		}
	}

	return nil
}

// Append extends the dataset by one record. The record must be exactly one
// compound type footprint long.
func (ds *Dataset) Append(record []byte) error {
	if !ds.open {
		return fmt.Errorf("%w: dataset %s", errs.ErrClosed, ds.name)
	}
	if uint32(len(record)) != ds.ctype.Size {
		return fmt.Errorf("%w: record is %d bytes, type needs %d",
			errs.ErrTypeMismatch, len(record), ds.ctype.Size)
	}

	ds.pending = append(ds.pending, record...)
	ds.rows++

	if len(ds.pending) >= ds.chunkRows*int(ds.ctype.Size) {
		return ds.flushChunk()
	}

	return nil
}

// flushChunk compresses the pending records and appends them as a chunk block.
func (ds *Dataset) flushChunk() error {
	if len(ds.pending) == 0 {
		return nil
	}

	payload, err := ds.codec.Compress(ds.pending)
	if err != nil {
		return fmt.Errorf("compressing chunk of %s: %w", ds.name, err)
	}

	engine := ds.file.engine
	block := make([]byte, 0, chunkBlockHeaderSize+len(payload))
	block = engine.AppendUint32(block, ds.id)
	block = engine.AppendUint32(block, uint32(len(ds.chunks)))
	block = engine.AppendUint32(block, uint32(len(ds.pending)))
	block = engine.AppendUint32(block, uint32(len(payload)))
	block = append(block, byte(ds.compression))
	block = append(block, payload...)

	offset := ds.file.appendOffset
	if _, err := ds.file.fd.WriteAt(block, int64(offset)); err != nil {
		return fmt.Errorf("writing chunk of %s: %w", ds.name, err)
	}
	ds.file.appendOffset = offset + uint64(len(block))

	ds.chunks = append(ds.chunks, chunkRef{
		offset:    offset + chunkBlockHeaderSize,
		rawLen:    uint32(len(ds.pending)),
		storedLen: uint32(len(payload)),
	})
	ds.pending = ds.pending[:0]

	return nil
}

// Close flushes the tail chunk and marks the dataset closed. The catalog is
// persisted by the owning file's Flush/Close.
func (ds *Dataset) Close() error {
	if !ds.open {
		return fmt.Errorf("%w: dataset %s", errs.ErrClosed, ds.name)
	}
	if err := ds.flushChunk(); err != nil {
		return err
	}
	ds.open = false
	ds.cachedChunk = -1
	ds.cachedData = nil

	return nil
}

// readChunk returns the decompressed records of chunk i.
func (ds *Dataset) readChunk(i int) ([]byte, error) {
	ref := ds.chunks[i]
	stored := make([]byte, ref.storedLen)
	if _, err := ds.file.fd.ReadAt(stored, int64(ref.offset)); err != nil {
		return nil, fmt.Errorf("%w: short chunk %d of %s", errs.ErrCorruptContainer, i, ds.name)
	}
	data, err := ds.codec.Decompress(stored)
	if err != nil {
		return nil, fmt.Errorf("decompressing chunk %d of %s: %w", i, ds.name, err)
	}
	if uint32(len(data)) != ref.rawLen {
		return nil, fmt.Errorf("%w: chunk %d of %s decompressed to %d bytes, expected %d",
			errs.ErrCorruptContainer, i, ds.name, len(data), ref.rawLen)
	}

	return data, nil
}

// ReadRow copies record i into dst, which must be at least one record long.
// Rows still buffered in the pending tail are served from memory.
func (ds *Dataset) ReadRow(i uint64, dst []byte) error {
	if i >= ds.rows {
		return fmt.Errorf("row %d out of range (%d rows)", i, ds.rows)
	}
	recSize := int(ds.ctype.Size)
	if len(dst) < recSize {
		return fmt.Errorf("destination buffer too small: %d < %d", len(dst), recSize)
	}

	chunkIdx := int(i) / ds.chunkRows
	within := int(i) % ds.chunkRows

	if chunkIdx >= len(ds.chunks) {
		// The row is in the pending buffer.
		start := (int(i) - len(ds.chunks)*ds.chunkRows) * recSize
		copy(dst, ds.pending[start:start+recSize])

		return nil
	}

	if ds.cachedChunk != chunkIdx {
		data, err := ds.readChunk(chunkIdx)
		if err != nil {
			return err
		}
		ds.cachedChunk = chunkIdx
		ds.cachedData = data
	}
	start := within * recSize
	if start+recSize > len(ds.cachedData) {
		return fmt.Errorf("%w: row %d beyond chunk %d of %s",
			errs.ErrCorruptContainer, i, chunkIdx, ds.name)
	}
	copy(dst, ds.cachedData[start:start+recSize])

	return nil
}

// appendTo serializes the dataset descriptor in catalog form.
func (ds *Dataset) appendTo(buf []byte, engine endian.EndianEngine) []byte {
	buf = engine.AppendUint32(buf, ds.id)
	buf = engine.AppendUint16(buf, uint16(len(ds.name)))
	buf = append(buf, ds.name...)
	buf = engine.AppendUint32(buf, uint32(ds.chunkRows))
	buf = engine.AppendUint64(buf, ds.rows)
	buf = append(buf, byte(ds.compression))
	buf = engine.AppendUint64(buf, ds.ctype.Signature())
	buf = ds.ctype.appendTo(buf, engine)
	buf = engine.AppendUint32(buf, uint32(len(ds.chunks)))
	for _, c := range ds.chunks {
		buf = engine.AppendUint64(buf, c.offset)
		buf = engine.AppendUint32(buf, c.rawLen)
		buf = engine.AppendUint32(buf, c.storedLen)
	}

	return buf
}

// parseDataset decodes a catalog descriptor, returning the dataset and the
// number of bytes consumed.
func parseDataset(data []byte, f *File) (*Dataset, int, error) {
	engine := f.engine
	if len(data) < 6 {
		return nil, 0, errTruncated("dataset header")
	}
	id := engine.Uint32(data[0:4])
	nameLen := int(engine.Uint16(data[4:6]))
	pos := 6
	if len(data) < pos+nameLen+21 {
		return nil, 0, errTruncated("dataset descriptor")
	}
	name := string(data[pos : pos+nameLen])
	pos += nameLen
	chunkRows := int(engine.Uint32(data[pos : pos+4]))
	pos += 4
	rows := engine.Uint64(data[pos : pos+8])
	pos += 8
	compression := format.Compression(data[pos])
	pos++
	signature := engine.Uint64(data[pos : pos+8])
	pos += 8

	ctype, n, err := parseCompound(data[pos:], engine)
	if err != nil {
		return nil, 0, err
	}
	pos += n
	if ctype.Signature() != signature {
		return nil, 0, fmt.Errorf("%w: compound signature mismatch for %s",
			errs.ErrCorruptContainer, name)
	}

	if len(data) < pos+4 {
		return nil, 0, errTruncated("chunk list")
	}
	chunkCount := int(engine.Uint32(data[pos : pos+4]))
	pos += 4
	if len(data) < pos+chunkCount*16 {
		return nil, 0, errTruncated("chunk refs")
	}
	chunks := make([]chunkRef, 0, chunkCount)
	for i := 0; i < chunkCount; i++ {
		chunks = append(chunks, chunkRef{
			offset:    engine.Uint64(data[pos : pos+8]),
			rawLen:    engine.Uint32(data[pos+8 : pos+12]),
			storedLen: engine.Uint32(data[pos+12 : pos+16]),
		})
		pos += 16
	}

	codec, err := compress.GetCodec(compression)
	if err != nil {
		return nil, 0, err
	}

	return &Dataset{
		file:        f,
		id:          id,
		name:        name,
		ctype:       ctype,
		chunkRows:   chunkRows,
		compression: compression,
		codec:       codec,
		rows:        rows,
		chunks:      chunks,
		cachedChunk: -1,
	}, pos, nil
}
