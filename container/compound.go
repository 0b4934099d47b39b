package container

import (
	"github.com/cespare/xxhash/v2"

	"github.com/vsamtuc/tables/endian"
	"github.com/vsamtuc/tables/format"
)

// Field describes one member of a compound record type.
type Field struct {
	Name   string
	Kind   format.Kind
	Size   uint32 // value footprint in bytes
	Align  uint32 // alignment requirement, power of two
	Offset uint32 // byte offset within the record
}

// CompoundType is the fixed layout of a dataset record: an ordered field
// sequence with precomputed offsets, total record size and record alignment.
//
// A CompoundType is immutable once built. Datasets persist their compound
// type in the catalog, which makes container files self-describing.
type CompoundType struct {
	Fields []Field
	Size   uint32 // total record size including tail padding
	Align  uint32 // max field alignment
}

// CompoundBuilder accumulates fields and computes the record layout.
//
// Offsets follow the usual struct packing law: each field is placed at the
// next multiple of its own alignment, and the record is padded at the tail to
// a multiple of the record alignment (the maximum field alignment).
type CompoundBuilder struct {
	fields []Field
	pos    uint32
	align  uint32
}

// NewCompoundBuilder creates an empty compound layout builder.
func NewCompoundBuilder() *CompoundBuilder {
	return &CompoundBuilder{align: 1}
}

func alignUp(pos, align uint32) uint32 {
	return align * ((pos + align - 1) / align)
}

// Add appends a field of the given size and alignment, placing it at the next
// offset that satisfies the alignment. align must be a power of two.
func (b *CompoundBuilder) Add(name string, kind format.Kind, size, align uint32) {
	if align == 0 {
		align = 1
	}
	b.pos = alignUp(b.pos, align)
	b.fields = append(b.fields, Field{
		Name:   name,
		Kind:   kind,
		Size:   size,
		Align:  align,
		Offset: b.pos,
	})
	b.pos += size
	if align > b.align {
		b.align = align
	}
}

// Build finalizes the layout and returns the compound type.
func (b *CompoundBuilder) Build() *CompoundType {
	return &CompoundType{
		Fields: b.fields,
		Size:   alignUp(b.pos, b.align),
		Align:  b.align,
	}
}

// Equal reports exact layout equality: same fields, in order, with identical
// names, kinds, sizes, alignments and offsets, and the same record footprint.
func (t *CompoundType) Equal(o *CompoundType) bool {
	if t.Size != o.Size || t.Align != o.Align || len(t.Fields) != len(o.Fields) {
		return false
	}
	for i := range t.Fields {
		if t.Fields[i] != o.Fields[i] {
			return false
		}
	}

	return true
}

// Signature returns a 64-bit xxHash of the canonical serialized layout.
//
// The signature is stored in the catalog and used as the fast path of the
// append-mode type check: differing signatures are certainly unequal types,
// matching signatures are confirmed with Equal.
func (t *CompoundType) Signature() uint64 {
	return xxhash.Sum64(t.appendTo(nil, endian.GetLittleEndianEngine()))
}

// appendTo serializes the layout in catalog form.
func (t *CompoundType) appendTo(buf []byte, engine endian.EndianEngine) []byte {
	buf = engine.AppendUint32(buf, t.Size)
	buf = engine.AppendUint32(buf, t.Align)
	buf = engine.AppendUint32(buf, uint32(len(t.Fields)))
	for _, f := range t.Fields {
		buf = engine.AppendUint16(buf, uint16(len(f.Name)))
		buf = append(buf, f.Name...)
		buf = append(buf, byte(f.Kind))
		buf = engine.AppendUint32(buf, f.Size)
		buf = engine.AppendUint32(buf, f.Align)
		buf = engine.AppendUint32(buf, f.Offset)
	}

	return buf
}

// parseCompound decodes a layout serialized by appendTo, returning the type
// and the number of bytes consumed.
func parseCompound(data []byte, engine endian.EndianEngine) (*CompoundType, int, error) {
	if len(data) < 12 {
		return nil, 0, errTruncated("compound header")
	}
	t := &CompoundType{
		Size:  engine.Uint32(data[0:4]),
		Align: engine.Uint32(data[4:8]),
	}
	count := int(engine.Uint32(data[8:12]))
	pos := 12
	t.Fields = make([]Field, 0, count)
	for i := 0; i < count; i++ {
		if len(data) < pos+2 {
			return nil, 0, errTruncated("field name length")
		}
		nameLen := int(engine.Uint16(data[pos : pos+2]))
		pos += 2
		if len(data) < pos+nameLen+13 {
			return nil, 0, errTruncated("field descriptor")
		}
		f := Field{Name: string(data[pos : pos+nameLen])}
		pos += nameLen
		f.Kind = format.Kind(data[pos])
		pos++
		f.Size = engine.Uint32(data[pos : pos+4])
		f.Align = engine.Uint32(data[pos+4 : pos+8])
		f.Offset = engine.Uint32(data[pos+8 : pos+12])
		pos += 12
		t.Fields = append(t.Fields, f)
	}

	return t, pos, nil
}
