package container

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vsamtuc/tables/endian"
	"github.com/vsamtuc/tables/format"
)

func buildType(t *testing.T) *CompoundType {
	t.Helper()

	b := NewCompoundBuilder()
	b.Add("flag", format.KindBool, 1, 1)
	b.Add("count", format.KindInt32, 4, 4)
	b.Add("id", format.KindUint64, 8, 8)
	b.Add("label", format.KindString, 8, 1)
	b.Add("ratio", format.KindFloat64, 8, 8)

	return b.Build()
}

func TestCompoundLayout(t *testing.T) {
	ct := buildType(t)

	// flag@0, count aligned to 4 -> 4, id aligned to 8 -> 8, label @16,
	// ratio aligned to 8 -> 24, total padded to align 8 -> 32.
	offsets := []uint32{0, 4, 8, 16, 24}
	for i, f := range ct.Fields {
		require.Equal(t, offsets[i], f.Offset, "field %s", f.Name)
	}
	require.Equal(t, uint32(8), ct.Align)
	require.Equal(t, uint32(32), ct.Size)
}

func TestCompoundOffsetLaw(t *testing.T) {
	ct := buildType(t)

	for i, f := range ct.Fields {
		require.Zero(t, f.Offset%f.Align, "field %s misaligned", f.Name)
		if i > 0 {
			prev := ct.Fields[i-1]
			require.GreaterOrEqual(t, f.Offset, prev.Offset+prev.Size)
		}
	}
	last := ct.Fields[len(ct.Fields)-1]
	require.GreaterOrEqual(t, ct.Size, last.Offset+last.Size)
	require.Zero(t, ct.Size%ct.Align)
}

func TestCompoundSingleField(t *testing.T) {
	b := NewCompoundBuilder()
	b.Add("x", format.KindUint8, 1, 1)
	ct := b.Build()

	require.Equal(t, uint32(1), ct.Size)
	require.Equal(t, uint32(1), ct.Align)
}

func TestCompoundEqualAndSignature(t *testing.T) {
	a := buildType(t)
	b := buildType(t)

	require.True(t, a.Equal(b))
	require.Equal(t, a.Signature(), b.Signature())

	// Renaming one field changes both identity and signature.
	c := buildType(t)
	c.Fields[1].Name = "total"
	require.False(t, a.Equal(c))
	require.NotEqual(t, a.Signature(), c.Signature())

	// A different kind with the same footprint changes identity too.
	d := buildType(t)
	d.Fields[1].Kind = format.KindUint32
	require.False(t, a.Equal(d))
	require.NotEqual(t, a.Signature(), d.Signature())
}

func TestCompoundSerializeRoundTrip(t *testing.T) {
	engine := endian.GetLittleEndianEngine()
	ct := buildType(t)

	buf := ct.appendTo(nil, engine)
	parsed, n, err := parseCompound(buf, engine)

	require.NoError(t, err)
	require.Equal(t, len(buf), n)
	require.True(t, ct.Equal(parsed))
}

func TestCompoundParseTruncated(t *testing.T) {
	engine := endian.GetLittleEndianEngine()
	buf := buildType(t).appendTo(nil, engine)

	for _, cut := range []int{0, 5, 11, len(buf) / 2, len(buf) - 1} {
		_, _, err := parseCompound(buf[:cut], engine)
		require.Error(t, err, "cut at %d", cut)
	}
}
