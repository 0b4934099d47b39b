package format

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindProperties(t *testing.T) {
	tests := []struct {
		kind       Kind
		name       string
		size       int
		align      int
		arithmetic bool
	}{
		{KindBool, "bool", 1, 1, true},
		{KindInt8, "int8", 1, 1, true},
		{KindInt16, "int16", 2, 2, true},
		{KindInt32, "int32", 4, 4, true},
		{KindInt64, "int64", 8, 8, true},
		{KindUint8, "uint8", 1, 1, true},
		{KindUint16, "uint16", 2, 2, true},
		{KindUint32, "uint32", 4, 4, true},
		{KindUint64, "uint64", 8, 8, true},
		{KindFloat32, "float32", 4, 4, true},
		{KindFloat64, "float64", 8, 8, true},
		{KindString, "string", 0, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.name, tt.kind.String())
			require.Equal(t, tt.size, tt.kind.Size())
			require.Equal(t, tt.align, tt.kind.Align())
			require.Equal(t, tt.arithmetic, tt.kind.IsArithmetic())
			require.True(t, tt.kind.Valid())
		})
	}
}

func TestKindAlignPowerOfTwo(t *testing.T) {
	for k := KindBool; k <= KindString; k++ {
		al := k.Align()
		require.Zero(t, al&(al-1), "kind %s align %d", k, al)
	}
}

func TestInvalidKind(t *testing.T) {
	require.False(t, KindInvalid.Valid())
	require.False(t, KindInvalid.IsArithmetic())
	require.Equal(t, "unknown", Kind(0xFF).String())
}

func TestEnumStrings(t *testing.T) {
	require.Equal(t, "csvtab", CSVTab.String())
	require.Equal(t, "csvrel", CSVRel.String())
	require.Equal(t, "truncate", Truncate.String())
	require.Equal(t, "append", Append.String())
	require.Equal(t, "Zstd", CompressionZstd.String())
	require.Equal(t, "None", CompressionNone.String())
	require.Equal(t, "LZ4", CompressionLZ4.String())
	require.Equal(t, "S2", CompressionS2.String())
}
