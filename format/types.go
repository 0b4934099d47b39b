// Package format defines the closed enumerations shared across the tables
// module: column value kinds, text sink formats, sink open modes and chunk
// compression types.
package format

type (
	// Kind is the type tag of a column value.
	Kind uint8

	// TextFormat selects the row format of a text sink.
	TextFormat uint8

	// OpenMode selects truncate or append behavior when a sink opens its
	// backing store.
	OpenMode uint8

	// Compression identifies the codec applied to container chunk payloads.
	Compression uint8
)

const (
	KindInvalid Kind = iota
	KindBool
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
	KindString
)

const (
	// CSVTab formats rows as comma-separated values with a single header row
	// of column names at the top of the stream.
	CSVTab TextFormat = 0x1

	// CSVRel formats rows as comma-separated values prefixed with the table
	// name and writes no header.
	CSVRel TextFormat = 0x2
)

// DefaultTextFormat is used when a sink URL carries no format option.
const DefaultTextFormat = CSVRel

const (
	// Truncate discards any existing object before writing.
	Truncate OpenMode = 0x1

	// Append extends an existing object, subject to type compatibility.
	Append OpenMode = 0x2
)

// DefaultOpenMode is used when a sink URL carries no open_mode option.
const DefaultOpenMode = Truncate

const (
	CompressionNone Compression = 0x1 // CompressionNone stores chunks raw.
	CompressionZstd Compression = 0x2 // CompressionZstd applies Zstandard.
	CompressionS2   Compression = 0x3 // CompressionS2 applies S2.
	CompressionLZ4  Compression = 0x4 // CompressionLZ4 applies LZ4 block compression.
)

// kindInfo carries the fixed properties of each kind. String columns size per
// column (maxlen+1), so the KindString entry carries size 0.
var kindInfo = [...]struct {
	name  string
	size  int
	align int
}{
	KindInvalid: {"invalid", 0, 1},
	KindBool:    {"bool", 1, 1},
	KindInt8:    {"int8", 1, 1},
	KindInt16:   {"int16", 2, 2},
	KindInt32:   {"int32", 4, 4},
	KindInt64:   {"int64", 8, 8},
	KindUint8:   {"uint8", 1, 1},
	KindUint16:  {"uint16", 2, 2},
	KindUint32:  {"uint32", 4, 4},
	KindUint64:  {"uint64", 8, 8},
	KindFloat32: {"float32", 4, 4},
	KindFloat64: {"float64", 8, 8},
	KindString:  {"string", 0, 1},
}

func (k Kind) String() string {
	if int(k) < len(kindInfo) {
		return kindInfo[k].name
	}

	return "unknown"
}

// Size returns the value footprint of an arithmetic kind in bytes.
// String columns size per column; for KindString this returns 0.
func (k Kind) Size() int {
	if int(k) < len(kindInfo) {
		return kindInfo[k].size
	}

	return 0
}

// Align returns the alignment requirement of the kind. Always a power of two.
func (k Kind) Align() int {
	if int(k) < len(kindInfo) {
		return kindInfo[k].align
	}

	return 1
}

// IsArithmetic reports whether the kind is numeric or boolean.
func (k Kind) IsArithmetic() bool {
	return k >= KindBool && k <= KindFloat64
}

// Valid reports whether the kind is one of the defined value kinds.
func (k Kind) Valid() bool {
	return k > KindInvalid && k <= KindString
}

func (f TextFormat) String() string {
	switch f {
	case CSVTab:
		return "csvtab"
	case CSVRel:
		return "csvrel"
	default:
		return "unknown"
	}
}

func (m OpenMode) String() string {
	switch m {
	case Truncate:
		return "truncate"
	case Append:
		return "append"
	default:
		return "unknown"
	}
}

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}
