package table

import (
	"fmt"
	"io"
	"math"

	"github.com/vsamtuc/tables/endian"
	"github.com/vsamtuc/tables/errs"
	"github.com/vsamtuc/tables/format"
)

// wireOrder is the byte order of raw cell emission. It matches the container
// file's fixed on-disk order.
var wireOrder = endian.GetLittleEndianEngine()

// Column is a leaf of the column hierarchy holding one typed cell value.
//
// A column knows how to render its current value as text (per its printf
// format) and how to copy it raw into a record buffer at a precomputed
// offset. SetFloat and SetString allow writing a cell when only its
// arithmetic/textual nature is known; the mismatching setter fails, and a
// computed column rejects both.
type Column interface {
	Item

	// Format returns the column's text format (fmt verb syntax).
	Format() string

	// Kind returns the column's value kind.
	Kind() format.Kind

	// Size returns the raw value footprint in bytes. For string columns this
	// is maxlen+1, including the NUL terminator.
	Size() int

	// Align returns the raw value alignment. Always a power of two.
	Align() int

	// IsArithmetic reports whether the column holds a numeric or boolean
	// value.
	IsArithmetic() bool

	// EmitText renders the current value to w using the column's format.
	EmitText(w io.Writer) error

	// CopyRaw copies the current value's raw bytes into dst, which must be
	// at least Size() bytes.
	CopyRaw(dst []byte)

	// SetFloat sets an arithmetic column from a float64.
	SetFloat(v float64) error

	// SetString sets a string column.
	SetString(s string) error
}

// colBase carries the metadata shared by all column variants.
type colBase struct {
	node

	format string
	kind   format.Kind
	size   int
	align  int
}

func (c *colBase) initColumn(self Item, parent *Group, name, fmtStr string, kind format.Kind, size, align int) error {
	c.format = fmtStr
	c.kind = kind
	c.size = size
	c.align = align

	return c.initItem(self, parent, name)
}

func (c *colBase) IsColumn() bool     { return true }
func (c *colBase) Format() string     { return c.format }
func (c *colBase) Kind() format.Kind  { return c.kind }
func (c *colBase) Size() int          { return c.size }
func (c *colBase) Align() int         { return c.align }
func (c *colBase) IsArithmetic() bool { return c.kind.IsArithmetic() }

func (c *colBase) SetFloat(float64) error {
	return fmt.Errorf("%w: %s", errs.ErrNotArithmetic, c.name)
}

func (c *colBase) SetString(string) error {
	return fmt.Errorf("%w: %s", errs.ErrNotString, c.name)
}

// Arith constrains the owned value of an arithmetic column.
type Arith interface {
	~bool | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint8 | ~uint16 | ~uint32 | ~uint64 | ~float32 | ~float64
}

// kindOf maps an arithmetic Go type to its kind tag.
func kindOf[T Arith]() format.Kind {
	var z T
	switch any(z).(type) {
	case bool:
		return format.KindBool
	case int8:
		return format.KindInt8
	case int16:
		return format.KindInt16
	case int32:
		return format.KindInt32
	case int64:
		return format.KindInt64
	case uint8:
		return format.KindUint8
	case uint16:
		return format.KindUint16
	case uint32:
		return format.KindUint32
	case uint64:
		return format.KindUint64
	case float32:
		return format.KindFloat32
	case float64:
		return format.KindFloat64
	default:
		return format.KindInvalid
	}
}

// putRaw writes v's wire representation into dst.
func putRaw[T Arith](dst []byte, v T) {
	switch v := any(v).(type) {
	case bool:
		if v {
			dst[0] = 1
		} else {
			dst[0] = 0
		}
	case int8:
		dst[0] = byte(v)
	case int16:
		wireOrder.PutUint16(dst, uint16(v))
	case int32:
		wireOrder.PutUint32(dst, uint32(v))
	case int64:
		wireOrder.PutUint64(dst, uint64(v))
	case uint8:
		dst[0] = v
	case uint16:
		wireOrder.PutUint16(dst, v)
	case uint32:
		wireOrder.PutUint32(dst, v)
	case uint64:
		wireOrder.PutUint64(dst, v)
	case float32:
		wireOrder.PutUint32(dst, math.Float32bits(v))
	case float64:
		wireOrder.PutUint64(dst, math.Float64bits(v))
	}
}

// fromFloat converts a float64 into the column's value type.
func fromFloat[T Arith](v float64) T {
	var z T
	switch p := any(&z).(type) {
	case *bool:
		*p = v != 0
	case *int8:
		*p = int8(v)
	case *int16:
		*p = int16(v)
	case *int32:
		*p = int32(v)
	case *int64:
		*p = int64(v)
	case *uint8:
		*p = uint8(v)
	case *uint16:
		*p = uint16(v)
	case *uint32:
		*p = uint32(v)
	case *uint64:
		*p = uint64(v)
	case *float32:
		*p = float32(v)
	case *float64:
		*p = v
	}

	return z
}

// checkKind rejects value types outside the closed arithmetic set. Types
// derived from the base kinds carry no tag mapping.
func checkKind[T Arith]() (format.Kind, error) {
	kind := kindOf[T]()
	if !kind.Valid() {
		var z T
		return kind, fmt.Errorf("%w: value type %T", errs.ErrUnknownKind, z)
	}

	return kind, nil
}

// Col is an owned arithmetic column: the cell value lives in the column.
type Col[T Arith] struct {
	colBase
	val T
}

// NewCol creates an owned arithmetic column, attached to parent when parent
// is non-nil. fmtStr is the text format of the cell (fmt verb syntax).
func NewCol[T Arith](parent *Group, name, fmtStr string) (*Col[T], error) {
	c := &Col[T]{}
	kind, err := checkKind[T]()
	if err != nil {
		return nil, err
	}
	if err := c.initColumn(c, parent, name, fmtStr, kind, kind.Size(), kind.Align()); err != nil {
		return nil, err
	}

	return c, nil
}

// Value returns the current cell value.
func (c *Col[T]) Value() T { return c.val }

// Set assigns the cell value.
func (c *Col[T]) Set(v T) { c.val = v }

func (c *Col[T]) EmitText(w io.Writer) error {
	_, err := fmt.Fprintf(w, c.format, c.val)
	return err
}

func (c *Col[T]) CopyRaw(dst []byte) { putRaw(dst, c.val) }

func (c *Col[T]) SetFloat(v float64) error {
	c.val = fromFloat[T](v)
	return nil
}

// RefCol is an arithmetic column reading through an external variable: a
// trace on program state, emitted without per-row bookkeeping.
type RefCol[T Arith] struct {
	colBase
	ref *T
}

// NewRefCol creates a reference column bound to the variable at ref.
func NewRefCol[T Arith](parent *Group, name, fmtStr string, ref *T) (*RefCol[T], error) {
	if ref == nil {
		return nil, fmt.Errorf("reference column %s: nil reference", name)
	}
	c := &RefCol[T]{ref: ref}
	kind, err := checkKind[T]()
	if err != nil {
		return nil, err
	}
	if err := c.initColumn(c, parent, name, fmtStr, kind, kind.Size(), kind.Align()); err != nil {
		return nil, err
	}

	return c, nil
}

// Value returns the referenced variable's current value.
func (c *RefCol[T]) Value() T { return *c.ref }

func (c *RefCol[T]) EmitText(w io.Writer) error {
	_, err := fmt.Fprintf(w, c.format, *c.ref)
	return err
}

func (c *RefCol[T]) CopyRaw(dst []byte) { putRaw(dst, *c.ref) }

func (c *RefCol[T]) SetFloat(v float64) error {
	*c.ref = fromFloat[T](v)
	return nil
}

// ComputedCol is an arithmetic column whose value is produced by a function
// at emit time. It cannot be set: SetFloat fails with errs.ErrNotArithmetic.
type ComputedCol[T Arith] struct {
	colBase
	fn func() T
}

// NewComputedCol creates a computed column producing its value from fn.
func NewComputedCol[T Arith](parent *Group, name, fmtStr string, fn func() T) (*ComputedCol[T], error) {
	if fn == nil {
		return nil, fmt.Errorf("computed column %s: nil producer", name)
	}
	c := &ComputedCol[T]{fn: fn}
	kind, err := checkKind[T]()
	if err != nil {
		return nil, err
	}
	if err := c.initColumn(c, parent, name, fmtStr, kind, kind.Size(), kind.Align()); err != nil {
		return nil, err
	}

	return c, nil
}

// Value invokes the producer and returns its result.
func (c *ComputedCol[T]) Value() T { return c.fn() }

func (c *ComputedCol[T]) EmitText(w io.Writer) error {
	_, err := fmt.Fprintf(w, c.format, c.fn())
	return err
}

func (c *ComputedCol[T]) CopyRaw(dst []byte) { putRaw(dst, c.fn()) }

// StringCol is an owned bounded-string column. Its wire footprint is a fixed
// maxlen+1 byte region including a NUL terminator; writes are truncated to
// maxlen bytes.
type StringCol struct {
	colBase
	maxlen int
	val    string
}

// NewStringCol creates an owned string column of capacity maxlen.
func NewStringCol(parent *Group, name string, maxlen int, fmtStr string) (*StringCol, error) {
	if maxlen <= 0 {
		return nil, fmt.Errorf("string column %s: maxlen must be positive", name)
	}
	c := &StringCol{maxlen: maxlen}
	if err := c.initColumn(c, parent, name, fmtStr, format.KindString, maxlen+1, 1); err != nil {
		return nil, err
	}

	return c, nil
}

// MaxLen returns the column's string capacity.
func (c *StringCol) MaxLen() int { return c.maxlen }

// Value returns the current cell value.
func (c *StringCol) Value() string { return c.val }

// Set assigns the cell value, truncated to maxlen bytes.
func (c *StringCol) Set(v string) {
	c.val = truncate(v, c.maxlen)
}

func (c *StringCol) EmitText(w io.Writer) error {
	_, err := fmt.Fprintf(w, c.format, c.val)
	return err
}

func (c *StringCol) CopyRaw(dst []byte) {
	copyString(dst, c.val, c.maxlen)
}

func (c *StringCol) SetString(v string) error {
	c.Set(v)
	return nil
}

// StringRefCol is a bounded-string column reading through an external
// variable. The referenced value is truncated at emit time; the variable
// itself is never modified by emission.
type StringRefCol struct {
	colBase
	maxlen int
	ref    *string
}

// NewStringRefCol creates a string reference column of capacity maxlen bound
// to the variable at ref.
func NewStringRefCol(parent *Group, name string, maxlen int, fmtStr string, ref *string) (*StringRefCol, error) {
	if maxlen <= 0 {
		return nil, fmt.Errorf("string column %s: maxlen must be positive", name)
	}
	if ref == nil {
		return nil, fmt.Errorf("reference column %s: nil reference", name)
	}
	c := &StringRefCol{maxlen: maxlen, ref: ref}
	if err := c.initColumn(c, parent, name, fmtStr, format.KindString, maxlen+1, 1); err != nil {
		return nil, err
	}

	return c, nil
}

// Value returns the referenced variable's value truncated to maxlen.
func (c *StringRefCol) Value() string { return truncate(*c.ref, c.maxlen) }

func (c *StringRefCol) EmitText(w io.Writer) error {
	_, err := fmt.Fprintf(w, c.format, c.Value())
	return err
}

func (c *StringRefCol) CopyRaw(dst []byte) {
	copyString(dst, *c.ref, c.maxlen)
}

func (c *StringRefCol) SetString(v string) error {
	*c.ref = v
	return nil
}

func truncate(s string, maxlen int) string {
	if len(s) > maxlen {
		return s[:maxlen]
	}

	return s
}

// copyString writes the bounded wire form of s: up to maxlen bytes of s, with
// every byte from the end of the string through position maxlen set to NUL.
func copyString(dst []byte, s string, maxlen int) {
	n := copy(dst[:maxlen], s)
	for i := n; i <= maxlen; i++ {
		dst[i] = 0
	}
}
