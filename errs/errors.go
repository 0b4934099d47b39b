// Package errs defines the sentinel errors shared across the tables module.
//
// Callers should test for these with errors.Is; call sites wrap them with
// fmt.Errorf("%w: ...") to attach context.
package errs

import "errors"

// Naming errors.
var (
	// ErrEmptyName is returned when a column item is created with an empty name.
	ErrEmptyName = errors.New("column item name is empty")

	// ErrDuplicateName is returned when two siblings of the same group would
	// share a name.
	ErrDuplicateName = errors.New("duplicate item name in group")

	// ErrDuplicateTable is returned when a table name is already registered.
	ErrDuplicateTable = errors.New("table name already registered")

	// ErrItemNotFound is returned when a path does not resolve to an item.
	ErrItemNotFound = errors.New("item not found")

	// ErrNotColumn is returned when a path resolves to an item that is not a
	// basic column.
	ErrNotColumn = errors.New("item is not a column")
)

// Lifecycle errors.
var (
	// ErrChildIsTable is returned when a table is added as a child of a group.
	ErrChildIsTable = errors.New("cannot add a table to a group")

	// ErrAlreadyParented is returned when an item that already has a parent is
	// added to a group.
	ErrAlreadyParented = errors.New("item already belongs to a group")

	// ErrNotChild is returned when an item is removed from a group it does not
	// belong to.
	ErrNotChild = errors.New("item not a child of this group")

	// ErrTableLocked is returned by structural mutations between Prolog and
	// Epilog.
	ErrTableLocked = errors.New("table is locked")

	// ErrNotStarted is returned by EmitRow before Prolog has been called.
	ErrNotStarted = errors.New("prolog has not been called")

	// ErrAlreadyOpen is returned when opening a sink that already has a stream.
	ErrAlreadyOpen = errors.New("sink already open")

	// ErrClosed is returned when operating on a closed sink or container.
	ErrClosed = errors.New("already closed")
)

// Type errors.
var (
	// ErrNotArithmetic is returned when SetFloat is called on a non-arithmetic
	// column.
	ErrNotArithmetic = errors.New("column is not arithmetic")

	// ErrNotString is returned when SetString is called on a non-string column.
	ErrNotString = errors.New("column is not textual")

	// ErrTypeMismatch is returned when appending to a dataset whose on-disk
	// compound type differs from the computed one.
	ErrTypeMismatch = errors.New("compound type mismatch")

	// ErrUnknownKind is returned when the binary encoder has no mapping for a
	// column kind.
	ErrUnknownKind = errors.New("no binary mapping for kind")
)

// Container errors.
var (
	// ErrDatasetExists is returned when creating a dataset over an existing name.
	ErrDatasetExists = errors.New("dataset already exists")

	// ErrDatasetNotFound is returned when opening a missing dataset.
	ErrDatasetNotFound = errors.New("dataset not found")

	// ErrBadMagic is returned when a container file has an unrecognized
	// superblock.
	ErrBadMagic = errors.New("invalid container magic")

	// ErrCorruptContainer is returned when catalog or chunk data is malformed.
	ErrCorruptContainer = errors.New("corrupt container")
)

// URL errors.
var (
	// ErrMalformedURL is returned when a sink URL does not match the grammar.
	ErrMalformedURL = errors.New("malformed sink URL")

	// ErrUnknownScheme is returned for URL schemes with no registered sink.
	ErrUnknownScheme = errors.New("unknown sink scheme")

	// ErrBadOption is returned for unrecognized URL option values.
	ErrBadOption = errors.New("illegal option value in URL")
)
