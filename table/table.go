package table

import (
	"container/list"
	"fmt"

	"github.com/vsamtuc/tables/errs"
)

// Flavor is advice to sinks about a table's role.
type Flavor uint8

const (
	// Results marks a table reporting data after the end of a run.
	Results Flavor = iota

	// TimeSeries marks a table collecting data during a run.
	TimeSeries
)

func (f Flavor) String() string {
	switch f {
	case Results:
		return "results"
	case TimeSeries:
		return "timeseries"
	default:
		return "unknown"
	}
}

func lockedError(t *Table) error {
	return fmt.Errorf("%w: %s", errs.ErrTableLocked, t.Name())
}

// Table is the root of a column hierarchy and the owner of the emission
// protocol.
//
// A table has a process-wide unique name, a set of sink bindings, an
// enabled flag gating emission, and a locked flag set between Prolog and
// Epilog during which the subtree's shape is frozen. The flat sequence of
// descendant columns (pre-order) is cached and rebuilt lazily.
type Table struct {
	Group

	flavor  Flavor
	enabled bool
	locked  bool

	// dirtyColumns invalidates the flat column cache; set by any add or
	// remove anywhere in the subtree.
	dirtyColumns bool
	columns      []Column

	sinks      list.List // of *Binding
	registered bool
}

// New creates a table and registers its name. Construction fails when the
// name is empty or already registered.
func New(name string, flavor Flavor) (*Table, error) {
	t := &Table{flavor: flavor, enabled: true}
	if err := t.Group.init(t, nil, name); err != nil {
		return nil, err
	}
	if err := register(t); err != nil {
		return nil, err
	}
	t.registered = true

	return t, nil
}

// NewTimeSeries creates a time-series table whose first column is a computed
// arithmetic column named "time" bound to clock.
func NewTimeSeries[T Arith](name, timeFormat string, clock func() T) (*Table, error) {
	t, err := New(name, TimeSeries)
	if err != nil {
		return nil, err
	}
	if _, err := NewComputedCol(&t.Group, "time", timeFormat, clock); err != nil {
		t.Close()
		return nil, err
	}

	return t, nil
}

func (t *Table) IsGroup() bool { return false }
func (t *Table) IsTable() bool { return true }

// Table returns the table itself.
func (t *Table) Table() *Table { return t }

// Flavor returns the table's flavor.
func (t *Table) Flavor() Flavor { return t.flavor }

// Enabled reports whether EmitRow emits anything.
func (t *Table) Enabled() bool { return t.enabled }

// SetEnabled toggles emission. A disabled table accepts EmitRow calls and
// writes nothing.
func (t *Table) SetEnabled(enabled bool) { t.enabled = enabled }

// IsLocked reports whether the table is inside its prolog..epilog window.
func (t *Table) IsLocked() bool { return t.locked }

// cleanup compacts the subtree and rebuilds the flat column cache. The
// cache is rebuilt whenever its flag is set, independent of subtree
// dirtiness.
func (t *Table) cleanup() {
	if t.dirty {
		t.dirtyColumns = true
		t.Group.cleanup()
	}
	if t.dirtyColumns {
		t.columns = t.columns[:0]
		t.Visit(func(item Item) {
			if col, ok := item.(Column); ok {
				t.columns = append(t.columns, col)
			}
		})
		t.dirtyColumns = false
	}
}

// Size returns the number of descendant columns, after compaction.
func (t *Table) Size() int {
	t.cleanup()
	return len(t.columns)
}

// ColumnAt returns the i-th descendant column in pre-order.
func (t *Table) ColumnAt(i int) Column {
	t.cleanup()
	return t.columns[i]
}

// ColumnByName resolves a slash-separated path to a column. It fails when
// the path does not resolve or the resolved item is not a column.
func (t *Table) ColumnByName(path string) (Column, error) {
	item, err := t.GetItem(path)
	if err != nil {
		return nil, err
	}
	col, ok := item.(Column)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrNotColumn, path)
	}

	return col, nil
}

// Bind connects the table to a sink and returns the edge. Binding an
// already-bound pair returns the existing edge.
func (t *Table) Bind(s Sink) (*Binding, error) {
	if t.locked {
		return nil, lockedError(t)
	}
	if b := findBySink(&t.sinks, s); b != nil {
		return b, nil
	}

	return newBinding(t, s), nil
}

// Unbind disconnects the table from a sink. It reports whether a binding
// existed; unbinding an unbound sink has no effect.
func (t *Table) Unbind(s Sink) (bool, error) {
	if t.locked {
		return false, lockedError(t)
	}
	b := findBySink(&t.sinks, s)
	found := b != nil
	if found {
		b.destroy()
	}

	return found, nil
}

// UnbindAll dissolves every binding of the table.
func (t *Table) UnbindAll() error {
	if t.locked {
		return lockedError(t)
	}
	for t.sinks.Len() > 0 {
		t.sinks.Front().Value.(*Binding).destroy()
	}

	return nil
}

// Bindings returns a snapshot of the table's bindings.
func (t *Table) Bindings() []*Binding {
	return snapshot(&t.sinks)
}

// Prolog puts the table in output mode: the subtree is compacted, every
// bound sink (enabled or not) gets the prolog hook, and the table locks.
func (t *Table) Prolog() error {
	t.cleanup()

	for e := t.sinks.Front(); e != nil; e = e.Next() {
		b := e.Value.(*Binding)
		if err := b.sink.OutputProlog(t); err != nil {
			return fmt.Errorf("prolog of table %s: %w", t.Name(), err)
		}
	}
	t.locked = true

	return nil
}

// EmitRow emits the current column values to every enabled binding.
//
// With no bindings the call is a no-op. Otherwise it fails before Prolog,
// and short-circuits silently when the table is disabled.
func (t *Table) EmitRow() error {
	if t.sinks.Len() == 0 {
		return nil
	}
	if !t.locked {
		return fmt.Errorf("%w: table %s", errs.ErrNotStarted, t.Name())
	}
	if !t.enabled {
		return nil
	}

	for e := t.sinks.Front(); e != nil; e = e.Next() {
		b := e.Value.(*Binding)
		if !b.enabled {
			continue
		}
		if err := b.sink.OutputRow(t); err != nil {
			return fmt.Errorf("emitting row of table %s: %w", t.Name(), err)
		}
	}

	return nil
}

// Epilog takes the table out of output mode: the lock clears and every
// bound sink (enabled or not) gets the epilog hook.
func (t *Table) Epilog() error {
	t.locked = false

	for e := t.sinks.Front(); e != nil; e = e.Next() {
		b := e.Value.(*Binding)
		if err := b.sink.OutputEpilog(t); err != nil {
			return fmt.Errorf("epilog of table %s: %w", t.Name(), err)
		}
	}

	return nil
}

// Close dissolves all bindings and removes the table from the registry,
// freeing its name for reuse. Closing a locked table fails; closing twice
// is a no-op.
func (t *Table) Close() error {
	if !t.registered {
		return nil
	}
	if t.locked {
		return lockedError(t)
	}
	if err := t.UnbindAll(); err != nil {
		return err
	}
	deregister(t)
	t.registered = false

	return nil
}
