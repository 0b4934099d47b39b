package table

import (
	"container/list"
)

// Sink consumes table output. Implementations receive the three-phase
// emission protocol: OutputProlog once per session before any row,
// OutputRow per emitted row, OutputEpilog once at session end.
//
// Sink implementations embed SinkCore, which owns the sink side of the
// binding graph and satisfies the unexported accessor.
type Sink interface {
	// OutputProlog prepares the sink for a session of rows from t, e.g. by
	// writing a header or creating a dataset.
	OutputProlog(t *Table) error

	// OutputRow emits one row of t's current column values.
	OutputRow(t *Table) error

	// OutputEpilog concludes the session for t.
	OutputEpilog(t *Table) error

	// Flush pushes buffered output toward the backing store.
	Flush() error

	// Close releases the sink's resources and dissolves all its bindings.
	Close() error

	sinkCore() *SinkCore
}

// SinkCore is the embeddable sink half of the binding graph. It holds the
// sink's adjacency list of bindings.
type SinkCore struct {
	tables list.List // of *Binding
}

func (c *SinkCore) sinkCore() *SinkCore { return c }

// Bindings returns a snapshot of the sink's bindings.
func (c *SinkCore) Bindings() []*Binding {
	return snapshot(&c.tables)
}

// UnbindAll dissolves every binding of this sink. Used by sink teardown;
// tables bound to the sink simply lose the edge.
func (c *SinkCore) UnbindAll() {
	for c.tables.Len() > 0 {
		c.tables.Front().Value.(*Binding).destroy()
	}
}

// Binding is a labeled edge between a table and a sink.
//
// The edge is stored once in each endpoint's adjacency list; the binding
// keeps both list positions so removal is O(1) from either side. Destroying
// either endpoint dissolves all its incident edges.
type Binding struct {
	table   *Table
	sink    Sink
	enabled bool

	inTableList *list.Element
	inSinkList  *list.Element
}

func newBinding(t *Table, s Sink) *Binding {
	b := &Binding{table: t, sink: s, enabled: true}
	b.inTableList = t.sinks.PushBack(b)
	b.inSinkList = s.sinkCore().tables.PushBack(b)

	return b
}

// destroy erases the edge from both adjacency lists.
func (b *Binding) destroy() {
	b.table.sinks.Remove(b.inTableList)
	b.sink.sinkCore().tables.Remove(b.inSinkList)
}

// Table returns the table endpoint.
func (b *Binding) Table() *Table { return b.table }

// Sink returns the sink endpoint.
func (b *Binding) Sink() Sink { return b.sink }

// Enabled reports whether rows flow through this binding.
func (b *Binding) Enabled() bool { return b.enabled }

// SetEnabled toggles row flow through this binding. Prolog and epilog hooks
// run regardless of the flag.
func (b *Binding) SetEnabled(enabled bool) { b.enabled = enabled }

// findBySink scans a table's adjacency list for the binding to s.
func findBySink(l *list.List, s Sink) *Binding {
	for e := l.Front(); e != nil; e = e.Next() {
		if b := e.Value.(*Binding); b.sink == s {
			return b
		}
	}

	return nil
}

// FindBinding scans a sink's adjacency list for the binding to t.
func FindBinding(c *SinkCore, t *Table) *Binding {
	for e := c.tables.Front(); e != nil; e = e.Next() {
		if b := e.Value.(*Binding); b.table == t {
			return b
		}
	}

	return nil
}

func snapshot(l *list.List) []*Binding {
	out := make([]*Binding, 0, l.Len())
	for e := l.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(*Binding))
	}

	return out
}
