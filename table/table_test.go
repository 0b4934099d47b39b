package table

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vsamtuc/tables/errs"
)

// countingSink records the protocol calls it receives.
type countingSink struct {
	SinkCore

	prologs int
	rows    int
	epilogs int
	closed  bool
}

func (s *countingSink) OutputProlog(*Table) error { s.prologs++; return nil }
func (s *countingSink) OutputRow(*Table) error    { s.rows++; return nil }
func (s *countingSink) OutputEpilog(*Table) error { s.epilogs++; return nil }
func (s *countingSink) Flush() error              { return nil }

func (s *countingSink) Close() error {
	s.UnbindAll()
	s.closed = true

	return nil
}

func TestRegistry(t *testing.T) {
	tab, err := New("registry_r", Results)
	require.NoError(t, err)
	require.Equal(t, tab, Get("registry_r"))
	require.Contains(t, All(), tab)

	// A second table with the same name fails while the first is live.
	_, err = New("registry_r", Results)
	require.ErrorIs(t, err, errs.ErrDuplicateTable)

	// Closing frees the name.
	require.NoError(t, tab.Close())
	require.Nil(t, Get("registry_r"))

	tab2, err := New("registry_r", Results)
	require.NoError(t, err)
	require.NoError(t, tab2.Close())
}

func TestTableCloseIdempotent(t *testing.T) {
	tab, err := New("close_twice", Results)
	require.NoError(t, err)
	require.NoError(t, tab.Close())
	require.NoError(t, tab.Close())
}

func TestTableSizeAfterRemoval(t *testing.T) {
	tab := newTestTable(t, "size_removal")
	grp, err := NewGroup(&tab.Group, "grp")
	require.NoError(t, err)
	_, err = NewCol[int32](grp, "x", "%d")
	require.NoError(t, err)
	_, err = NewCol[int32](grp, "y", "%d")
	require.NoError(t, err)
	_, err = NewCol[int32](&tab.Group, "z", "%d")
	require.NoError(t, err)

	require.Equal(t, 3, tab.Size())

	// Removing the subgroup drops its columns from the count without an
	// explicit cleanup call.
	require.NoError(t, tab.RemoveItem(grp))
	require.Equal(t, 1, tab.Size())

	_, err = tab.GetItem("grp")
	require.ErrorIs(t, err, errs.ErrItemNotFound)
}

func TestColumnOrderAndAccess(t *testing.T) {
	tab := newTestTable(t, "col_access")
	a, err := NewCol[int32](&tab.Group, "a", "%d")
	require.NoError(t, err)
	grp, err := NewGroup(&tab.Group, "grp")
	require.NoError(t, err)
	b, err := NewCol[int32](grp, "b", "%d")
	require.NoError(t, err)
	c, err := NewCol[int32](&tab.Group, "c", "%d")
	require.NoError(t, err)

	// Pre-order flat cache.
	require.Equal(t, 3, tab.Size())
	require.Equal(t, Column(a), tab.ColumnAt(0))
	require.Equal(t, Column(b), tab.ColumnAt(1))
	require.Equal(t, Column(c), tab.ColumnAt(2))

	got, err := tab.ColumnByName("grp/b")
	require.NoError(t, err)
	require.Equal(t, Column(b), got)

	// A group path resolves but is not a column.
	_, err = tab.ColumnByName("grp")
	require.ErrorIs(t, err, errs.ErrNotColumn)

	_, err = tab.ColumnByName("missing")
	require.ErrorIs(t, err, errs.ErrItemNotFound)
}

func TestLockDiscipline(t *testing.T) {
	tab := newTestTable(t, "lock")
	grp, err := NewGroup(&tab.Group, "grp")
	require.NoError(t, err)
	x, err := NewCol[int32](grp, "x", "%d")
	require.NoError(t, err)

	sink := &countingSink{}
	_, err = tab.Bind(sink)
	require.NoError(t, err)

	require.NoError(t, tab.Prolog())
	require.True(t, tab.IsLocked())

	// Every structural mutation on the subtree fails while locked.
	_, err = NewCol[int32](grp, "y", "%d")
	require.ErrorIs(t, err, errs.ErrTableLocked)
	require.ErrorIs(t, grp.RemoveItem(x), errs.ErrTableLocked)
	_, err = tab.Bind(&countingSink{})
	require.ErrorIs(t, err, errs.ErrTableLocked)
	_, err = tab.Unbind(sink)
	require.ErrorIs(t, err, errs.ErrTableLocked)
	require.ErrorIs(t, tab.UnbindAll(), errs.ErrTableLocked)
	require.ErrorIs(t, grp.Detach(), errs.ErrTableLocked)
	require.ErrorIs(t, tab.Close(), errs.ErrTableLocked)

	require.NoError(t, tab.Epilog())
	require.False(t, tab.IsLocked())

	// Outside the window everything works again.
	_, err = NewCol[int32](grp, "y", "%d")
	require.NoError(t, err)
	require.NoError(t, grp.RemoveItem(x))
}

func TestEmitGating(t *testing.T) {
	tab := newTestTable(t, "gating")
	_, err := NewCol[int32](&tab.Group, "x", "%d")
	require.NoError(t, err)

	// No bindings: EmitRow is a silent no-op even before Prolog.
	require.NoError(t, tab.EmitRow())

	sink := &countingSink{}
	_, err = tab.Bind(sink)
	require.NoError(t, err)

	// Bound but not started: error.
	require.ErrorIs(t, tab.EmitRow(), errs.ErrNotStarted)

	require.NoError(t, tab.Prolog())

	// Disabled table: accepted, nothing written.
	tab.SetEnabled(false)
	require.NoError(t, tab.EmitRow())
	require.Zero(t, sink.rows)

	tab.SetEnabled(true)
	require.NoError(t, tab.EmitRow())
	require.Equal(t, 1, sink.rows)

	require.NoError(t, tab.Epilog())
	require.Equal(t, 1, sink.prologs)
	require.Equal(t, 1, sink.epilogs)
}

func TestDisabledBindingStillGetsPrologEpilog(t *testing.T) {
	tab := newTestTable(t, "disabled_binding")
	_, err := NewCol[int32](&tab.Group, "x", "%d")
	require.NoError(t, err)

	live := &countingSink{}
	muted := &countingSink{}
	_, err = tab.Bind(live)
	require.NoError(t, err)
	b, err := tab.Bind(muted)
	require.NoError(t, err)
	b.SetEnabled(false)

	require.NoError(t, tab.Prolog())
	for i := 0; i < 3; i++ {
		require.NoError(t, tab.EmitRow())
	}
	require.NoError(t, tab.Epilog())

	require.Equal(t, 3, live.rows)
	require.Zero(t, muted.rows, "disabled binding receives no rows")
	require.Equal(t, 1, muted.prologs, "prolog runs regardless of the flag")
	require.Equal(t, 1, muted.epilogs, "epilog runs regardless of the flag")
}

func TestTimeSeries(t *testing.T) {
	now := uint64(100)
	ts, err := NewTimeSeries("ts_clock", "%d", func() uint64 { return now })
	require.NoError(t, err)
	t.Cleanup(func() { ts.Close() })

	require.Equal(t, TimeSeries, ts.Flavor())
	require.Equal(t, 1, ts.Size())

	col := ts.ColumnAt(0)
	require.Equal(t, "time", col.Name())
	require.True(t, col.IsArithmetic())

	// The time column reads the clock.
	require.Equal(t, "100", emit(t, col))
	now = 250
	require.Equal(t, "250", emit(t, col))

	// The clock column is the first column, before any added ones.
	_, err = NewCol[float64](&ts.Group, "v", "%g")
	require.NoError(t, err)
	require.Equal(t, "time", ts.ColumnAt(0).Name())
}
