package table

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vsamtuc/tables/errs"
)

// newTestTable creates a registered table and schedules its teardown.
func newTestTable(t *testing.T, name string) *Table {
	t.Helper()

	tab, err := New(name, Results)
	require.NoError(t, err)
	t.Cleanup(func() { tab.Close() })

	return tab
}

func TestAddItem(t *testing.T) {
	tab := newTestTable(t, "add_item")

	a, err := NewCol[int32](&tab.Group, "a", "%d")
	require.NoError(t, err)
	require.Equal(t, &tab.Group, a.Parent())
	require.Equal(t, 0, a.Index())
	require.Equal(t, tab, a.Table())

	b, err := NewCol[float64](nil, "b", "%g")
	require.NoError(t, err)
	require.Nil(t, b.Parent())
	require.Nil(t, b.Table())

	require.NoError(t, tab.AddItem(b))
	require.Equal(t, 1, b.Index())
	require.Equal(t, tab, b.Table())
}

func TestAddItemRejectsEmptyName(t *testing.T) {
	_, err := NewCol[int32](nil, "", "%d")
	require.ErrorIs(t, err, errs.ErrEmptyName)

	_, err = NewGroup(nil, "")
	require.ErrorIs(t, err, errs.ErrEmptyName)
}

func TestAddItemRejectsDuplicateName(t *testing.T) {
	tab := newTestTable(t, "dup_name")

	_, err := NewCol[int32](&tab.Group, "x", "%d")
	require.NoError(t, err)
	_, err = NewCol[float64](&tab.Group, "x", "%g")
	require.ErrorIs(t, err, errs.ErrDuplicateName)
}

func TestAddItemRejectsParented(t *testing.T) {
	tab := newTestTable(t, "reparent")
	other := newTestTable(t, "reparent2")

	col, err := NewCol[int32](&tab.Group, "x", "%d")
	require.NoError(t, err)

	require.ErrorIs(t, other.AddItem(col), errs.ErrAlreadyParented)

	// Detach first, then re-parenting works.
	require.NoError(t, tab.RemoveItem(col))
	require.NoError(t, other.AddItem(col))
	require.Equal(t, other, col.Table())
}

func TestAddItemRejectsTable(t *testing.T) {
	tab := newTestTable(t, "outer")
	inner := newTestTable(t, "inner")

	require.ErrorIs(t, tab.AddItem(inner), errs.ErrChildIsTable)
}

func TestRemoveItemNotChild(t *testing.T) {
	tab := newTestTable(t, "not_child")
	col, err := NewCol[int32](nil, "x", "%d")
	require.NoError(t, err)

	require.ErrorIs(t, tab.RemoveItem(col), errs.ErrNotChild)
}

func TestRemovalLeavesHolesUntilCleanup(t *testing.T) {
	tab := newTestTable(t, "holes")

	cols := make([]*Col[int64], 5)
	for i, name := range []string{"a", "b", "c", "d", "e"} {
		var err error
		cols[i], err = NewCol[int64](&tab.Group, name, "%d")
		require.NoError(t, err)
	}

	require.NoError(t, tab.RemoveItem(cols[1]))
	require.NoError(t, tab.RemoveItem(cols[3]))

	// Sibling indices are untouched until compaction.
	require.Equal(t, 0, cols[0].Index())
	require.Equal(t, 2, cols[2].Index())
	require.Equal(t, 4, cols[4].Index())

	// Items() compacts: survivors shift left, renumbered.
	items := tab.Items()
	require.Len(t, items, 3)
	for i, item := range items {
		require.Equal(t, i, item.Index())
		require.Equal(t, &tab.Group, item.Parent())
	}
	require.Equal(t, []Item{cols[0], cols[2], cols[4]}, items)
}

func TestIndexParentConsistency(t *testing.T) {
	tab := newTestTable(t, "consistency")
	grp, err := NewGroup(&tab.Group, "grp")
	require.NoError(t, err)

	x, err := NewCol[int32](grp, "x", "%d")
	require.NoError(t, err)
	y, err := NewCol[int32](grp, "y", "%d")
	require.NoError(t, err)
	z, err := NewCol[int32](grp, "z", "%d")
	require.NoError(t, err)

	require.NoError(t, grp.RemoveItem(y))
	_ = x

	// After cleanup, every non-hole child c at position i has c.Parent()==grp
	// and c.Index()==i, recursively.
	for i, item := range grp.Items() {
		require.Equal(t, grp, item.Parent())
		require.Equal(t, i, item.Index())
	}
	require.Equal(t, 1, z.Index())
}

func TestGetItemPaths(t *testing.T) {
	tab := newTestTable(t, "paths")
	grp, err := NewGroup(&tab.Group, "grp")
	require.NoError(t, err)
	sub, err := NewGroup(grp, "sub")
	require.NoError(t, err)
	x, err := NewCol[int32](sub, "x", "%d")
	require.NoError(t, err)

	item, err := tab.GetItem("grp/sub/x")
	require.NoError(t, err)
	require.Equal(t, Item(x), item)

	item, err = tab.GetItem("grp/sub")
	require.NoError(t, err)
	require.Equal(t, Item(sub), item)

	_, err = tab.GetItem("grp/nope")
	require.ErrorIs(t, err, errs.ErrItemNotFound)

	// Descending through a non-group fails.
	_, err = tab.GetItem("grp/sub/x/deeper")
	require.ErrorIs(t, err, errs.ErrItemNotFound)
}

func TestPathNameRoundTrip(t *testing.T) {
	tab := newTestTable(t, "roundtrip")
	grp, err := NewGroup(&tab.Group, "grp")
	require.NoError(t, err)
	sub, err := NewGroup(grp, "sub")
	require.NoError(t, err)
	x, err := NewCol[int32](sub, "x", "%d")
	require.NoError(t, err)

	// The owning table is excluded from the path.
	require.Equal(t, "grp/sub/x", x.PathName("/"))
	require.Equal(t, "grp.sub.x", x.PathName("."))
	require.Equal(t, "grp", grp.PathName("/"))

	for _, item := range []Item{grp, sub, x} {
		got, err := tab.GetItem(item.PathName("/"))
		require.NoError(t, err)
		require.Equal(t, item, got)
	}
}

func TestVisitOrder(t *testing.T) {
	tab := newTestTable(t, "visit")
	a, err := NewCol[int32](&tab.Group, "a", "%d")
	require.NoError(t, err)
	grp, err := NewGroup(&tab.Group, "grp")
	require.NoError(t, err)
	b, err := NewCol[int32](grp, "b", "%d")
	require.NoError(t, err)
	c, err := NewCol[int32](grp, "c", "%d")
	require.NoError(t, err)
	d, err := NewCol[int32](&tab.Group, "d", "%d")
	require.NoError(t, err)

	var names []string
	tab.Visit(func(item Item) { names = append(names, item.Name()) })
	require.Equal(t, []string{"visit", "a", "grp", "b", "c", "d"}, names)

	// Holes are skipped, order otherwise preserved.
	require.NoError(t, grp.RemoveItem(b))
	names = names[:0]
	tab.Visit(func(item Item) { names = append(names, item.Name()) })
	require.Equal(t, []string{"visit", "a", "grp", "c", "d"}, names)

	_ = a
	_ = c
	_ = d
}

func TestDetach(t *testing.T) {
	tab := newTestTable(t, "detach")
	grp, err := NewGroup(&tab.Group, "grp")
	require.NoError(t, err)
	x, err := NewCol[int32](grp, "x", "%d")
	require.NoError(t, err)

	require.NoError(t, grp.Detach())
	require.Nil(t, x.Parent())
	require.Empty(t, grp.Items())

	// The detached column is reusable.
	require.NoError(t, tab.AddItem(x))
	require.Equal(t, tab, x.Table())
}
