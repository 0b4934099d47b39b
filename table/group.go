package table

import (
	"fmt"
	"strings"

	"github.com/vsamtuc/tables/errs"
)

// Group is a column item owning an ordered sequence of child items.
//
// Children are indexed by insertion order and addressable by name; sibling
// names are unique. Removing a child leaves a hole in the sequence (O(1));
// holes are compacted lazily by the next iteration-shaped operation.
type Group struct {
	node

	children []Item
	names    map[string]Item

	// dirty signals holes in children; it propagates toward the root.
	dirty bool
}

// NewGroup creates a column group, attached to parent when parent is non-nil.
func NewGroup(parent *Group, name string) (*Group, error) {
	g := &Group{}
	if err := g.init(g, parent, name); err != nil {
		return nil, err
	}

	return g, nil
}

// initItem wires a node embedded in self and attaches it to parent. Shared by
// groups, tables and columns.
func (n *node) initItem(self Item, parent *Group, name string) error {
	if name == "" {
		return errs.ErrEmptyName
	}
	n.name = name
	n.self = self

	if parent != nil {
		return parent.AddItem(self)
	}

	return nil
}

func (g *Group) init(self Item, parent *Group, name string) error {
	g.names = make(map[string]Item)
	g.grp = g

	return g.initItem(self, parent, name)
}

func (g *Group) IsGroup() bool { return true }

// AddItem attaches item as the last child of the group.
//
// Tables cannot be children; an item may belong to at most one group at a
// time; sibling names must be unique; the owning table must be unlocked.
func (g *Group) AddItem(item Item) error {
	if item.IsTable() {
		return errs.ErrChildIsTable
	}
	if err := g.checkUnlocked(); err != nil {
		return err
	}

	n := item.asNode()
	if n.parent != nil {
		return fmt.Errorf("%w: %s", errs.ErrAlreadyParented, item.Name())
	}
	if _, ok := g.names[item.Name()]; ok {
		return fmt.Errorf("%w: %s", errs.ErrDuplicateName, item.Name())
	}

	n.parent = g
	n.index = len(g.children)
	g.children = append(g.children, item)
	g.names[item.Name()] = item
	g.markDirtyColumns()

	return nil
}

// RemoveItem detaches item from the group, leaving a hole at its position.
// Sibling indices are preserved until the next cleanup.
func (g *Group) RemoveItem(item Item) error {
	if err := g.checkUnlocked(); err != nil {
		return err
	}

	n := item.asNode()
	if n.parent != g {
		return fmt.Errorf("%w: %s", errs.ErrNotChild, item.Name())
	}

	g.children[n.index] = nil
	delete(g.names, item.Name())
	n.parent = nil
	g.markDirty()
	g.markDirtyColumns()

	return nil
}

// Add attaches each item in turn, stopping at the first failure.
func (g *Group) Add(items ...Item) error {
	for _, item := range items {
		if err := g.AddItem(item); err != nil {
			return err
		}
	}

	return nil
}

// Remove detaches each item in turn, stopping at the first failure.
func (g *Group) Remove(items ...Item) error {
	for _, item := range items {
		if err := g.RemoveItem(item); err != nil {
			return err
		}
	}

	return nil
}

// markDirty records that the children sequence has holes. A dirty group
// implies a dirty parent, up to the root.
func (g *Group) markDirty() {
	if g.dirty {
		return
	}
	if g.parent != nil {
		g.parent.markDirty()
	}
	g.dirty = true
}

// markDirtyColumns invalidates the owning table's flat column cache.
func (g *Group) markDirtyColumns() {
	if owner := g.Table(); owner != nil {
		owner.dirtyColumns = true
	}
}

// cleanup compacts holes left by removals: surviving children shift left,
// their indices are renumbered, child groups are cleaned recursively, and
// the trailing holes are truncated. A clean group is a no-op.
func (g *Group) cleanup() {
	if !g.dirty {
		return
	}
	pos := 0
	for i := 0; i < len(g.children); i++ {
		c := g.children[i]
		if c == nil {
			continue
		}
		if pos < i {
			g.children[pos] = c
			c.asNode().index = pos
		}
		if sub := c.asNode().grp; sub != nil {
			sub.cleanup()
		}
		pos++
	}
	g.children = g.children[:pos]
	g.dirty = false
}

// Visit calls fn on the group itself, then on each non-hole child in
// insertion order, recursively.
func (g *Group) Visit(fn func(Item)) {
	fn(g.self)
	for _, c := range g.children {
		if c != nil {
			c.Visit(fn)
		}
	}
}

// GetItem resolves a slash-separated path of child names starting at this
// group. It fails when a component does not name a child, or when a
// non-group is reached before the path is exhausted.
func (g *Group) GetItem(path string) (Item, error) {
	var cur Item = g.self
	for _, name := range strings.Split(path, "/") {
		grp := cur.asNode().grp
		if grp == nil {
			return nil, fmt.Errorf("%w: %s is not a group", errs.ErrItemNotFound, cur.Name())
		}
		child, ok := grp.names[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q under %s", errs.ErrItemNotFound, name, cur.Name())
		}
		cur = child
	}

	return cur, nil
}

// Items compacts the group and returns its children.
//
// The returned slice is the group's own storage; callers must not mutate it.
func (g *Group) Items() []Item {
	g.cleanup()
	return g.children
}

// Detach removes every still-attached child of the group. It is the teardown
// counterpart of construction-with-parent: a detached child keeps living, it
// just no longer belongs to the group.
func (g *Group) Detach() error {
	if err := g.checkUnlocked(); err != nil {
		return err
	}
	for _, c := range g.children {
		if c != nil {
			if err := g.RemoveItem(c); err != nil {
				return err
			}
		}
	}

	return nil
}
