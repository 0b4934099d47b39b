package table

import (
	"strings"
)

// Item is a node in the column hierarchy: a column, a group, or a table.
//
// Items are referentially pinned: they are created by their constructors,
// used by pointer, and never copied, so the parent back-references held by
// groups stay sound. An item's parent link is a relation only; lifetime is
// the caller's responsibility.
type Item interface {
	// Name returns the item's name, unique among its siblings.
	Name() string

	// Parent returns the group containing this item, or nil.
	Parent() *Group

	// Index returns the item's position in its parent's children sequence.
	Index() int

	// Table returns the table owning this item, the item itself for tables,
	// or nil for unattached subtrees.
	Table() *Table

	// PathName returns the names of the item's ancestors joined by sep,
	// starting below the owning table and ending with the item itself.
	PathName(sep string) string

	// Visit calls fn on this item and, for groups, on every non-hole child
	// in pre-order. fn must not mutate the subtree shape.
	Visit(fn func(Item))

	IsColumn() bool
	IsGroup() bool
	IsTable() bool

	asNode() *node
}

// node carries the per-item state shared by every Item implementation.
// self is the full item the node is embedded in; grp is non-nil for groups
// and tables and points at their embedded Group.
type node struct {
	name   string
	parent *Group
	index  int
	self   Item
	grp    *Group
}

func (n *node) Name() string   { return n.name }
func (n *node) Parent() *Group { return n.parent }
func (n *node) Index() int     { return n.index }

func (n *node) Table() *Table {
	if t, ok := n.self.(*Table); ok {
		return t
	}
	if n.parent == nil {
		return nil
	}

	return n.parent.Table()
}

func (n *node) PathName(sep string) string {
	var parts []string
	it := n.self
	for {
		parts = append(parts, it.Name())
		p := it.Parent()
		if p == nil {
			break
		}
		if _, ok := p.self.(*Table); ok {
			// stop above the owning table
			break
		}
		it = p.self
	}
	// reverse into root-first order
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}

	return strings.Join(parts, sep)
}

func (n *node) Visit(fn func(Item)) {
	fn(n.self)
}

func (n *node) IsColumn() bool { return false }
func (n *node) IsGroup() bool  { return false }
func (n *node) IsTable() bool  { return false }

func (n *node) asNode() *node { return n }

// checkUnlocked fails when the owning table is in its prolog..epilog window.
func (n *node) checkUnlocked() error {
	if owner := n.Table(); owner != nil && owner.locked {
		return lockedError(owner)
	}

	return nil
}
