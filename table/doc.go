// Package table implements the hierarchical column model at the heart of the
// tables module: column items, column groups, output tables, the process-wide
// table registry, and the binding graph between tables and output sinks.
//
// # Model
//
// A Table is a named tree of column items. Interior nodes are Groups; leaves
// are Columns holding one typed cell value each. Application code mutates
// column values and calls EmitRow on the table; every enabled binding then
// pulls the current values into its sink, as formatted text or raw bytes.
//
// Removal is O(1) and leaves a hole in the parent's children sequence; the
// first iteration-shaped operation afterwards compacts holes and renumbers
// the surviving children (lazy cleanup). Tables additionally cache the flat
// list of descendant columns in pre-order.
//
// # Data API
//
// Emission follows a three-phase protocol. Prolog freezes the table's
// subtree and announces the session to every bound sink; EmitRow emits one
// row to each enabled binding; Epilog closes the session and unfreezes the
// subtree. Structural mutations between Prolog and Epilog fail with
// errs.ErrTableLocked.
//
//	tab, _ := table.New("wordcount", table.Results)
//	n, _ := table.NewCol[int64](&tab.Group, "n", "%d")
//	sink, _ := sink.Open("file:counts.csv?format=csvtab")
//	tab.Bind(sink)
//
//	tab.Prolog()
//	for _, w := range words {
//	    n.Set(count(w))
//	    tab.EmitRow()
//	}
//	tab.Epilog()
//
// The data API is single-threaded per table; callers serialize access.
package table
