// Package tables produces structured, row-oriented tabular output from a
// running program to multiple heterogeneous sinks simultaneously.
//
// Application code declares tables composed of columns; columns hold live
// values, either owned, referenced to an external variable, or computed on
// demand. When the application signals that a row is ready, every sink bound
// to the table serializes the current column values in its own format: CSV
// text, or compound binary records in an extendible container dataset.
//
// # Basic Usage
//
// Declaring a table and emitting rows to a CSV file:
//
//	tab, _ := tables.NewResults("wordcount")
//	word, _ := table.NewStringCol(&tab.Group, "word", 31, "%s")
//	count, _ := table.NewCol[int64](&tab.Group, "count", "%d")
//
//	out, _ := tables.Open("file:counts.csv?format=csvtab")
//	tab.Bind(out)
//
//	tab.Prolog()
//	for w, n := range counts {
//	    word.Set(w)
//	    count.Set(n)
//	    tab.EmitRow()
//	}
//	tab.Epilog()
//
//	out.Close()
//	tab.Close()
//
// Binding the same table to a binary container as well:
//
//	bin, _ := tables.Open("hdf5:counts.tbc?open_mode=append")
//	tab.Bind(bin)
//
// Time-series tables prepend a computed "time" column reading a clock:
//
//	ts, _ := tables.NewTimeSeries("load", "%d", func() int64 {
//	    return time.Now().Unix()
//	})
//
// # Package Structure
//
// This package provides thin wrappers over the core packages. Declare
// columns with the table package, construct sinks directly with the sink
// package or through the URL factory here, and read container files back
// with the container package.
package tables

import (
	"github.com/vsamtuc/tables/sink"
	"github.com/vsamtuc/tables/table"
)

// NewResults creates a registered table with the results flavor.
func NewResults(name string) (*table.Table, error) {
	return table.New(name, table.Results)
}

// NewTimeSeries creates a registered time-series table whose first column,
// "time", is computed from clock at every emission.
func NewTimeSeries[T table.Arith](name, timeFormat string, clock func() T) (*table.Table, error) {
	return table.NewTimeSeries(name, timeFormat, clock)
}

// Get returns the live table with the given name, or nil.
func Get(name string) *table.Table {
	return table.Get(name)
}

// All returns every live table, sorted by name.
func All() []*table.Table {
	return table.All()
}

// Open constructs a sink from a URL of the form "scheme:path?k=v,k=v".
// See the sink package for the recognized schemes and options.
func Open(url string) (table.Sink, error) {
	return sink.Open(url)
}
