// Package sink provides the output sinks a table can bind to, and the URL
// factory constructing them.
//
// Two families exist. Text sinks render rows through each column's text
// format, either as header-per-table CSV (csvtab) or as table-tagged
// relational CSV (csvrel). The binary sink serializes rows as fixed-layout
// compound records into an extendible dataset of a container file.
//
// Sinks are constructed directly, or from a URL:
//
//	s, err := sink.Open("file:/tmp/out.csv?format=csvtab,open_mode=append")
//	s, err := sink.Open("hdf5:results.tbc")
//	s, err := sink.Open("stdout:-")
//
// All sinks implement table.Sink and participate in the binding graph;
// closing a sink dissolves its bindings.
package sink
