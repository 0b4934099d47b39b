package table

import (
	"io"

	json "github.com/goccy/go-json"
)

// ColumnSchema describes one column of a table's layout.
type ColumnSchema struct {
	// Name is the slash-separated path of the column below the table.
	Name string `json:"name"`

	// Path is the same path as a name sequence, table excluded.
	Path []string `json:"path"`

	// Type is a human-readable label of the column's value kind.
	Type string `json:"type"`

	// Arithmetic reports whether the column is numeric or boolean.
	Arithmetic bool `json:"arithmetic"`
}

// TableSchema is the self-describing document of a table's column layout.
type TableSchema struct {
	Name    string         `json:"name"`
	Columns []ColumnSchema `json:"columns"`
}

// Schema builds the table's schema document.
func (t *Table) Schema() TableSchema {
	doc := TableSchema{
		Name:    t.Name(),
		Columns: make([]ColumnSchema, 0, t.Size()),
	}
	for i := 0; i < t.Size(); i++ {
		col := t.ColumnAt(i)

		var path []string
		for it := Item(col); it != nil && !it.IsTable(); it = itemOf(it.Parent()) {
			path = append(path, it.Name())
		}
		for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
			path[i], path[j] = path[j], path[i]
		}

		doc.Columns = append(doc.Columns, ColumnSchema{
			Name:       col.PathName("/"),
			Path:       path,
			Type:       col.Kind().String(),
			Arithmetic: col.IsArithmetic(),
		})
	}

	return doc
}

// itemOf converts a possibly-nil group into its Item identity.
func itemOf(g *Group) Item {
	if g == nil {
		return nil
	}

	return g.self
}

// WriteSchema writes the schema document to w as indented JSON.
func (t *Table) WriteSchema(w io.Writer) error {
	data, err := json.MarshalIndent(t.Schema(), "", "\t")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)

	return err
}
