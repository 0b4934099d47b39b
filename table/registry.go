package table

import (
	"fmt"
	"sort"

	"github.com/vsamtuc/tables/errs"
)

// The process-wide table registry. Table construction registers a name,
// Close releases it. Registration and deregistration are not safe to run
// concurrently; callers constructing tables from multiple goroutines must
// serialize externally.
var registry = make(map[string]*Table)

func register(t *Table) error {
	if _, ok := registry[t.Name()]; ok {
		return fmt.Errorf("%w: %s", errs.ErrDuplicateTable, t.Name())
	}
	registry[t.Name()] = t

	return nil
}

func deregister(t *Table) {
	delete(registry, t.Name())
}

// Get returns the live table with the given name, or nil.
func Get(name string) *Table {
	return registry[name]
}

// All returns every live table, sorted by name.
func All() []*Table {
	out := make([]*Table, 0, len(registry))
	for _, t := range registry {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })

	return out
}
