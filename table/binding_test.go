package table

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBindIsIdempotent(t *testing.T) {
	tab := newTestTable(t, "bind_idem")
	sink := &countingSink{}

	b1, err := tab.Bind(sink)
	require.NoError(t, err)
	b2, err := tab.Bind(sink)
	require.NoError(t, err)
	require.Same(t, b1, b2, "re-binding a bound pair returns the existing edge")
	require.Len(t, tab.Bindings(), 1)
	require.Len(t, sink.Bindings(), 1)
}

func TestBindingSymmetry(t *testing.T) {
	tab := newTestTable(t, "bind_sym")
	other := newTestTable(t, "bind_sym2")
	sink := &countingSink{}

	b1, err := tab.Bind(sink)
	require.NoError(t, err)
	b2, err := other.Bind(sink)
	require.NoError(t, err)

	// The edge appears on both adjacency lists.
	require.Equal(t, []*Binding{b1}, tab.Bindings())
	require.Equal(t, []*Binding{b1, b2}, sink.Bindings())

	require.Equal(t, tab, b1.Table())
	require.Equal(t, Sink(sink), b1.Sink())

	// FindBinding locates the edge from the sink side.
	require.Same(t, b1, FindBinding(&sink.SinkCore, tab))
	require.Same(t, b2, FindBinding(&sink.SinkCore, other))
	require.Nil(t, FindBinding(&sink.SinkCore, newTestTable(t, "bind_sym3")))
}

func TestUnbindReportsFound(t *testing.T) {
	tab := newTestTable(t, "unbind_found")
	sink := &countingSink{}

	found, err := tab.Unbind(sink)
	require.NoError(t, err)
	require.False(t, found, "unbinding an unbound sink is a no-op")

	_, err = tab.Bind(sink)
	require.NoError(t, err)

	found, err = tab.Unbind(sink)
	require.NoError(t, err)
	require.True(t, found)
	require.Empty(t, tab.Bindings())
	require.Empty(t, sink.Bindings())
}

func TestTableCloseDissolvesBindings(t *testing.T) {
	tab, err := New("close_dissolves", Results)
	require.NoError(t, err)
	sink := &countingSink{}
	_, err = tab.Bind(sink)
	require.NoError(t, err)

	require.NoError(t, tab.Close())
	require.Empty(t, sink.Bindings(), "closing the table removes the edge from the sink")
}

func TestSinkCloseDissolvesBindings(t *testing.T) {
	tab := newTestTable(t, "sink_close")
	other := newTestTable(t, "sink_close2")
	sink := &countingSink{}
	_, err := tab.Bind(sink)
	require.NoError(t, err)
	_, err = other.Bind(sink)
	require.NoError(t, err)

	require.NoError(t, sink.Close())
	require.True(t, sink.closed)
	require.Empty(t, tab.Bindings())
	require.Empty(t, other.Bindings())
}

func TestUnbindAllFromSink(t *testing.T) {
	sink := &countingSink{}
	tabs := []*Table{
		newTestTable(t, "unbind_all_a"),
		newTestTable(t, "unbind_all_b"),
		newTestTable(t, "unbind_all_c"),
	}
	for _, tab := range tabs {
		_, err := tab.Bind(sink)
		require.NoError(t, err)
	}
	require.Len(t, sink.Bindings(), 3)

	sink.UnbindAll()
	require.Empty(t, sink.Bindings())
	for _, tab := range tabs {
		require.Empty(t, tab.Bindings())
	}
}
