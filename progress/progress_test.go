package progress

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBarFillsToWidth(t *testing.T) {
	var buf bytes.Buffer
	b := New(&buf, 10, "work")

	b.Start(100)
	for i := 0; i < 100; i++ {
		b.Tick(1)
	}

	out := buf.String()
	require.Equal(t, 10, strings.Count(out, "#"))
	require.True(t, strings.HasPrefix(out, "work: ["))
	require.True(t, strings.HasSuffix(out, "]\n"))
}

func TestBarUnevenTicks(t *testing.T) {
	var buf bytes.Buffer
	b := New(&buf, 8, "")

	b.Start(3)
	b.Tick(1)
	b.Tick(1)
	b.Tick(1)

	require.Equal(t, 8, strings.Count(buf.String(), "#"))
}

func TestBarComplete(t *testing.T) {
	var buf bytes.Buffer
	b := New(&buf, 10, "")

	b.Start(100)
	b.Complete(50)
	require.Equal(t, 5, strings.Count(buf.String(), "#"))

	// Complete never goes backwards.
	b.Complete(30)
	require.Equal(t, 5, strings.Count(buf.String(), "#"))

	b.Complete(100)
	require.Equal(t, 10, strings.Count(buf.String(), "#"))
}

func TestBarFinishEarly(t *testing.T) {
	var buf bytes.Buffer
	b := New(&buf, 10, "")

	b.Start(1000)
	b.Tick(10)
	b.Finish()

	out := buf.String()
	require.Equal(t, 10, strings.Count(out, "#"))
	require.True(t, strings.HasSuffix(out, "]\n"))

	// Ticks after the end are ignored.
	b.Tick(100)
	require.Equal(t, out, buf.String())
}

func TestBarOverTicking(t *testing.T) {
	var buf bytes.Buffer
	b := New(&buf, 6, "")

	b.Start(10)
	b.Tick(500)

	require.Equal(t, 6, strings.Count(buf.String(), "#"))
}
