package sink

import (
	"bytes"
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/vsamtuc/tables/errs"
	"github.com/vsamtuc/tables/format"
	"github.com/vsamtuc/tables/internal/options"
	"github.com/vsamtuc/tables/table"
)

// TextOption configures a text sink at construction.
type TextOption = options.Option[*Text]

// WithTextFormat selects the row format (csvtab or csvrel).
func WithTextFormat(f format.TextFormat) TextOption {
	return options.New(func(s *Text) error {
		switch f {
		case format.CSVTab, format.CSVRel:
			s.format = f
			return nil
		default:
			return fmt.Errorf("invalid text format: %s", f)
		}
	})
}

// Text writes table rows to a byte stream, one line per row.
//
// A Text sink either owns its stream (opened from a path, closed on Close)
// or borrows one (flushed on Close). One sink serves any number of bound
// tables; a per-table formatter is created at prolog and discarded at
// epilog.
type Text struct {
	table.SinkCore

	w      io.Writer
	path   string
	owner  bool
	format format.TextFormat

	formatters map[*table.Table]rowFormatter
}

// NewText creates a text sink with no stream; Open or OpenStream attaches
// one.
func NewText(opts ...TextOption) (*Text, error) {
	s := &Text{
		format:     format.DefaultTextFormat,
		formatters: make(map[*table.Table]rowFormatter),
	}
	if err := options.Apply(s, opts...); err != nil {
		return nil, err
	}

	return s, nil
}

// OpenText creates a text sink writing to the file at path.
func OpenText(path string, mode format.OpenMode, opts ...TextOption) (*Text, error) {
	s, err := NewText(opts...)
	if err != nil {
		return nil, err
	}
	if err := s.Open(path, mode); err != nil {
		return nil, err
	}

	return s, nil
}

// NewTextOn creates a text sink on an existing stream. When owner is true
// the stream is closed by Close, otherwise only flushed.
func NewTextOn(w io.Writer, owner bool, opts ...TextOption) (*Text, error) {
	s, err := NewText(opts...)
	if err != nil {
		return nil, err
	}
	if err := s.OpenStream(w, owner); err != nil {
		return nil, err
	}

	return s, nil
}

// Open attaches a freshly opened file to the sink. Truncate mode discards
// existing content; append mode positions the stream at the end, so csvtab
// headers are only written into empty files.
func (s *Text) Open(path string, mode format.OpenMode) error {
	if s.w != nil {
		return fmt.Errorf("%w: %s", errs.ErrAlreadyOpen, s.path)
	}

	flags := os.O_WRONLY | os.O_CREATE
	if mode == format.Truncate {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return fmt.Errorf("opening text sink %q: %w", path, err)
	}
	if mode == format.Append {
		if _, err := f.Seek(0, io.SeekEnd); err != nil {
			f.Close()
			return err
		}
	}

	s.w = f
	s.path = path
	s.owner = true

	return nil
}

// OpenStream attaches an existing stream to the sink.
func (s *Text) OpenStream(w io.Writer, owner bool) error {
	if s.w != nil {
		return fmt.Errorf("%w: %s", errs.ErrAlreadyOpen, s.path)
	}
	s.w = w
	s.owner = owner

	return nil
}

// Path returns the file path of an owned stream, or "".
func (s *Text) Path() string { return s.path }

// Format returns the sink's text format.
func (s *Text) Format() format.TextFormat { return s.format }

// OutputProlog creates the table's formatter and lets it write its header.
func (s *Text) OutputProlog(t *table.Table) error {
	if s.w == nil {
		return errs.ErrClosed
	}
	if _, ok := s.formatters[t]; ok {
		return nil
	}

	var fmtr rowFormatter
	switch s.format {
	case format.CSVTab:
		fmtr = &csvtabFormatter{sink: s, table: t}
	case format.CSVRel:
		fmtr = &csvrelFormatter{sink: s, table: t}
	default:
		return fmt.Errorf("unhandled text format: %s", s.format)
	}
	s.formatters[t] = fmtr

	return fmtr.prolog()
}

// OutputRow writes one row of t's current values.
func (s *Text) OutputRow(t *table.Table) error {
	fmtr, ok := s.formatters[t]
	if !ok {
		return fmt.Errorf("%w: table %s", errs.ErrNotStarted, t.Name())
	}

	return fmtr.row()
}

// OutputEpilog discards the table's formatter.
func (s *Text) OutputEpilog(t *table.Table) error {
	fmtr, ok := s.formatters[t]
	if !ok {
		return nil
	}
	delete(s.formatters, t)

	return fmtr.epilog()
}

// Flush pushes buffered bytes to the backing store when the stream supports
// it.
func (s *Text) Flush() error {
	if s.w == nil {
		return errs.ErrClosed
	}
	if f, ok := s.w.(*os.File); ok {
		return f.Sync()
	}

	return nil
}

// Close dissolves the sink's bindings and releases the stream: owned
// streams are closed, borrowed streams flushed.
func (s *Text) Close() error {
	s.UnbindAll()
	if s.w == nil {
		return nil
	}

	var err error
	if s.owner {
		if c, ok := s.w.(io.Closer); ok {
			err = c.Close()
		}
	} else {
		err = s.Flush()
	}
	if err != nil {
		log.WithError(err).WithField("path", s.path).Warn("text sink close failed")
	}

	s.w = nil
	s.owner = false
	s.path = ""

	return err
}

// atStreamStart reports whether the stream is at position zero or not
// seekable. csvtab headers are written only in that case.
func (s *Text) atStreamStart() bool {
	seeker, ok := s.w.(io.Seeker)
	if !ok {
		return true
	}
	pos, err := seeker.Seek(0, io.SeekCurrent)

	return err != nil || pos == 0
}

// rowFormatter is the per-(sink,table) state of one output session.
type rowFormatter interface {
	prolog() error
	row() error
	epilog() error
}

// csvtabFormatter writes a header row of leaf column names at the top of the
// stream, then one comma-separated line of values per row.
type csvtabFormatter struct {
	sink  *Text
	table *table.Table
}

func (f *csvtabFormatter) prolog() error {
	if !f.sink.atStreamStart() {
		return nil
	}
	for i := 0; i < f.table.Size(); i++ {
		if i > 0 {
			if _, err := io.WriteString(f.sink.w, ","); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(f.sink.w, f.table.ColumnAt(i).Name()); err != nil {
			return err
		}
	}
	_, err := io.WriteString(f.sink.w, "\n")

	return err
}

func (f *csvtabFormatter) row() error {
	for i := 0; i < f.table.Size(); i++ {
		if i > 0 {
			if _, err := io.WriteString(f.sink.w, ","); err != nil {
				return err
			}
		}
		if err := f.table.ColumnAt(i).EmitText(f.sink.w); err != nil {
			return err
		}
	}
	_, err := io.WriteString(f.sink.w, "\n")

	return err
}

func (f *csvtabFormatter) epilog() error { return nil }

// csvrelFormatter writes no header; every row is prefixed with the table
// name so multiple tables can share one stream.
type csvrelFormatter struct {
	sink  *Text
	table *table.Table
}

func (f *csvrelFormatter) prolog() error { return nil }

func (f *csvrelFormatter) row() error {
	if _, err := io.WriteString(f.sink.w, f.table.Name()); err != nil {
		return err
	}
	for i := 0; i < f.table.Size(); i++ {
		if _, err := io.WriteString(f.sink.w, ","); err != nil {
			return err
		}
		if err := f.table.ColumnAt(i).EmitText(f.sink.w); err != nil {
			return err
		}
	}
	_, err := io.WriteString(f.sink.w, "\n")

	return err
}

func (f *csvrelFormatter) epilog() error { return nil }

// Mem is a text sink writing into memory, mostly useful for debugging and
// tests.
type Mem struct {
	*Text
	buf *bytes.Buffer
}

// NewMem creates an in-memory text sink. The default format is csvtab, the
// common choice when inspecting a single table.
func NewMem(opts ...TextOption) (*Mem, error) {
	buf := &bytes.Buffer{}
	s, err := NewTextOn(buf, true, append([]TextOption{WithTextFormat(format.CSVTab)}, opts...)...)
	if err != nil {
		return nil, err
	}

	return &Mem{Text: s, buf: buf}, nil
}

// Contents returns the bytes written so far.
func (m *Mem) Contents() []byte { return m.buf.Bytes() }

// String returns the text written so far.
func (m *Mem) String() string { return m.buf.String() }

// Process-wide sinks for the standard streams, created on first use. They
// borrow the streams: Close flushes without closing them.
var (
	stdoutSink *Text
	stderrSink *Text
)

// Stdout returns the shared text sink on standard output.
func Stdout() *Text {
	if stdoutSink == nil || stdoutSink.w == nil {
		stdoutSink, _ = NewTextOn(os.Stdout, false)
	}

	return stdoutSink
}

// Stderr returns the shared text sink on standard error.
func Stderr() *Text {
	if stderrSink == nil || stderrSink.w == nil {
		stderrSink, _ = NewTextOn(os.Stderr, false)
	}

	return stderrSink
}
