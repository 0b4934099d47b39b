package sink

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vsamtuc/tables/container"
	"github.com/vsamtuc/tables/errs"
	"github.com/vsamtuc/tables/format"
	"github.com/vsamtuc/tables/internal/options"
	"github.com/vsamtuc/tables/internal/pool"
	"github.com/vsamtuc/tables/table"
)

// BinaryOption configures a binary sink at construction.
type BinaryOption = options.Option[*Binary]

// WithOpenMode selects truncate or append behavior per dataset.
func WithOpenMode(mode format.OpenMode) BinaryOption {
	return options.New(func(s *Binary) error {
		switch mode {
		case format.Truncate, format.Append:
			s.mode = mode
			return nil
		default:
			return fmt.Errorf("invalid open mode: %s", mode)
		}
	})
}

// WithChunkRows sets the dataset chunk size in rows.
func WithChunkRows(rows int) BinaryOption {
	return options.New(func(s *Binary) error {
		if rows <= 0 {
			return fmt.Errorf("chunk rows must be positive, got %d", rows)
		}
		s.chunkRows = rows

		return nil
	})
}

// WithCompression selects the chunk codec of created datasets.
func WithCompression(compression format.Compression) BinaryOption {
	return options.NoError(func(s *Binary) {
		s.compression = compression
	})
}

// Binary writes table rows as fixed-layout compound records into one
// extendible container dataset per bound table. The dataset carries the
// table's name.
//
// Row emission serializes each column's raw bytes at a precomputed offset
// into a zeroed record buffer and appends the record. Offsets follow each
// column's alignment; the layout is computed once per output session and
// cached in a per-table handler.
type Binary struct {
	table.SinkCore

	loc         *container.Location
	mode        format.OpenMode
	chunkRows   int
	compression format.Compression

	handlers map[*table.Table]*tableHandler
}

// NewBinary creates a binary sink writing datasets at loc. The sink retains
// a reference on the location's file and releases it on Close.
func NewBinary(loc *container.Location, opts ...BinaryOption) (*Binary, error) {
	s := &Binary{
		loc:         loc.Retain(),
		mode:        format.DefaultOpenMode,
		chunkRows:   container.DefaultChunkRows,
		compression: format.CompressionNone,
		handlers:    make(map[*table.Table]*tableHandler),
	}
	if err := options.Apply(s, opts...); err != nil {
		loc.Release()
		return nil, err
	}

	return s, nil
}

// OpenBinary creates a binary sink on a container file at path. In truncate
// mode an existing file is discarded; in append mode it is opened and
// extended.
func OpenBinary(path string, opts ...BinaryOption) (*Binary, error) {
	probe := &Binary{mode: format.DefaultOpenMode}
	if err := options.Apply(probe, opts...); err != nil {
		return nil, err
	}

	var (
		f   *container.File
		err error
	)
	if probe.mode == format.Append {
		f, err = container.OpenOrCreate(path)
	} else {
		f, err = container.Create(path)
	}
	if err != nil {
		return nil, err
	}

	s, err := NewBinary(f.Root(), opts...)
	if err != nil {
		f.Close()
		return nil, err
	}
	// Drop the creation reference; the sink's retained one keeps the file
	// open.
	if err := f.Close(); err != nil {
		s.loc.Release()
		return nil, err
	}

	return s, nil
}

// Location returns the container location the sink writes at.
func (s *Binary) Location() *container.Location { return s.loc }

// tableHandler caches the computed record layout and the open dataset of
// one bound table.
type tableHandler struct {
	ctype   *container.CompoundType
	offsets []uint32
	dataset *container.Dataset
}

// newTableHandler computes the compound layout of the table's columns.
func newTableHandler(t *table.Table) (*tableHandler, error) {
	builder := container.NewCompoundBuilder()
	offsets := make([]uint32, 0, t.Size())

	for i := 0; i < t.Size(); i++ {
		col := t.ColumnAt(i)
		if !col.Kind().Valid() {
			return nil, fmt.Errorf("%w: column %s", errs.ErrUnknownKind, col.Name())
		}
		builder.Add(col.Name(), col.Kind(), uint32(col.Size()), uint32(col.Align()))
	}

	ctype := builder.Build()
	for _, f := range ctype.Fields {
		offsets = append(offsets, f.Offset)
	}

	return &tableHandler{ctype: ctype, offsets: offsets}, nil
}

// OutputProlog creates or opens the table's dataset.
//
// Truncate mode unlinks an existing dataset of the same name and creates a
// fresh one. Append mode opens an existing dataset and requires its on-disk
// compound type to equal the computed one exactly; a missing dataset is
// created.
func (s *Binary) OutputProlog(t *table.Table) error {
	if s.handlers == nil {
		return errs.ErrClosed
	}

	th, ok := s.handlers[t]
	if !ok {
		var err error
		if th, err = newTableHandler(t); err != nil {
			return err
		}
		s.handlers[t] = th
	}

	name := t.Name()
	if s.mode == format.Append {
		if s.loc.Exists(name) {
			ds, err := s.loc.OpenDataset(name)
			if err != nil {
				return err
			}
			disk := ds.Type()
			if disk.Signature() != th.ctype.Signature() || !disk.Equal(th.ctype) {
				ds.Close()
				return fmt.Errorf("%w: dataset %s does not match the table's columns",
					errs.ErrTypeMismatch, name)
			}
			th.dataset = ds

			return nil
		}

		return s.createDataset(th, name)
	}

	if s.loc.Exists(name) {
		if err := s.loc.Unlink(name); err != nil {
			return err
		}
	}

	return s.createDataset(th, name)
}

func (s *Binary) createDataset(th *tableHandler, name string) error {
	ds, err := s.loc.CreateDataset(name, th.ctype, s.chunkRows, s.compression)
	if err != nil {
		return err
	}
	th.dataset = ds

	return nil
}

// OutputRow serializes the table's current column values as one record and
// appends it to the dataset.
func (s *Binary) OutputRow(t *table.Table) error {
	th, ok := s.handlers[t]
	if !ok || th.dataset == nil {
		return fmt.Errorf("%w: table %s", errs.ErrNotStarted, t.Name())
	}

	buf, cleanup := pool.GetRecordBuffer(int(th.ctype.Size))
	defer cleanup()

	for i := 0; i < t.Size(); i++ {
		col := t.ColumnAt(i)
		off := th.offsets[i]
		col.CopyRaw(buf[off : off+uint32(col.Size())])
	}

	return th.dataset.Append(buf)
}

// OutputEpilog closes the table's dataset and discards the handler.
func (s *Binary) OutputEpilog(t *table.Table) error {
	th, ok := s.handlers[t]
	if !ok {
		return nil
	}
	delete(s.handlers, t)
	if th.dataset == nil {
		return nil
	}

	return th.dataset.Close()
}

// Flush persists buffered chunks and the container catalog.
func (s *Binary) Flush() error {
	if s.handlers == nil {
		return errs.ErrClosed
	}

	return s.loc.File().Flush()
}

// Close dissolves the sink's bindings, closes any datasets still open from
// unfinished sessions, and releases the location reference acquired at
// construction.
func (s *Binary) Close() error {
	if s.handlers == nil {
		return errs.ErrClosed
	}
	s.UnbindAll()

	for t, th := range s.handlers {
		if th.dataset != nil {
			if err := th.dataset.Close(); err != nil {
				log.WithError(err).WithField("table", t.Name()).
					Warn("closing dataset during sink teardown")
			}
		}
	}
	s.handlers = nil

	return s.loc.Release()
}
