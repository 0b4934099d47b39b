package container

import (
	"fmt"
	"hash/crc32"
	"io"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/vsamtuc/tables/endian"
	"github.com/vsamtuc/tables/errs"
	"github.com/vsamtuc/tables/format"
)

const (
	superblockSize = 32
	containerMagic = "TBC1"
	formatVersion  = 1

	littleEndianFlag = 0x01
)

func errTruncated(what string) error {
	return fmt.Errorf("%w: truncated %s", errs.ErrCorruptContainer, what)
}

// File is an open container file.
//
// A File is reference counted: every Location handle retained against it
// holds one reference, and the file is flushed and closed when the last
// reference is released. Files are not safe for concurrent use.
type File struct {
	path   string
	fd     *os.File
	engine endian.EndianEngine

	datasets map[string]*Dataset // catalog, by full name
	nextID   uint32

	appendOffset uint64 // where the next chunk block lands
	refs         int
	closed       bool
}

// Create creates a container file at path, truncating any existing file.
//
// The returned file holds one reference; Close releases it.
func Create(path string) (*File, error) {
	fd, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("creating container %q: %w", path, err)
	}

	f := newFile(path, fd)
	if err := f.writeSuperblock(); err != nil {
		fd.Close()
		return nil, err
	}

	return f, nil
}

// OpenOrCreate opens an existing container for appending, or creates a fresh
// one when path does not exist or is empty.
func OpenOrCreate(path string) (*File, error) {
	fd, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening container %q: %w", path, err)
	}

	f := newFile(path, fd)

	info, err := fd.Stat()
	if err != nil {
		fd.Close()
		return nil, err
	}
	if info.Size() == 0 {
		if err := f.writeSuperblock(); err != nil {
			fd.Close()
			return nil, err
		}

		return f, nil
	}

	if err := f.load(); err != nil {
		fd.Close()
		return nil, err
	}

	return f, nil
}

func newFile(path string, fd *os.File) *File {
	return &File{
		path:         path,
		fd:           fd,
		engine:       endian.GetLittleEndianEngine(),
		datasets:     make(map[string]*Dataset),
		nextID:       1,
		appendOffset: superblockSize,
		refs:         1,
	}
}

// Root returns the root location of the file. The location shares the file's
// reference count; retain it before handing it to a longer-lived owner.
func (f *File) Root() *Location {
	return &Location{file: f}
}

// Path returns the filesystem path the container was opened at.
func (f *File) Path() string {
	return f.path
}

// Flush writes the partial chunks of all open datasets and rewrites the
// catalog at the file tail.
func (f *File) Flush() error {
	if f.closed {
		return errs.ErrClosed
	}
	return f.flush()
}

func (f *File) flush() error {
	var partial []*Dataset
	for _, ds := range f.datasets {
		if ds.open && len(ds.pending) > 0 {
			if err := ds.flushChunk(); err != nil {
				return err
			}
			partial = append(partial, ds)
		}
	}

	err := f.writeCatalog()
	// Take each partial chunk back into the pending buffer (flushChunk only
	// reslices it to zero length) and supersede its block, as reopen does, so
	// that further appends keep every chunk but the last full.
	for _, ds := range partial {
		last := len(ds.chunks) - 1
		ds.pending = ds.pending[:ds.chunks[last].rawLen]
		ds.chunks = ds.chunks[:last]
	}

	return err
}

// Close releases the creator's reference. When it is the last reference, the
// catalog is flushed and the underlying descriptor closed.
func (f *File) Close() error {
	if f.closed {
		return errs.ErrClosed
	}

	return f.release()
}

func (f *File) retain() {
	f.refs++
}

func (f *File) release() error {
	f.refs--
	if f.refs > 0 {
		return nil
	}

	err := f.flush()
	if err != nil {
		log.WithError(err).WithField("path", f.path).Warn("container flush failed during close")
	}
	f.closed = true

	if cerr := f.fd.Close(); cerr != nil && err == nil {
		err = cerr
	}

	return err
}

func (f *File) writeSuperblock() error {
	buf := make([]byte, 0, superblockSize)
	buf = append(buf, containerMagic...)
	buf = append(buf, formatVersion, littleEndianFlag, 0, 0)
	buf = f.engine.AppendUint64(buf, f.appendOffset) // catalog offset
	buf = f.engine.AppendUint64(buf, 0)              // catalog length
	buf = f.engine.AppendUint32(buf, uint32(len(f.datasets)))
	buf = f.engine.AppendUint32(buf, 0)

	if _, err := f.fd.WriteAt(buf, 0); err != nil {
		return fmt.Errorf("writing superblock: %w", err)
	}

	return nil
}

func (f *File) patchSuperblock(catalogOffset, catalogLen uint64) error {
	buf := make([]byte, 0, 20)
	buf = f.engine.AppendUint64(buf, catalogOffset)
	buf = f.engine.AppendUint64(buf, catalogLen)
	buf = f.engine.AppendUint32(buf, uint32(len(f.datasets)))

	if _, err := f.fd.WriteAt(buf, 8); err != nil {
		return fmt.Errorf("patching superblock: %w", err)
	}

	return nil
}

// writeCatalog serializes all dataset descriptors at the current append
// offset and patches the superblock to point at them. The append offset is
// not advanced: subsequent chunk appends overwrite the stale catalog, which
// is rewritten further down the file on the next flush.
func (f *File) writeCatalog() error {
	buf := make([]byte, 0, 256)
	buf = f.engine.AppendUint32(buf, uint32(len(f.datasets)))
	for _, ds := range f.datasets {
		buf = ds.appendTo(buf, f.engine)
	}
	buf = f.engine.AppendUint32(buf, crc32.ChecksumIEEE(buf))

	if _, err := f.fd.WriteAt(buf, int64(f.appendOffset)); err != nil {
		return fmt.Errorf("writing catalog: %w", err)
	}
	if err := f.patchSuperblock(f.appendOffset, uint64(len(buf))); err != nil {
		return err
	}
	// Drop anything left over from a previous, longer catalog.
	if err := f.fd.Truncate(int64(f.appendOffset) + int64(len(buf))); err != nil {
		return fmt.Errorf("truncating container: %w", err)
	}

	return f.fd.Sync()
}

// load reads the superblock and catalog of an existing container.
func (f *File) load() error {
	sb := make([]byte, superblockSize)
	if _, err := io.ReadFull(io.NewSectionReader(f.fd, 0, superblockSize), sb); err != nil {
		return fmt.Errorf("%w: short superblock", errs.ErrCorruptContainer)
	}
	if string(sb[0:4]) != containerMagic {
		return errs.ErrBadMagic
	}
	if sb[4] != formatVersion {
		return fmt.Errorf("%w: unsupported version %d", errs.ErrCorruptContainer, sb[4])
	}
	if sb[5] != littleEndianFlag {
		return fmt.Errorf("%w: unsupported byte order flag 0x%02x", errs.ErrCorruptContainer, sb[5])
	}

	catalogOffset := f.engine.Uint64(sb[8:16])
	catalogLen := f.engine.Uint64(sb[16:24])

	if catalogLen > 0 {
		buf := make([]byte, catalogLen)
		if _, err := f.fd.ReadAt(buf, int64(catalogOffset)); err != nil {
			return fmt.Errorf("%w: short catalog", errs.ErrCorruptContainer)
		}
		if err := f.parseCatalog(buf); err != nil {
			return err
		}
	}

	// New chunks overwrite the stale catalog region.
	f.appendOffset = catalogOffset

	return nil
}

func (f *File) parseCatalog(buf []byte) error {
	if len(buf) < 8 {
		return errTruncated("catalog")
	}
	body, sum := buf[:len(buf)-4], f.engine.Uint32(buf[len(buf)-4:])
	if crc32.ChecksumIEEE(body) != sum {
		return fmt.Errorf("%w: catalog checksum mismatch", errs.ErrCorruptContainer)
	}

	count := int(f.engine.Uint32(body[0:4]))
	pos := 4
	for i := 0; i < count; i++ {
		ds, n, err := parseDataset(body[pos:], f)
		if err != nil {
			return err
		}
		pos += n
		f.datasets[ds.name] = ds
		if ds.id >= f.nextID {
			f.nextID = ds.id + 1
		}
	}

	return nil
}

// Location is a named position inside a container file, analogous to a group
// in hierarchical scientific formats. The root location addresses datasets by
// bare name; nested groups prefix names with "group/".
//
// Locations are reference-counted handles on the underlying file: Retain
// increments the count, Release decrements it and closes the file when it
// reaches zero.
type Location struct {
	file   *File
	prefix string
}

// Retain acquires one reference on the underlying file and returns the
// location for chaining.
func (l *Location) Retain() *Location {
	l.file.retain()
	return l
}

// Release drops one reference on the underlying file, closing it when no
// references remain.
func (l *Location) Release() error {
	return l.file.release()
}

// Group returns a location addressing a nested namespace within the file.
func (l *Location) Group(name string) *Location {
	return &Location{file: l.file, prefix: l.prefix + name + "/"}
}

// File returns the underlying container file.
func (l *Location) File() *File {
	return l.file
}

// Exists reports whether a dataset with the given name exists at this
// location.
func (l *Location) Exists(name string) bool {
	_, ok := l.file.datasets[l.prefix+name]
	return ok
}

// Unlink removes the named dataset from the catalog. The space its chunks
// occupy is not reclaimed. Unlinking an open dataset or a missing name is an
// error.
func (l *Location) Unlink(name string) error {
	full := l.prefix + name
	ds, ok := l.file.datasets[full]
	if !ok {
		return fmt.Errorf("%w: %s", errs.ErrDatasetNotFound, full)
	}
	if ds.open {
		return fmt.Errorf("cannot unlink open dataset %s", full)
	}
	delete(l.file.datasets, full)

	return nil
}

// CreateDataset creates a new extendible dataset with the given record type
// and chunk size (rows per chunk), using the supplied compression for chunk
// payloads.
func (l *Location) CreateDataset(name string, ctype *CompoundType, chunkRows int, compression format.Compression) (*Dataset, error) {
	full := l.prefix + name
	if _, ok := l.file.datasets[full]; ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrDatasetExists, full)
	}
	ds, err := newDataset(l.file, full, ctype, chunkRows, compression)
	if err != nil {
		return nil, err
	}
	l.file.datasets[full] = ds

	return ds, nil
}

// OpenDataset opens an existing dataset for appending and reading.
func (l *Location) OpenDataset(name string) (*Dataset, error) {
	full := l.prefix + name
	ds, ok := l.file.datasets[full]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrDatasetNotFound, full)
	}
	if err := ds.reopen(); err != nil {
		return nil, err
	}

	return ds, nil
}

// Datasets returns the full names of all datasets in the file, in
// unspecified order.
func (f *File) Datasets() []string {
	names := make([]string, 0, len(f.datasets))
	for name := range f.datasets {
		names = append(names, name)
	}

	return names
}
