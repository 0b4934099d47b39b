// Package container implements a chunked, self-describing record container
// file.
//
// A container holds named datasets: extendible one-dimensional arrays of
// fixed-layout compound records. Records are buffered per chunk; full chunks
// are compressed with a configurable codec and appended to the file. The
// catalog describing every dataset (name, compound type, length, chunk list)
// is rewritten at the file tail on Flush and Close, so a container is always
// readable from the superblock alone.
//
// The design goals mirror binary scientific stores: append is O(record),
// writes are streaming-friendly, and space from superseded tail chunks or
// unlinked datasets is not reclaimed. A superseded catalog is overwritten by
// the next chunk blocks.
//
// # File layout
//
//	superblock (32 bytes): magic "TBC1", version, endian flag,
//	                       catalog offset/length, dataset count
//	chunk blocks:          17-byte header + compressed payload
//	catalog:               dataset descriptors + CRC32, at the tail
//
// All multi-byte values are little-endian.
//
// # Typical usage
//
//	f, err := container.Create("results.tbc")
//	loc := f.Root()
//	ds, err := loc.CreateDataset("wordcount", ctype, 16, format.CompressionNone)
//	err = ds.Append(record)
//	err = ds.Close()
//	err = f.Close()
package container
