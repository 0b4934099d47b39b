// Package pool provides pooled scratch buffers for row records.
//
// The binary sink serializes one record per EmitRow call; pooling the scratch
// buffer keeps the emit path allocation-free after warmup.
package pool

import "sync"

var recordBufferPool = sync.Pool{
	New: func() any { return &[]byte{} },
}

// GetRecordBuffer retrieves a zeroed byte slice of exactly size bytes from the
// pool.
//
// The slice is zero-filled so that padding bytes between record fields have a
// deterministic value. The caller must call the returned cleanup function
// (typically with defer) to return the buffer to the pool.
func GetRecordBuffer(size int) ([]byte, func()) {
	ptr, _ := recordBufferPool.Get().(*[]byte)
	buf := *ptr

	if cap(buf) < size {
		buf = make([]byte, size)
		*ptr = buf
	} else {
		buf = buf[:size]
		clear(buf)
		*ptr = buf
	}

	return buf, func() { recordBufferPool.Put(ptr) }
}
