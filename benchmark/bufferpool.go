package benchmark

import (
	"sync"
)

// bufPool recycles payload buffers between put attempts. Sizes vary per
// attempt so a pooled buffer is only reused when it is large enough.
var bufPool = sync.Pool{
	New: func() interface{} {
		return make([]byte, 0, DefaultMinSize)
	},
}

// GetBuffer gets a buffer of exactly size bytes from the pool
func GetBuffer(size int) []byte {
	buf := bufPool.Get().([]byte)
	if cap(buf) < size {
		bufPool.Put(buf)
		return make([]byte, size)
	}
	return buf[:size]
}

// PutBuffer returns a buffer to the pool
func PutBuffer(buf []byte) {
	bufPool.Put(buf[:0])
}
