package internal

import "sync"

var bufPool = sync.Pool{New: func() interface{} {
	return []byte(nil)
}}

/*
ReserveByteBuffer fetches a slice of bytes of length 0 from an
internal sync.Pool, or makes a new one. Formatters append output
lines to it.

Use ReleaseByteBuffer once the contents have been written.
*/
func ReserveByteBuffer() []byte {
	return bufPool.Get().([]byte)[:0]
}

// ReleaseByteBuffer returns a slice of bytes to the pool used by
// ReserveByteBuffer.
func ReleaseByteBuffer(buf []byte) {
	bufPool.Put(buf)
}
