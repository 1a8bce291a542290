package sockets

import (
	"sync"
)

// maxPacketSize is the largest mDNS datagram this backend will accept.
// RFC 6762 §17 allows messages beyond the classic 512-byte DNS limit, up
// to the interface MTU; 9000 covers jumbo frames.
const maxPacketSize = 9000

// bufferPool reuses receive buffers across reads so the per-socket reader
// goroutines don't allocate 9KB per datagram.
var bufferPool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, maxPacketSize)
		return &buf
	},
}

// getBuffer returns a pointer to a maxPacketSize buffer from the pool.
// The caller must return it with putBuffer, typically via defer.
func getBuffer() *[]byte {
	return bufferPool.Get().(*[]byte)
}

// putBuffer returns a buffer to the pool. The caller must not touch the
// buffer afterwards; datagram payloads are copied out before this point.
func putBuffer(bufPtr *[]byte) {
	bufferPool.Put(bufPtr)
}
