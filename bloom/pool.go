package bloom

import (
	"bytes"
	"sync"
)

var bufferPool = sync.Pool{
	New: func() any {
		b := new(bytes.Buffer)
		b.Grow(512)
		return b
	},
}

// getBuffer checks a buffer out of the pool. The buffer must be returned
// with putBuffer and must not be used afterwards.
func getBuffer() *bytes.Buffer {
	return bufferPool.Get().(*bytes.Buffer)
}

func putBuffer(b *bytes.Buffer) {
	// large buffers are left to the gc
	if b.Cap() > maxPooledBuffer {
		return
	}
	b.Reset()
	bufferPool.Put(b)
}

const maxPooledBuffer = 1 << 20
