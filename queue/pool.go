package queue

import (
	"math/bits"
	"sync"
)

// bufferPool hands out power-of-two sized scratch buffers so that
// View.Bytes, joining a View that spans several chunks, doesn't allocate
// in steady state when callers Release what it returns.
var bufferPool [33]sync.Pool

func init() {
	for i := range bufferPool {
		size := 1 << uint(i)
		bufferPool[i].New = func() any {
			return make([]byte, 0, size)
		}
	}
}

// classIndex returns the index into bufferPool whose buffers have
// capacity >= n, for n > 0.
func classIndex(n int) int {
	return bits.Len(uint(n - 1))
}

func getBuffer(n int) []byte {
	if n <= 0 {
		return nil
	}
	i := classIndex(n)
	if i >= len(bufferPool) {
		return make([]byte, 0, n)
	}
	return bufferPool[i].Get().([]byte)[:0]
}

func putBuffer(buf []byte) {
	c := cap(buf)
	if c == 0 {
		return
	}
	i := classIndex(c)
	if i >= len(bufferPool) || 1<<uint(i) != c {
		// not a buffer we handed out; ignore rather than risk growing a
		// pool entry to an unbounded size.
		return
	}
	bufferPool[i].Put(buf[:0])
}
