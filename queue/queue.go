// Package queue implements ByteQueue: an append-only FIFO of byte chunks
// supporting O(1) enqueue and O(k) prefix split without copying payloads.
//
// Built as a chunk list rather than one growable flat buffer: the
// Parser must hold onto byte slices handed in by an arbitrary producer
// (e.g. TCP segments) without flattening them into one buffer on every
// Supply call.
package queue

// Queue is a FIFO of byte chunks. The zero value is an empty, usable
// Queue.
type Queue struct {
	chunks [][]byte // chunks[0][off:] is the first unconsumed byte
	off    int
	length int
}

// New returns an empty Queue.
func New() *Queue {
	return &Queue{}
}

// Append adds chunk to the back of the queue in O(1); chunk is referenced,
// not copied, and must not be modified by the caller afterwards.
func (q *Queue) Append(chunk []byte) {
	if len(chunk) == 0 {
		return
	}
	q.chunks = append(q.chunks, chunk)
	q.length += len(chunk)
}

// Len returns the number of unconsumed bytes in the queue.
func (q *Queue) Len() int {
	return q.length
}

// SplitPrefix removes and returns the first n bytes of the queue as a
// View. If fewer than n bytes are currently queued, the queue is left
// untouched and ok is false, with deficit set to the number of additional
// bytes that would be needed for the call to succeed.
//
// SplitPrefix(0) is a no-op that always succeeds with an empty view.
func (q *Queue) SplitPrefix(n int) (view View, deficit int, ok bool) {
	if n == 0 {
		return View{}, 0, true
	}
	if n > q.length {
		return View{}, n - q.length, false
	}

	segments, lastIdx, lastOff := q.collect(n)
	q.chunks = q.chunks[lastIdx:]
	q.off = lastOff
	q.length -= n
	return View{segments: segments}, 0, true
}

// ClonePrefixView returns a View over the first n bytes without removing
// them from the queue. It fails the same way SplitPrefix does when there
// isn't enough data queued.
func (q *Queue) ClonePrefixView(n int) (view View, deficit int, ok bool) {
	if n == 0 {
		return View{}, 0, true
	}
	if n > q.length {
		return View{}, n - q.length, false
	}
	segments, _, _ := q.collect(n)
	return View{segments: segments}, 0, true
}

// Remaining returns a View over every byte currently queued, without
// consuming it.
func (q *Queue) Remaining() View {
	v, _, _ := q.ClonePrefixView(q.length)
	return v
}

// collect walks the chunk list gathering n bytes worth of segments,
// returning them along with where the walk stopped (the index of the
// chunk holding the first byte after the n-th, and that byte's offset
// within it; when the n-th byte ends a chunk this is the next chunk's
// index and offset 0).
func (q *Queue) collect(n int) (segments [][]byte, idx, off int) {
	remaining := n
	idx = 0
	off = q.off
	for remaining > 0 {
		chunk := q.chunks[idx]
		avail := len(chunk) - off
		if avail > remaining {
			segments = append(segments, chunk[off:off+remaining])
			off += remaining
			return segments, idx, off
		}
		segments = append(segments, chunk[off:])
		remaining -= avail
		idx++
		off = 0
	}
	return segments, idx, off
}
