package queue

// FromBytes wraps a plain byte slice as a single-segment View, with no
// copying. Used to lift caller-constructed payloads (e.g. an Encoder's
// input Data tree) into the same type the Parser produces.
func FromBytes(b []byte) View {
	if len(b) == 0 {
		return View{}
	}
	return View{segments: [][]byte{b}}
}

// View is a read-only reference to a run of bytes that may be spread
// across several of the chunks originally given to a Queue. It never
// copies the bytes it references on its own; copying only happens if a
// caller asks for a single contiguous slice via Bytes (and the view
// actually spans more than one chunk) or via Linearize.
type View struct {
	segments [][]byte
}

// Len returns the number of bytes the view covers.
func (v View) Len() int {
	n := 0
	for _, s := range v.segments {
		n += len(s)
	}
	return n
}

// Bytes returns the view's content as a single contiguous slice.
// If the view already references a single chunk, the original slice is
// returned directly with no copy. Otherwise the segments are joined into
// a buffer drawn from the package's buffer pool; callers that keep the
// result beyond the current call should copy it themselves.
func (v View) Bytes() []byte {
	switch len(v.segments) {
	case 0:
		return nil
	case 1:
		return v.segments[0]
	}
	buf := getBuffer(v.Len())
	for _, s := range v.segments {
		buf = append(buf, s...)
	}
	return buf
}

// Release returns a buffer obtained from Bytes() to the pool. It is safe,
// but not required, to call; callers that don't control the buffer's
// lifetime (e.g. it was handed onward as a Data value) should not call it.
func (v View) Release(buf []byte) {
	putBuffer(buf)
}

// Linearize copies the view's bytes into scratch, returning the portion
// of scratch that was filled. It panics if scratch is too small. This is
// the path IntCodec uses to decode integers (width <= 8) without
// depending on the pooled buffer in Bytes.
func (v View) Linearize(scratch []byte) []byte {
	n := v.Len()
	if n > len(scratch) {
		panic("queue: scratch buffer too small to linearize view")
	}
	off := 0
	for _, s := range v.segments {
		off += copy(scratch[off:], s)
	}
	return scratch[:n]
}

// Equal compares two views by content, independent of how each is split
// across segments: a view built from [[1,2,3],[4,5]] equals one built
// from [[1,2],[3,4,5]].
func (v View) Equal(o View) bool {
	ai, aoff := 0, 0
	bi, boff := 0, 0
	for {
		for ai < len(v.segments) && aoff == len(v.segments[ai]) {
			ai++
			aoff = 0
		}
		for bi < len(o.segments) && boff == len(o.segments[bi]) {
			bi++
			boff = 0
		}
		aDone := ai >= len(v.segments)
		bDone := bi >= len(o.segments)
		if aDone || bDone {
			return aDone == bDone
		}
		if v.segments[ai][aoff] != o.segments[bi][boff] {
			return false
		}
		aoff++
		boff++
	}
}

// ForEachSegment calls fn with every underlying chunk fragment in order.
// Used by the parser package's Until step to re-enqueue a view's content
// into a sub-queue without copying.
func (v View) ForEachSegment(fn func([]byte)) {
	for _, s := range v.segments {
		if len(s) > 0 {
			fn(s)
		}
	}
}
