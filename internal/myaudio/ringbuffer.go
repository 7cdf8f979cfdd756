// this file defines the ring buffer which supplies pre-event audio context
package myaudio

// ChunkRing is a fixed-capacity circular buffer of chunks. Pushing into a
// full ring evicts the oldest chunk. It is not safe for concurrent use; the
// ingestion worker is its sole owner.
type ChunkRing struct {
	chunks []Chunk
	head   int // index of the oldest chunk
	size   int
}

// NewChunkRing creates a ring holding at most capacity chunks. A zero
// capacity is valid and yields a ring that keeps nothing, for setups with
// pre-event context disabled.
func NewChunkRing(capacity int) *ChunkRing {
	if capacity < 0 {
		capacity = 0
	}
	return &ChunkRing{
		chunks: make([]Chunk, capacity),
	}
}

// Push appends a chunk, evicting the oldest one when the ring is full.
// Pushing into a zero-capacity ring is a no-op.
func (r *ChunkRing) Push(c Chunk) {
	if len(r.chunks) == 0 {
		return
	}
	tail := (r.head + r.size) % len(r.chunks)
	r.chunks[tail] = c
	if r.size < len(r.chunks) {
		r.size++
	} else {
		r.head = (r.head + 1) % len(r.chunks)
	}
}

// Snapshot returns the current contents in chronological order without
// mutating the ring.
func (r *ChunkRing) Snapshot() []Chunk {
	out := make([]Chunk, r.size)
	for i := 0; i < r.size; i++ {
		out[i] = r.chunks[(r.head+i)%len(r.chunks)]
	}
	return out
}

// Clear empties the ring.
func (r *ChunkRing) Clear() {
	r.head = 0
	r.size = 0
}

// Len returns the number of chunks currently buffered.
func (r *ChunkRing) Len() int {
	return r.size
}

// Cap returns the ring capacity.
func (r *ChunkRing) Cap() int {
	return len(r.chunks)
}
