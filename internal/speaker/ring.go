package speaker

import "sync"

// Ring is a fixed size FIFO of interleaved stereo samples shared between the
// emulation loop and the audio callback. Writers never block: when the ring
// is full the oldest pairs are overwritten.
type Ring struct {
	mu    sync.Mutex
	data  []float32
	head  int
	count int

	dropped   int
	underruns int
}

// NewRing returns a ring holding up to pairs stereo pairs.
func NewRing(pairs int) *Ring {
	if pairs < 1 {
		pairs = 1
	}
	return &Ring{
		data: make([]float32, pairs*2),
	}
}

// Write appends samples, rounded down to whole pairs.
func (r *Ring) Write(samples []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	samples = samples[:len(samples)&^1]
	for i := 0; i < len(samples); i += 2 {
		if r.count == len(r.data) {
			r.head = (r.head + 2) % len(r.data)
			r.count -= 2
			r.dropped++
		}
		tail := (r.head + r.count) % len(r.data)
		r.data[tail] = samples[i]
		r.data[tail+1] = samples[i+1]
		r.count += 2
	}
}

// ReadInto fills dst from the ring. Whatever the ring cannot supply is
// filled with silence. It returns the number of values taken from the ring.
func (r *Ring) ReadInto(dst []float32) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := min(len(dst), r.count)
	for i := 0; i < n; i++ {
		dst[i] = r.data[(r.head+i)%len(r.data)]
	}
	r.head = (r.head + n) % len(r.data)
	r.count -= n
	if n < len(dst) {
		clear(dst[n:])
		r.underruns++
	}
	return n
}

// Available returns the number of queued values.
func (r *Ring) Available() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Stats returns how many pairs were overwritten and how many reads came up
// short since the ring was created.
func (r *Ring) Stats() (dropped, underruns int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped, r.underruns
}

func (r *Ring) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.head = 0
	r.count = 0
}
