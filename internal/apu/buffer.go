package apu

// SampleQueue is a bounded FIFO of interleaved stereo samples. When the
// consumer falls behind, the oldest pairs are dropped.
type SampleQueue struct {
	data  []float32
	head  int
	count int
}

// NewSampleQueue returns a queue holding up to pairs stereo pairs.
func NewSampleQueue(pairs int) *SampleQueue {
	return &SampleQueue{
		data: make([]float32, pairs*2),
	}
}

func (q *SampleQueue) push(left, right float32) {
	if len(q.data) == 0 {
		return
	}
	if q.count == len(q.data) {
		q.head = (q.head + 2) % len(q.data)
		q.count -= 2
	}
	tail := (q.head + q.count) % len(q.data)
	q.data[tail] = left
	q.data[tail+1] = right
	q.count += 2
}

// Len returns the number of queued values (twice the number of pairs).
func (q *SampleQueue) Len() int {
	return q.count
}

// Cap returns the capacity in values.
func (q *SampleQueue) Cap() int {
	return len(q.data)
}

// Read moves up to len(dst) values into dst, rounded down to whole pairs,
// and returns how many were moved.
func (q *SampleQueue) Read(dst []float32) int {
	n := min(len(dst)&^1, q.count)
	for i := 0; i < n; i++ {
		dst[i] = q.data[(q.head+i)%len(q.data)]
	}
	q.head = (q.head + n) % max(len(q.data), 1)
	q.count -= n
	return n
}

// Drain returns every queued value and empties the queue.
func (q *SampleQueue) Drain() []float32 {
	out := make([]float32, q.count)
	q.Read(out)
	return out
}

func (q *SampleQueue) Clear() {
	q.head = 0
	q.count = 0
}
