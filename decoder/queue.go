package decoder

// DefaultQueueCapacity is the number of decoded frames buffered ahead of the
// consumer.
const DefaultQueueCapacity = 10

// FrameQueue is a fixed-capacity FIFO of decoded frames backed by a ring
// buffer. A full queue declines further pushes; it never evicts.
type FrameQueue struct {
	frames []*Frame
	head   int
	count  int
}

// NewFrameQueue returns a queue holding at most capacity frames. A
// non-positive capacity selects DefaultQueueCapacity.
func NewFrameQueue(capacity int) *FrameQueue {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	return &FrameQueue{frames: make([]*Frame, capacity)}
}

// Push appends f and reports whether there was room for it.
func (q *FrameQueue) Push(f *Frame) bool {
	if q.IsFull() {
		return false
	}
	q.frames[(q.head+q.count)%len(q.frames)] = f
	q.count++
	return true
}

// Pop removes and returns the oldest frame, or nil when the queue is empty.
func (q *FrameQueue) Pop() *Frame {
	if q.count == 0 {
		return nil
	}
	f := q.frames[q.head]
	q.frames[q.head] = nil
	q.head = (q.head + 1) % len(q.frames)
	q.count--
	return f
}

// Len returns the number of queued frames.
func (q *FrameQueue) Len() int {
	return q.count
}

// Cap returns the queue capacity.
func (q *FrameQueue) Cap() int {
	return len(q.frames)
}

// IsFull reports whether Push would be rejected.
func (q *FrameQueue) IsFull() bool {
	return q.count == len(q.frames)
}

// Clear releases every queued frame.
func (q *FrameQueue) Clear() {
	for f := q.Pop(); f != nil; f = q.Pop() {
		f.Release()
	}
	q.head = 0
}
