package window

// Ring is a fixed-capacity FIFO buffer.
type Ring[T any] struct {
	// items is the backing storage.
	items []T
	// head is the index of the oldest element.
	head int
	// size is the number of stored elements.
	size int
}

// NewRing creates a ring holding at most capacity elements. Capacity below 1 is raised to 1.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}

	return &Ring[T]{items: make([]T, capacity)}
}

// Push appends v and returns the evicted element, if any.
func (r *Ring[T]) Push(v T) (T, bool) {
	var evicted T

	if r.size == len(r.items) {
		evicted = r.items[r.head]
		r.items[r.head] = v
		r.head = (r.head + 1) % len(r.items)

		return evicted, true
	}

	r.items[(r.head+r.size)%len(r.items)] = v
	r.size++

	return evicted, false
}

// Len returns the number of stored elements.
func (r *Ring[T]) Len() int {
	return r.size
}

// Cap returns the capacity.
func (r *Ring[T]) Cap() int {
	return len(r.items)
}

// Each calls fn for every element from oldest to newest.
func (r *Ring[T]) Each(fn func(T)) {
	for i := range r.size {
		fn(r.items[(r.head+i)%len(r.items)])
	}
}

// Reset drops all elements.
func (r *Ring[T]) Reset() {
	clear(r.items)
	r.head = 0
	r.size = 0
}

// Counter tracks the fraction of true values in a boolean window in O(1) per push.
type Counter struct {
	// ring holds the recent values.
	ring *Ring[bool]
	// count is the number of true values in ring.
	count int
}

// NewCounter creates a counter over the last capacity values.
func NewCounter(capacity int) *Counter {
	return &Counter{ring: NewRing[bool](capacity)}
}

// Push appends v.
func (c *Counter) Push(v bool) {
	if v {
		c.count++
	}

	if evicted, ok := c.ring.Push(v); ok && evicted {
		c.count--
	}
}

// Ratio returns count/len, or 0 for an empty window.
func (c *Counter) Ratio() float64 {
	if c.ring.Len() == 0 {
		return 0
	}

	return float64(c.count) / float64(c.ring.Len())
}

// Len returns the number of values in the window.
func (c *Counter) Len() int {
	return c.ring.Len()
}

// Reset drops all values.
func (c *Counter) Reset() {
	c.ring.Reset()
	c.count = 0
}

// Mean averages a float window.
type Mean struct {
	// ring holds the recent samples.
	ring *Ring[float64]
}

// NewMean creates a mean over the last capacity samples.
func NewMean(capacity int) *Mean {
	return &Mean{ring: NewRing[float64](capacity)}
}

// Push appends v.
func (m *Mean) Push(v float64) {
	m.ring.Push(v)
}

// Value returns the mean, or 0 for an empty window.
func (m *Mean) Value() float64 {
	if m.ring.Len() == 0 {
		return 0
	}

	var sum float64
	m.ring.Each(func(v float64) { sum += v })

	return sum / float64(m.ring.Len())
}

// Len returns the number of samples.
func (m *Mean) Len() int {
	return m.ring.Len()
}

// Reset drops all samples.
func (m *Mean) Reset() {
	m.ring.Reset()
}
