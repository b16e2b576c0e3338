package fleet

// Ring is a fixed-capacity sequence that evicts its oldest element once full.
// Not safe for concurrent use; callers hold the owning state's lock.
type Ring[T any] struct {
	buf  []T
	head int
	size int
}

func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{buf: make([]T, capacity)}
}

func (r *Ring[T]) Append(v T) {
	if r.size < len(r.buf) {
		r.buf[(r.head+r.size)%len(r.buf)] = v
		r.size++
		return
	}
	r.buf[r.head] = v
	r.head = (r.head + 1) % len(r.buf)
}

func (r *Ring[T]) Len() int {
	return r.size
}

func (r *Ring[T]) Cap() int {
	return len(r.buf)
}

// Items returns a copy in arrival order, oldest first.
func (r *Ring[T]) Items() []T {
	items := make([]T, r.size)
	for i := 0; i < r.size; i++ {
		items[i] = r.buf[(r.head+i)%len(r.buf)]
	}
	return items
}

// Tail returns a copy of the most recent n elements in arrival order.
func (r *Ring[T]) Tail(n int) []T {
	if n <= 0 || r.size == 0 {
		return nil
	}
	if n > r.size {
		n = r.size
	}
	items := make([]T, n)
	start := r.size - n
	for i := 0; i < n; i++ {
		items[i] = r.buf[(r.head+start+i)%len(r.buf)]
	}
	return items
}

func (r *Ring[T]) Last() (T, bool) {
	var zero T
	if r.size == 0 {
		return zero, false
	}
	return r.buf[(r.head+r.size-1)%len(r.buf)], true
}
