package queue

// UnlimitedCapacity disables the capacity check.
const UnlimitedCapacity = -1

// BufferHooks observe buffer traffic.
type BufferHooks[T any] struct {
	OnEnqueue func(item T, cycle int)
	OnDequeue func(item T, cycle int)
}

// MutateFunc is called with the new length and capacity after every change.
type MutateFunc func(length, capacity int)

// Buffer is a bounded FIFO. The network uses one per virtual channel of
// every input port; its capacity is the credit count of that channel.
type Buffer[T any] struct {
	name     string
	capacity int
	mutate   MutateFunc
	hooks    BufferHooks[T]
	items    []T
}

// NewBuffer creates an empty buffer (use UnlimitedCapacity for no limit).
func NewBuffer[T any](name string, capacity int, mutate MutateFunc, hooks BufferHooks[T]) *Buffer[T] {
	b := &Buffer[T]{
		name:     name,
		capacity: capacity,
		mutate:   mutate,
		hooks:    hooks,
	}
	b.notify()
	return b
}

func (b *Buffer[T]) Name() string {
	if b == nil {
		return ""
	}
	return b.name
}

// Capacity returns the buffer capacity (-1 for unlimited).
func (b *Buffer[T]) Capacity() int {
	if b == nil {
		return 0
	}
	return b.capacity
}

func (b *Buffer[T]) Len() int {
	if b == nil {
		return 0
	}
	return len(b.items)
}

// Free reports the remaining slots; unlimited buffers report -1.
func (b *Buffer[T]) Free() int {
	if b == nil {
		return 0
	}
	if b.capacity < 0 {
		return -1
	}
	return b.capacity - len(b.items)
}

func (b *Buffer[T]) Full() bool {
	return b == nil || (b.capacity >= 0 && len(b.items) >= b.capacity)
}

// Enqueue appends item at the tail; it fails when the buffer is full.
func (b *Buffer[T]) Enqueue(item T, cycle int) bool {
	if b.Full() {
		return false
	}
	b.items = append(b.items, item)
	b.notify()
	if b.hooks.OnEnqueue != nil {
		b.hooks.OnEnqueue(item, cycle)
	}
	return true
}

// Peek returns the head without removing it.
func (b *Buffer[T]) Peek() (T, bool) {
	var zero T
	if b == nil || len(b.items) == 0 {
		return zero, false
	}
	return b.items[0], true
}

// Dequeue removes and returns the head.
func (b *Buffer[T]) Dequeue(cycle int) (T, bool) {
	var zero T
	if b == nil || len(b.items) == 0 {
		return zero, false
	}
	item := b.items[0]
	b.items[0] = zero
	b.items = b.items[1:]
	if len(b.items) == 0 {
		b.items = nil
	}
	b.notify()
	if b.hooks.OnDequeue != nil {
		b.hooks.OnDequeue(item, cycle)
	}
	return item, true
}

// Reset drops every item without firing hooks.
func (b *Buffer[T]) Reset() {
	if b == nil {
		return
	}
	b.items = nil
	b.notify()
}

// ForEach iterates from head to tail.
func (b *Buffer[T]) ForEach(fn func(item T)) {
	if b == nil || fn == nil {
		return
	}
	for _, item := range b.items {
		fn(item)
	}
}

func (b *Buffer[T]) notify() {
	if b == nil || b.mutate == nil {
		return
	}
	b.mutate(len(b.items), b.capacity)
}
