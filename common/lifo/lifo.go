// Package lifo implements lifo stack
package lifo

// Stack is a LIFO stack. A positive limit bounds its depth: pushing onto a
// full stack discards the oldest item.
type Stack[T any] struct {
	items []T
	limit int
}

// New returns an empty stack holding at most limit items, zero means unbounded.
func New[T any](limit int) *Stack[T] {
	return &Stack[T]{limit: limit}
}

// Push adds an item to the stack
func (s *Stack[T]) Push(value T) {
	if s.limit > 0 && len(s.items) == s.limit {
		copy(s.items, s.items[1:])
		s.items = s.items[:len(s.items)-1]
	}
	s.items = append(s.items, value)
}

// Pop removes and returns the last item from the stack
func (s *Stack[T]) Pop() (T, bool) {
	if len(s.items) == 0 {
		var zero T
		return zero, false
	}
	val := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return val, true
}

// Peek returns the last item without removing it
func (s *Stack[T]) Peek() (T, bool) {
	if len(s.items) == 0 {
		var zero T
		return zero, false
	}
	return s.items[len(s.items)-1], true
}

// Len returns the number of items in the stack
func (s *Stack[T]) Len() int {
	return len(s.items)
}

// IsEmpty checks if the stack is empty
func (s *Stack[T]) IsEmpty() bool {
	return len(s.items) == 0
}

// Items returns the items from the top of the stack down.
func (s *Stack[T]) Items() []T {
	out := make([]T, len(s.items))
	for i, item := range s.items {
		out[len(s.items)-1-i] = item
	}
	return out
}

// Clear empties the stack.
func (s *Stack[T]) Clear() {
	s.items = s.items[:0]
}

// Copy creates a new stack with the same elements
func (s *Stack[T]) Copy() *Stack[T] {
	return &Stack[T]{items: append([]T{}, s.items...), limit: s.limit}
}
