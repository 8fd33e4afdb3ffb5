package memory

// Stack is a region that grows downwards from end, exclusive: the byte at
// end-1 has index 0.
type Stack struct {
	*Memory
	end uint32
}

// NewStack returns a growable region of size bytes below end.
func NewStack(size int, end uint32, opts ...Option) *Stack {
	s := &Stack{Memory: New(size, end, opts...), end: end}
	s.index = s.inverted
	return s
}

func (s *Stack) inverted(addr uint32) int {
	return int(int64(s.end) - 1 - int64(addr))
}

// End is the first address above the stack.
func (s *Stack) End() uint32 {
	return s.end
}
