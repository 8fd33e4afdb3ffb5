package lifo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushAndPop(t *testing.T) {
	stack := Stack[int]{}
	stack.Push(1)
	stack.Push(2)
	stack.Push(3)

	for _, want := range []int{3, 2, 1} {
		val, ok := stack.Pop()
		require.True(t, ok)
		assert.Equal(t, want, val)
	}
	assert.True(t, stack.IsEmpty())

	_, ok := stack.Pop()
	assert.False(t, ok)
}

func TestPeek(t *testing.T) {
	stack := New[string](0)
	_, ok := stack.Peek()
	assert.False(t, ok)

	stack.Push("main")
	stack.Push("f")
	val, ok := stack.Peek()
	require.True(t, ok)
	assert.Equal(t, "f", val)
	assert.Equal(t, 2, stack.Len())
}

func TestBounded(t *testing.T) {
	stack := New[int](3)
	for i := 1; i <= 5; i++ {
		stack.Push(i)
	}
	assert.Equal(t, 3, stack.Len())
	assert.Equal(t, []int{5, 4, 3}, stack.Items())
}

func TestCopyIsIndependent(t *testing.T) {
	stack := New[int](2)
	stack.Push(1)
	cp := stack.Copy()
	cp.Push(2)
	cp.Push(3)

	assert.Equal(t, []int{1}, stack.Items())
	assert.Equal(t, []int{3, 2}, cp.Items())
}

func TestClear(t *testing.T) {
	stack := New[int](0)
	stack.Push(1)
	stack.Clear()
	assert.True(t, stack.IsEmpty())
	assert.Empty(t, stack.Items())
}
