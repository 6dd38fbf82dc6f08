package cpu

import "fmt"

// StackDepth is the maximum number of nested subroutine calls
const StackDepth = 16

// Stack is the bounded LIFO of return addresses. Overflow and underflow are
// program-integrity violations with no defined continuation semantics, so
// both abort execution instead of returning an error.
type Stack struct {
	addresses [StackDepth]uint16
	pointer   int
}

// NewStack creates an empty call stack
func NewStack() *Stack {
	return &Stack{}
}

// Push appends a return address. It aborts on the 17th nested call.
func (s *Stack) Push(address uint16) {
	if s.pointer >= StackDepth {
		panic(fmt.Sprintf("cpu: stack overflow, more than %d nested subroutine calls", StackDepth))
	}
	s.addresses[s.pointer] = address
	s.pointer++
}

// Pop removes and returns the most recently pushed address. It aborts on a
// return without a pending call.
func (s *Stack) Pop() uint16 {
	if s.pointer == 0 {
		panic("cpu: stack underflow, return without call")
	}
	s.pointer--
	return s.addresses[s.pointer]
}

// Depth returns the number of saved return addresses
func (s *Stack) Depth() int {
	return s.pointer
}

// Addresses returns a copy of the saved return addresses, oldest first
func (s *Stack) Addresses() []uint16 {
	out := make([]uint16, s.pointer)
	copy(out, s.addresses[:s.pointer])
	return out
}

// Reset empties the stack
func (s *Stack) Reset() {
	s.addresses = [StackDepth]uint16{}
	s.pointer = 0
}
