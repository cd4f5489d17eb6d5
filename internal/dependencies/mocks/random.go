package mocks

import (
	"sync"

	"github.com/mcoot/bingogame-go/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing
type MockRandom struct {
	mu sync.Mutex

	// IntnResults is a queue of results to return from Intn
	IntnResults []int
	intnIndex   int
	fallback    int

	// StringResults is a queue of results to return from String
	StringResults []string
	stringIndex   int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Intn returns the next queued result modulo n. Once the queue is empty it
// cycles through [0, n) so rejection sampling always terminates.
func (r *MockRandom) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.intn(n)
}

func (r *MockRandom) intn(n int) int {
	if n <= 0 {
		return 0
	}
	if r.intnIndex >= len(r.IntnResults) {
		result := r.fallback % n
		r.fallback++
		return result
	}
	result := r.IntnResults[r.intnIndex] % n
	r.intnIndex++
	return result
}

// String returns the next queued result. With an empty queue it builds a
// string from the Intn fallback sequence, so consecutive IDs stay distinct.
func (r *MockRandom) String(length int, alphabet string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stringIndex < len(r.StringResults) {
		result := r.StringResults[r.stringIndex]
		r.stringIndex++
		return result
	}
	if length <= 0 || len(alphabet) == 0 {
		return ""
	}
	// Encode the fallback counter so every generated string is unique
	n := r.fallback
	r.fallback++
	result := make([]byte, length)
	for i := length - 1; i >= 0; i-- {
		result[i] = alphabet[n%len(alphabet)]
		n /= len(alphabet)
	}
	return string(result)
}

// QueueIntn adds values to the Intn result queue
func (r *MockRandom) QueueIntn(values ...int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.IntnResults = append(r.IntnResults, values...)
}

// QueueString adds values to the String result queue
func (r *MockRandom) QueueString(values ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.StringResults = append(r.StringResults, values...)
}

// Reset clears all queued results
func (r *MockRandom) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.IntnResults = nil
	r.intnIndex = 0
	r.fallback = 0
	r.StringResults = nil
	r.stringIndex = 0
}
