package spine

import (
	"math"
	"slices"
)

// Seq returns the sequence [1, 2, ..., n].
// For n <= 0, Seq returns an empty slice.
func Seq(n int) []int {
	result := make([]int, max(n, 0))
	for i := range result {
		result[i] = i + 1
	}
	return result
}

// MaxFactorial is the largest n whose factorial fits in an int64.
const MaxFactorial = 20

// Factorial returns n! (n factorial), the product 1 × 2 × ... × n.
// For n <= 1, Factorial returns 1. Results that do not fit in an int
// saturate at math.MaxInt.
func Factorial(n int) int {
	result := 1
	for i := 2; i <= n; i++ {
		if result > math.MaxInt/i {
			return math.MaxInt
		}
		result *= i
	}
	return result
}

// Permutations iterates over every permutation of a label set in
// backtracking swap order: position 0 is swapped with each position in turn,
// the rest of the slice is permuted recursively, and the swap is undone. The
// recursion is kept on an explicit stack. The first permutation is the label
// order itself and the order is lexicographic only for n <= 3.
//
// The iterator is restartable with [Permutations.Reset] and keeps O(n) state,
// so it can drive searches over n! orderings without materializing them.
//
//	it := spine.NewPermutations(3)
//	for it.Next() {
//	    fmt.Println(it.Value())
//	}
//	// [1 2 3] [1 3 2] [2 1 3] [2 3 1] [3 2 1] [3 1 2]
type Permutations struct {
	labels []int
	perm   []int
	// swap[l] is the position currently swapped into position l.
	swap    []int
	started bool
	done    bool
}

// NewPermutations iterates over the permutations of 1..n.
// n = 0 yields a single empty permutation.
func NewPermutations(n int) *Permutations {
	return PermutationsOf(Seq(n))
}

// PermutationsOf iterates over the permutations of labels. The first
// permutation is labels itself. The slice is copied.
func PermutationsOf(labels []int) *Permutations {
	p := &Permutations{labels: slices.Clone(labels)}
	p.Reset()
	return p
}

// Reset rewinds the iterator to the first permutation.
func (p *Permutations) Reset() {
	p.perm = slices.Clone(p.labels)
	p.swap = make([]int, len(p.labels))
	for l := range p.swap {
		p.swap[l] = l
	}
	p.started = false
	p.done = false
}

// Next advances to the next permutation and reports whether one exists.
func (p *Permutations) Next() bool {
	if p.done {
		return false
	}
	if !p.started {
		p.started = true
		return true
	}
	n := len(p.perm)
	for l := n - 2; l >= 0; l-- {
		i := p.swap[l]
		p.perm[l], p.perm[i] = p.perm[i], p.perm[l]
		i++
		if i < n {
			p.swap[l] = i
			p.perm[l], p.perm[i] = p.perm[i], p.perm[l]
			for m := l + 1; m < n-1; m++ {
				p.swap[m] = m
			}
			return true
		}
	}
	p.done = true
	return false
}

// Value returns a copy of the current permutation.
// It must only be called after Next has returned true.
func (p *Permutations) Value() Spine {
	return slices.Clone(p.perm)
}

// current exposes the internal buffer without copying. Callers must not
// retain or modify it.
func (p *Permutations) current() []int {
	return p.perm
}
