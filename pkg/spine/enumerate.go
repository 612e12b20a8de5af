package spine

import (
	"iter"
	"math"
	"slices"

	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// PoolLimit is the largest vertex count for which [Sequence] materializes the
// full permutation pool. 9! = 362,880 pool entries; 10! is ten times that.
const PoolLimit = 9

// MaxCountable is the largest vertex count whose spine count fits in an
// int64.
const MaxCountable = MaxFactorial + 1

// Count returns the number of dihedral classes of spines on n vertices:
// 1 for n <= 2 and n!/(2n) = (n-1)!/2 otherwise. Above [MaxCountable] the
// count saturates at math.MaxInt.
func Count(n int) int {
	if n <= 2 {
		return 1
	}
	f := Factorial(n - 1)
	if f == math.MaxInt {
		return math.MaxInt
	}
	return f / 2
}

// Enumerate returns one spine per dihedral orbit of the permutations of 1..n.
//
// All n! permutations are generated with [Permutations] and stored, keyed by
// their linear representation, in an insertion-ordered pool. Walking the pool
// in generation order, each permutation not yet covered is kept and every
// member of its orbit (rotations, and rotations of its reflection) is marked
// covered. The kept spine is therefore the first-seen member of its orbit.
//
// For n <= 1 the single trivial spine is returned.
func Enumerate(n int) []Spine {
	if n <= 1 {
		return []Spine{Seq(n)}
	}

	pool := linkedhashmap.New()
	perms := NewPermutations(n)
	for perms.Next() {
		s := perms.Value()
		pool.Put(s.Key(), s)
	}

	// linkedhashmap.Remove is linear in the pool size, so removals are
	// tracked on the side.
	covered := make(map[string]struct{}, pool.Size())
	out := make([]Spine, 0, Count(n))
	it := pool.Iterator()
	for it.Next() {
		if _, ok := covered[it.Key().(string)]; ok {
			continue
		}
		s := it.Value().(Spine)
		out = append(out, s)
		for _, member := range s.Orbit() {
			covered[member.Key()] = struct{}{}
		}
	}
	return out
}

// Stream yields the normalized representative of every dihedral orbit on n
// vertices without materializing the permutation pool: vertex 1 is fixed at
// position 0, the remaining vertices are permuted, and of each reflected pair
// only the one with spine[1] < spine[n-1] is kept.
//
// The sequence is finite and restartable; each range over it starts fresh.
func Stream(n int) iter.Seq[Spine] {
	return func(yield func(Spine) bool) {
		if n <= 2 {
			yield(Seq(n))
			return
		}
		rest := NewPermutations(n - 1)
		buf := make(Spine, n)
		buf[0] = 1
		for rest.Next() {
			tail := rest.current()
			if tail[0] > tail[len(tail)-1] {
				continue
			}
			for i, v := range tail {
				buf[i+1] = v + 1
			}
			if !yield(slices.Clone(buf)) {
				return
			}
		}
	}
}

// Sequence returns the canonical spines for n vertices and their count.
// Up to [PoolLimit] vertices the spines come from [Enumerate]; above it from
// [Stream].
func Sequence(n int) (iter.Seq[Spine], int) {
	if n <= PoolLimit {
		return slices.Values(Enumerate(n)), Count(n)
	}
	return Stream(n), Count(n)
}
