// Package spine enumerates the vertex orderings ("spines") of a book embedding.
//
// A spine is a circular ordering of the vertices 1..n. Rotating or reflecting
// a spine does not change which edges cross, so the search only needs one
// representative per dihedral orbit: n!/(2n) spines for n >= 3 instead of n!.
//
// # Enumeration
//
// [Enumerate] materializes every permutation produced by [Permutations]
// (backtracking swap order on an explicit stack) in an insertion-ordered
// pool, then walks the pool in generation order keeping the first-seen member
// of each orbit and skipping the other 2n-1 members. The result is
// deterministic; for n = 4 it is [1 2 3 4], [1 2 4 3], [1 3 2 4].
//
// The pool needs n! entries, which stops being practical around n = 10.
// [Stream] yields the normalized representative of each orbit (vertex 1 first,
// second element smaller than the last) by generating permutations of 2..n
// only, so memory stays O(n). [Sequence] picks between the two at [PoolLimit].
//
// # Equivalence
//
// [Normalize] maps a spine to its normalized orbit representative and
// [Equivalent] compares two spines up to rotation and reflection. [Orbit]
// lists all 2n rotations and reflections of a spine.
package spine
