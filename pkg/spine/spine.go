package spine

import (
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/bookthickness/pkg/errors"
)

// Spine is a circular ordering of the vertices 1..n.
type Spine []int

// Positions returns pos where pos[v] is the index of vertex v in s.
// Index 0 is unused; the slice has length len(s)+1.
func (s Spine) Positions() []int {
	pos := make([]int, len(s)+1)
	for i, v := range s {
		pos[v] = i
	}
	return pos
}

// Key returns the linear representation used to deduplicate spines,
// e.g. "1,3,2".
func (s Spine) Key() string {
	var b strings.Builder
	for i, v := range s {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(v))
	}
	return b.String()
}

// String formats the spine as "[1 3 2]".
func (s Spine) String() string {
	return "[" + strings.ReplaceAll(s.Key(), ",", " ") + "]"
}

// Rotate returns s rotated right by k positions: the last k vertices move
// to the front.
func (s Spine) Rotate(k int) Spine {
	n := len(s)
	if n == 0 {
		return Spine{}
	}
	k = ((k % n) + n) % n
	out := make(Spine, 0, n)
	out = append(out, s[n-k:]...)
	return append(out, s[:n-k]...)
}

// Reverse returns s in reverse order.
func (s Spine) Reverse() Spine {
	out := slices.Clone(s)
	slices.Reverse(out)
	return out
}

// Adjacent reports whether a and b are neighbours on the circle, including
// the wraparound pair formed by the first and last positions.
func (s Spine) Adjacent(a, b int) bool {
	n := len(s)
	if n < 2 {
		return false
	}
	for i := range n {
		j := (i + 1) % n
		if (s[i] == a && s[j] == b) || (s[i] == b && s[j] == a) {
			return true
		}
	}
	return false
}

// Orbit returns all 2n rotations and reflections of s, starting with s
// itself, then its rotations, then the rotations of its reflection. For
// n <= 2 some members coincide.
func (s Spine) Orbit() []Spine {
	n := len(s)
	out := make([]Spine, 0, 2*n)
	rot := slices.Clone(s)
	for range n {
		out = append(out, rot)
		rot = rot.Rotate(1)
	}
	flip := s.Reverse()
	for range n {
		out = append(out, flip)
		flip = flip.Rotate(1)
	}
	return out
}

// Normalize returns the normalized representative of the orbit of s: the
// rotation starting with its smallest vertex, reflected if necessary so that
// the second vertex is smaller than the last.
func Normalize(s Spine) Spine {
	n := len(s)
	if n == 0 {
		return Spine{}
	}
	start := 0
	for i, v := range s {
		if v < s[start] {
			start = i
		}
	}
	out := make(Spine, n)
	for i := range n {
		out[i] = s[(start+i)%n]
	}
	if n >= 3 && out[1] > out[n-1] {
		slices.Reverse(out[1:])
	}
	return out
}

// Equivalent reports whether a and b are rotations or reflections of each other.
func Equivalent(a, b Spine) bool {
	if len(a) != len(b) {
		return false
	}
	return slices.Equal(Normalize(a), Normalize(b))
}

// Validate checks that s is a permutation of exactly 1..n.
func Validate(s Spine, n int) error {
	if len(s) != n {
		return errors.New(errors.ErrCodeInvalidSpine, "spine %v has %d vertices, graph has %d", s, len(s), n)
	}
	seen := make([]bool, n+1)
	for _, v := range s {
		if v < 1 || v > n {
			return errors.New(errors.ErrCodeInvalidSpine, "spine %v: vertex %d outside 1..%d", s, v, n)
		}
		if seen[v] {
			return errors.New(errors.ErrCodeInvalidSpine, "spine %v: vertex %d appears twice", s, v)
		}
		seen[v] = true
	}
	return nil
}

// Parse reads a comma-separated spine such as "1,3,2,4".
func Parse(text string) (Spine, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Spine{}, nil
	}
	parts := strings.Split(text, ",")
	out := make(Spine, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidSpine, err, "spine %q: invalid vertex %q", text, p)
		}
		out[i] = v
	}
	return out, nil
}
