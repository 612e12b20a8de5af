package spine

import (
	"math"
	"slices"
	"testing"
	"time"

	"github.com/matzehuels/bookthickness/pkg/errors"
)

func collect(it *Permutations) []Spine {
	var out []Spine
	for it.Next() {
		out = append(out, it.Value())
	}
	return out
}

func TestPermutationsCount(t *testing.T) {
	for n := 0; n <= 7; n++ {
		seen := map[string]bool{}
		for _, v := range collect(NewPermutations(n)) {
			if err := Validate(v, n); err != nil {
				t.Fatalf("n=%d: invalid permutation %v: %v", n, v, err)
			}
			seen[v.Key()] = true
		}
		if len(seen) != Factorial(n) {
			t.Errorf("n=%d: got %d distinct permutations, want %d", n, len(seen), Factorial(n))
		}
	}
}

func TestPermutationsOrder(t *testing.T) {
	got := collect(NewPermutations(3))
	want := []Spine{{1, 2, 3}, {1, 3, 2}, {2, 1, 3}, {2, 3, 1}, {3, 2, 1}, {3, 1, 2}}
	if !slices.EqualFunc(got, want, slices.Equal[Spine]) {
		t.Errorf("NewPermutations(3) = %v, want %v", got, want)
	}

	got = collect(NewPermutations(4))[:7]
	want = []Spine{{1, 2, 3, 4}, {1, 2, 4, 3}, {1, 3, 2, 4}, {1, 3, 4, 2}, {1, 4, 3, 2}, {1, 4, 2, 3}, {2, 1, 3, 4}}
	if !slices.EqualFunc(got, want, slices.Equal[Spine]) {
		t.Errorf("NewPermutations(4) starts %v, want %v", got, want)
	}
}

func TestPermutationsSmall(t *testing.T) {
	tests := []struct {
		n    int
		want []Spine
	}{
		{0, []Spine{{}}},
		{1, []Spine{{1}}},
		{2, []Spine{{1, 2}, {2, 1}}},
	}

	for _, tt := range tests {
		got := collect(NewPermutations(tt.n))
		if !slices.EqualFunc(got, tt.want, slices.Equal[Spine]) {
			t.Errorf("NewPermutations(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}

func TestPermutationsOfLabels(t *testing.T) {
	got := collect(PermutationsOf([]int{7, 9}))
	want := []Spine{{7, 9}, {9, 7}}
	if !slices.EqualFunc(got, want, slices.Equal[Spine]) {
		t.Errorf("PermutationsOf([7 9]) = %v, want %v", got, want)
	}
}

func TestPermutationsReset(t *testing.T) {
	it := NewPermutations(4)
	first := collect(it)
	if it.Next() {
		t.Fatal("exhausted iterator advanced again")
	}

	it.Reset()
	second := collect(it)
	if !slices.EqualFunc(first, second, slices.Equal[Spine]) {
		t.Errorf("order after Reset differs:\n%v\n%v", first, second)
	}
}

func TestPermutationsValueIsCopy(t *testing.T) {
	it := NewPermutations(3)
	if !it.Next() {
		t.Fatal("no first permutation")
	}
	v := it.Value()
	v[0] = 99
	if got := it.Value(); !slices.Equal(got, Spine{1, 2, 3}) {
		t.Errorf("Value() = %v after modifying a copy", got)
	}
}

func TestFactorial(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{-1, 1},
		{0, 1},
		{1, 1},
		{5, 120},
		{MaxFactorial, 2432902008176640000},
		{MaxFactorial + 1, math.MaxInt},
		{40, math.MaxInt},
	}

	for _, tt := range tests {
		if got := Factorial(tt.n); got != tt.want {
			t.Errorf("Factorial(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestCount(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{0, 1},
		{2, 1},
		{3, 1},
		{9, 20160},
		{12, 19958400},
		{MaxCountable, 1216451004088320000},
		{MaxCountable + 1, math.MaxInt},
		{64, math.MaxInt},
	}

	for _, tt := range tests {
		if got := Count(tt.n); got != tt.want {
			t.Errorf("Count(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestEnumerateSizes(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{0, 1},
		{1, 1},
		{2, 1},
		{3, 1},
		{4, 3},
		{5, 12},
		{6, 60},
		{7, 360},
		{8, 2520},
		{9, 20160},
	}

	for _, tt := range tests {
		got := Enumerate(tt.n)
		if len(got) != tt.want {
			t.Errorf("len(Enumerate(%d)) = %d, want %d", tt.n, len(got), tt.want)
		}
		if c := Count(tt.n); c != tt.want {
			t.Errorf("Count(%d) = %d, want %d", tt.n, c, tt.want)
		}
	}
}

func TestEnumeratePoolLimitIsFast(t *testing.T) {
	if testing.Short() {
		t.Skip("enumerates the full pool")
	}

	start := time.Now()
	spines := Enumerate(8)
	if d := time.Since(start); d > 5*time.Second {
		t.Errorf("Enumerate(8) took %v", d)
	}
	if len(spines) != 2520 {
		t.Fatalf("len(Enumerate(8)) = %d, want 2520", len(spines))
	}

	start = time.Now()
	seq, total := Sequence(PoolLimit)
	c := 0
	for range seq {
		c++
	}
	if d := time.Since(start); d > 20*time.Second {
		t.Errorf("Sequence(%d) took %v", PoolLimit, d)
	}
	if c != total {
		t.Errorf("Sequence(%d) yielded %d spines, want %d", PoolLimit, c, total)
	}
}

func TestEnumerateCoversEveryPermutationOnce(t *testing.T) {
	for n := 3; n <= 9; n++ {
		spines := Enumerate(n)
		owner := make(map[string]int, Factorial(n))
		for i, s := range spines {
			for _, member := range s.Orbit() {
				if j, ok := owner[member.Key()]; ok && j != i {
					t.Fatalf("n=%d: %v and %v are equivalent", n, spines[j], s)
				}
				owner[member.Key()] = i
			}
		}

		it := NewPermutations(n)
		for it.Next() {
			if _, ok := owner[Spine(it.current()).Key()]; !ok {
				t.Fatalf("n=%d: %v has no representative", n, it.Value())
			}
		}
		if len(owner) != Factorial(n) {
			t.Errorf("n=%d: orbits cover %d permutations, want %d", n, len(owner), Factorial(n))
		}
	}
}

func TestEnumerateKeepsFirstSeen(t *testing.T) {
	tests := []struct {
		n    int
		want []Spine
	}{
		{4, []Spine{{1, 2, 3, 4}, {1, 2, 4, 3}, {1, 3, 2, 4}}},
		{5, []Spine{
			{1, 2, 3, 4, 5}, {1, 2, 3, 5, 4}, {1, 2, 4, 3, 5}, {1, 2, 4, 5, 3},
			{1, 2, 5, 4, 3}, {1, 2, 5, 3, 4}, {1, 3, 2, 4, 5}, {1, 3, 2, 5, 4},
			{1, 3, 4, 2, 5}, {1, 3, 5, 2, 4}, {1, 4, 3, 2, 5}, {1, 4, 2, 3, 5},
		}},
	}

	for _, tt := range tests {
		got := Enumerate(tt.n)
		if !slices.EqualFunc(got, tt.want, slices.Equal[Spine]) {
			t.Errorf("Enumerate(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}

func TestStreamMatchesEnumerate(t *testing.T) {
	for n := 0; n <= 8; n++ {
		var streamed []Spine
		for s := range Stream(n) {
			streamed = append(streamed, s)
		}
		if len(streamed) != Count(n) {
			t.Fatalf("n=%d: streamed %d spines, want %d", n, len(streamed), Count(n))
		}

		pooled := map[string]bool{}
		for _, p := range Enumerate(n) {
			pooled[Normalize(p).Key()] = true
		}
		for _, s := range streamed {
			if !slices.Equal(s, Normalize(s)) {
				t.Errorf("n=%d: streamed spine %v is not normalized", n, s)
			}
			if !pooled[s.Key()] {
				t.Errorf("n=%d: %v has no pooled counterpart", n, s)
			}
		}
	}
}

func TestStreamIsRestartable(t *testing.T) {
	seq := Stream(5)
	count := func() int {
		c := 0
		for range seq {
			c++
		}
		return c
	}
	if a, b := count(), count(); a != 12 || b != 12 {
		t.Errorf("Stream(5) yielded %d then %d spines, want 12 both times", a, b)
	}
}

func TestStreamEarlyStop(t *testing.T) {
	c := 0
	for range Stream(6) {
		c++
		if c == 3 {
			break
		}
	}
	if c != 3 {
		t.Errorf("iterated %d spines, want 3", c)
	}
}

func TestSequence(t *testing.T) {
	seq, total := Sequence(5)
	if total != 12 {
		t.Errorf("Sequence(5) total = %d, want 12", total)
	}
	c := 0
	for range seq {
		c++
	}
	if c != total {
		t.Errorf("Sequence(5) yielded %d spines, want %d", c, total)
	}

	seq, total = Sequence(PoolLimit + 2)
	if want := Factorial(PoolLimit+1) / 2; total != want {
		t.Errorf("Sequence(%d) total = %d, want %d", PoolLimit+2, total, want)
	}
	for s := range seq {
		if !slices.Equal(s, Spine(Seq(PoolLimit+2))) {
			t.Errorf("first streamed spine = %v, want %v", s, Seq(PoolLimit+2))
		}
		break
	}
}

func TestOrbit(t *testing.T) {
	s := Spine{1, 2, 3, 4}
	orbit := s.Orbit()
	if len(orbit) != 8 {
		t.Fatalf("len(Orbit()) = %d, want 8", len(orbit))
	}
	if !slices.Equal(orbit[0], s) {
		t.Errorf("Orbit()[0] = %v, want %v", orbit[0], s)
	}
	for _, want := range []Spine{{4, 1, 2, 3}, {4, 3, 2, 1}, {2, 1, 4, 3}} {
		if !slices.ContainsFunc(orbit, func(o Spine) bool { return slices.Equal(o, want) }) {
			t.Errorf("Orbit() is missing %v", want)
		}
	}
	for _, o := range orbit {
		if !Equivalent(s, o) {
			t.Errorf("Equivalent(%v, %v) = false", s, o)
		}
	}
	if Equivalent(s, Spine{1, 3, 2, 4}) {
		t.Error("Equivalent([1 2 3 4], [1 3 2 4]) = true")
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   Spine
		want Spine
	}{
		{Spine{3, 1, 2}, Spine{1, 2, 3}},
		{Spine{2, 1, 4, 3}, Spine{1, 2, 3, 4}},
		{Spine{1, 4, 3, 2}, Spine{1, 2, 3, 4}},
		{Spine{5, 3, 1, 2, 4}, Spine{1, 2, 4, 5, 3}},
		{Spine{2, 1}, Spine{1, 2}},
		{Spine{}, Spine{}},
	}

	for _, tt := range tests {
		t.Run(tt.in.String(), func(t *testing.T) {
			if got := Normalize(tt.in); !slices.Equal(got, tt.want) {
				t.Errorf("Normalize(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRotateReverse(t *testing.T) {
	s := Spine{1, 2, 3, 4, 5}
	tests := []struct {
		name string
		got  Spine
		want Spine
	}{
		{"rotate 1", s.Rotate(1), Spine{5, 1, 2, 3, 4}},
		{"rotate -2", s.Rotate(-2), Spine{3, 4, 5, 1, 2}},
		{"rotate n", s.Rotate(5), s},
		{"reverse", s.Reverse(), Spine{5, 4, 3, 2, 1}},
	}

	for _, tt := range tests {
		if !slices.Equal(tt.got, tt.want) {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
	if !slices.Equal(s, Spine{1, 2, 3, 4, 5}) {
		t.Errorf("receiver modified: %v", s)
	}
}

func TestAdjacent(t *testing.T) {
	s := Spine{1, 3, 2, 4}
	tests := []struct {
		a, b int
		want bool
	}{
		{1, 3, true},
		{4, 1, true},
		{1, 2, false},
	}

	for _, tt := range tests {
		if got := s.Adjacent(tt.a, tt.b); got != tt.want {
			t.Errorf("%v.Adjacent(%d, %d) = %v, want %v", s, tt.a, tt.b, got, tt.want)
		}
	}
	if (Spine{1}).Adjacent(1, 1) {
		t.Error("single vertex spine reports a self pair as adjacent")
	}
}

func TestPositions(t *testing.T) {
	pos := Spine{3, 1, 2}.Positions()
	if want := []int{0, 1, 2, 0}; !slices.Equal(pos, want) {
		t.Errorf("Positions() = %v, want %v", pos, want)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		spine   Spine
		n       int
		wantErr bool
	}{
		{"valid", Spine{2, 1, 3}, 3, false},
		{"empty", Spine{}, 0, false},
		{"too short", Spine{1, 2}, 3, true},
		{"duplicate", Spine{1, 1, 3}, 3, true},
		{"out of range", Spine{1, 2, 4}, 3, true},
		{"zero", Spine{0, 1, 2}, 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.spine, tt.n)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(%v, %d) error = %v, wantErr %v", tt.spine, tt.n, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidSpine) {
				t.Errorf("Validate(%v, %d) returned wrong error code: %v", tt.spine, tt.n, err)
			}
		})
	}
}

func TestParse(t *testing.T) {
	s, err := Parse(" 1, 3,2 ")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !slices.Equal(s, Spine{1, 3, 2}) {
		t.Errorf("Parse() = %v, want [1 3 2]", s)
	}

	if _, err := Parse("1,x"); !errors.Is(err, errors.ErrCodeInvalidSpine) {
		t.Errorf("Parse(\"1,x\") error = %v, want INVALID_SPINE", err)
	}

	s, err = Parse("")
	if err != nil || len(s) != 0 {
		t.Errorf("Parse(\"\") = %v, %v; want empty", s, err)
	}
}
