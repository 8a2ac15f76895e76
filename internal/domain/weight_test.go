package domain

import (
	"sort"
	"testing"
)

func TestNextWeight(t *testing.T) {
	cases := []struct {
		max  string
		want string
	}{
		{"", "aaaa"},
		{"aaaa", "aaab"},
		{"aaaz", "aaba"},
		{"azzz", "baaa"},
		{"zzzz", "zzzza"},
	}
	for _, c := range cases {
		if got := NextWeight(c.max); got != c.want {
			t.Errorf("NextWeight(%q) = %q, want %q", c.max, got, c.want)
		}
	}
}

func TestMidWeightBetween(t *testing.T) {
	cases := []struct{ a, b string }{
		{"aaaa", "aaac"},
		{"aaaa", "aaab"},
		{"aaaa", "zzzz"},
		{"abcd", "abce"},
		{"az", "b"},
		{"aaaz", "aaba"},
		{"b", "baa"},
		{"b", "bab"},
	}
	for _, c := range cases {
		mid := MidWeight(c.a, c.b)
		if !(c.a < mid && mid < c.b) {
			t.Errorf("MidWeight(%q, %q) = %q, not strictly between", c.a, c.b, mid)
		}
	}
}

func TestMidWeightRepeatedHeadInsertStaysOrdered(t *testing.T) {
	// keep inserting between the first two keys; every key must remain
	// distinct and ordered
	lo, hi := "aaaa", "aaab"
	seen := map[string]bool{lo: true, hi: true}
	for i := 0; i < 50; i++ {
		mid := MidWeight(lo, hi)
		if seen[mid] {
			t.Fatalf("duplicate weight %q after %d inserts", mid, i)
		}
		seen[mid] = true
		if !(lo < mid && mid < hi) {
			t.Fatalf("weight %q escaped (%q, %q)", mid, lo, hi)
		}
		hi = mid
	}
}

func TestMidWeightWidenedNeighborHasNoRoom(t *testing.T) {
	// NextWeight widens an all-'z' key by appending 'a', and no key
	// sorts strictly between that pair; the midpoint falls back to the
	// lower bound instead of escaping above the upper one
	if got := MidWeight("zzzz", "zzzza"); got != "zzzz" {
		t.Errorf("MidWeight(%q, %q) = %q, want the lower bound back", "zzzz", "zzzza", got)
	}
}

func TestRebalanceWeights(t *testing.T) {
	weights := RebalanceWeights(30)
	if len(weights) != 30 {
		t.Fatalf("expected 30 weights, got %d", len(weights))
	}
	if !sort.StringsAreSorted(weights) {
		t.Fatalf("rebalanced weights not sorted: %v", weights)
	}
	seen := map[string]bool{}
	for _, w := range weights {
		if seen[w] {
			t.Fatalf("duplicate weight %q", w)
		}
		seen[w] = true
	}
	if weights[0] != FirstWeight {
		t.Errorf("expected first weight %q, got %q", FirstWeight, weights[0])
	}
}
