package domain

import "strings"

// Fractional ordering keys for user-orderable edge partitions. Keys are
// short lowercase strings compared lexicographically; inserting or
// moving one edge never rewrites its neighbors.

// FirstWeight starts an empty partition.
const FirstWeight = "aaaa"

// NextWeight returns a key sorting after max, for appending to the end
// of a partition. Pass "" for an empty partition.
func NextWeight(max string) string {
	if max == "" {
		return FirstWeight
	}
	b := []byte(max)
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] < 'z' {
			b[i]++
			return string(b)
		}
		b[i] = 'a'
	}
	// all 'z': widen instead of wrapping around
	return max + "a"
}

// MidWeight returns a key strictly between a and b. When the two are
// lexicographically adjacent at their current length the key is
// extended by one character so a distinct midpoint always exists.
// Requires a < b. The one pair with no key between it at all is
// (a, a+"a"), which NextWeight emits only when widening an all-'z'
// key; that pair returns a, and the duplicate weight is left for
// RebalanceWeights to repair.
func MidWeight(a, b string) string {
	if len(b) > len(a) && b[:len(a)] == a {
		if rest := b[len(a):]; strings.Trim(rest, "a") == "" {
			if len(rest) == 1 {
				return a
			}
			return b[:len(b)-1]
		}
	}

	prefix := make([]byte, 0, len(a)+1)
	for i := 0; ; i++ {
		ca := byte('a')
		if i < len(a) {
			ca = a[i]
		}
		cb := byte('z' + 1)
		if i < len(b) {
			cb = b[i]
		}
		if ca == cb {
			prefix = append(prefix, ca)
			continue
		}
		if cb-ca > 1 {
			return string(append(prefix, ca+(cb-ca)/2))
		}
		// adjacent characters: keep a's character and bisect the
		// remainder of a against the top of the alphabet
		prefix = append(prefix, ca)
		for j := i + 1; ; j++ {
			cj := byte('a')
			if j < len(a) {
				cj = a[j]
			}
			if cj < 'z' {
				return string(append(prefix, cj+('z'+1-cj)/2))
			}
			prefix = append(prefix, cj)
		}
	}
}

// RebalanceWeights returns a dense fresh key sequence for n edges,
// used as the corrective pass after a race leaves duplicate weights.
func RebalanceWeights(n int) []string {
	weights := make([]string, n)
	w := ""
	for i := 0; i < n; i++ {
		w = NextWeight(w)
		weights[i] = w
	}
	return weights
}
