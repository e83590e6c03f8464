// Package suggest proposes near matches for mistyped command and option names.
package suggest

import (
	"sort"
)

// MaxDistance is the largest edit distance at which a candidate is still offered
const MaxDistance = 3

// Options tunes Suggest. The zero value uses MaxDistance.
type Options struct {
	MaxDistance int
}

func (o Options) maxDistance() int {
	if o.MaxDistance <= 0 {
		return MaxDistance
	}
	return o.MaxDistance
}

type scored struct {
	candidate string
	distance  int
	prefix    int
}

// Suggest returns the candidates within MaxDistance edits of token, closest
// first. Ties are broken by the length of the shared prefix, then
// lexically. It never fails; no close candidate means an empty slice.
func Suggest(token string, candidates []string) []string {
	return Options{}.Suggest(token, candidates)
}

// Best returns the closest candidate, or "" when none is close enough
func Best(token string, candidates []string) string {
	return Options{}.Best(token, candidates)
}

// Suggest is Suggest with a custom threshold
func (o Options) Suggest(token string, candidates []string) []string {
	limit := o.maxDistance()
	seen := make(map[string]struct{}, len(candidates))
	matches := make([]scored, 0, len(candidates))

	for _, c := range candidates {
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}

		if abs(len(c)-len(token)) > limit {
			continue
		}
		d := Distance(token, c)
		if d > limit {
			continue
		}
		matches = append(matches, scored{candidate: c, distance: d, prefix: sharedPrefix(token, c)})
	}

	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.distance != b.distance {
			return a.distance < b.distance
		}
		if a.prefix != b.prefix {
			return a.prefix > b.prefix
		}
		return a.candidate < b.candidate
	})

	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.candidate
	}
	return out
}

// Best is Best with a custom threshold
func (o Options) Best(token string, candidates []string) string {
	if s := o.Suggest(token, candidates); len(s) > 0 {
		return s[0]
	}
	return ""
}

// Distance is the optimal string alignment distance between a and b:
// insertions, deletions, substitutions and adjacent transpositions each cost one.
// It works on runes.
func Distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	n, m := len(ra), len(rb)
	if n == 0 {
		return m
	}
	if m == 0 {
		return n
	}

	// three rolling rows: two back, previous, current
	prev2 := make([]int, m+1)
	prev := make([]int, m+1)
	curr := make([]int, m+1)
	for j := 0; j <= m; j++ {
		prev[j] = j
	}

	for i := 1; i <= n; i++ {
		curr[0] = i
		for j := 1; j <= m; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				curr[j] = min(curr[j], prev2[j-2]+1)
			}
		}
		prev2, prev, curr = prev, curr, prev2
	}
	return prev[m]
}

func sharedPrefix(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
