package xerr

// Suggest returns up to maxSuggestions candidates within edit distance 2
// of name, closest first. No example repo in the retrieval pack carries a
// Levenshtein-distance dependency (the pack's "did you mean" style,
// e.g. prefixtree-based command lookup, only matches unique prefixes) so
// this one piece of arithmetic is hand-rolled on the standard library.
func Suggest(name string, candidates []string) []string {
	const maxDistance = 2
	const maxSuggestions = 3

	type scored struct {
		name string
		dist int
	}
	var best []scored
	for _, c := range candidates {
		d := levenshtein(name, c)
		if d <= maxDistance {
			best = append(best, scored{c, d})
		}
	}

	// Insertion sort by distance; candidate lists are small.
	for i := 1; i < len(best); i++ {
		for j := i; j > 0 && best[j].dist < best[j-1].dist; j-- {
			best[j], best[j-1] = best[j-1], best[j]
		}
	}

	if len(best) > maxSuggestions {
		best = best[:maxSuggestions]
	}
	out := make([]string, len(best))
	for i, b := range best {
		out[i] = b.name
	}
	return out
}

func levenshtein(a, b string) int {
	la, lb := len(a), len(b)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}

	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if foldEq(a[i-1], b[j-1]) {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			curr[j] = min3(del, ins, sub)
		}
		prev, curr = curr, prev
	}
	return prev[lb]
}

func foldEq(a, b byte) bool {
	return lower(a) == lower(b)
}

func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + 32
	}
	return c
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
