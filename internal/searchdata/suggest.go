package searchdata

import "sort"

// Suggestion is a near miss offered when a lookup finds nothing.
type Suggestion struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Distance int    `json:"distance"`
}

// Suggest returns up to limit entries whose folded names are within a small
// edit distance of term, closest first.
func (t *Table) Suggest(term string, limit int) []Suggestion {
	if t == nil {
		return nil
	}
	if limit <= 0 {
		limit = 5
	}
	needle := foldName(term)
	if needle == "" {
		return nil
	}

	var out []Suggestion
	for _, entry := range t.entries {
		candidate, err := DecodeKey(entry.Key)
		if err != nil || candidate == "" {
			continue
		}
		distance := levenshteinDistance(needle, candidate)
		threshold := len(candidate) / 3
		if threshold < 2 {
			threshold = 2
		}
		if distance > threshold {
			continue
		}
		out = append(out, Suggestion{Key: entry.Key, Label: entry.Label(), Distance: distance})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].Key < out[j].Key
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func levenshteinDistance(a, b string) int {
	if a == b {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	current := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		current[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			current[j] = min(current[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, current = current, prev
	}
	return prev[len(rb)]
}
