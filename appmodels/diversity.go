package appmodels

import "math"

// Diversity is the Shannon entropy of the counts normalised by ln(n), n being the number of
// non-empty categories. It is 0 when there is at most one category.
func Diversity(counts []int) float64 {
	total := 0
	categories := 0
	uniform := true
	first := 0

	for _, count := range counts {
		if count <= 0 {
			continue
		}
		if first == 0 {
			first = count
		} else if count != first {
			uniform = false
		}
		total += count
		categories++
	}

	if categories <= 1 || total == 0 {
		return 0
	}

	if uniform {
		return 1
	}

	entropy := 0.0

	for _, count := range counts {
		if count <= 0 {
			continue
		}
		p := float64(count) / float64(total)
		entropy -= p * math.Log(p)
	}

	diversity := entropy / math.Log(float64(categories))

	if diversity > 1 {
		return 1
	}
	if diversity < 0 {
		return 0
	}

	return diversity
}
