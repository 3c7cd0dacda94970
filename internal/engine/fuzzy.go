package engine

import (
	"regexp"
	"strings"
)

var nonWordPattern = regexp.MustCompile(`[\W_]+`)

// normalizeName lowercases a table name and strips every non-word
// character, so "Department_Intake", "department intake" and
// "DEPARTMENT-INTAKE" all compare equal.
func normalizeName(name string) string {
	return nonWordPattern.ReplaceAllString(strings.ToLower(name), "")
}

// similarity returns a ratio in [0,1] between two strings, computed as
// 2*M/T where M is the total length of matching blocks found by
// recursively splitting around the longest common substring and T is
// the combined length. Equivalent strings score 1, disjoint strings 0.
func similarity(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	m := matchingChars(a, b)
	return 2 * float64(m) / float64(len(a)+len(b))
}

func matchingChars(a, b string) int {
	start1, start2, size := longestCommonBlock(a, b)
	if size == 0 {
		return 0
	}
	total := size
	total += matchingChars(a[:start1], b[:start2])
	total += matchingChars(a[start1+size:], b[start2+size:])
	return total
}

func longestCommonBlock(a, b string) (int, int, int) {
	bestI, bestJ, bestSize := 0, 0, 0
	// lengths[j] holds the common-suffix length ending at a[i-1], b[j-1]
	lengths := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		prev := 0
		for j := 1; j <= len(b); j++ {
			cur := lengths[j]
			if a[i-1] == b[j-1] {
				lengths[j] = prev + 1
				if lengths[j] > bestSize {
					bestSize = lengths[j]
					bestI = i - bestSize
					bestJ = j - bestSize
				}
			} else {
				lengths[j] = 0
			}
			prev = cur
		}
	}
	return bestI, bestJ, bestSize
}

// closestName finds the candidate most similar to name after
// normalization. Returns the original candidate spelling and its score.
func closestName(name string, candidates []string) (string, float64) {
	normalized := normalizeName(name)
	best, bestScore := "", 0.0
	for _, c := range candidates {
		score := similarity(normalized, normalizeName(c))
		if score > bestScore {
			best, bestScore = c, score
		}
	}
	return best, bestScore
}
