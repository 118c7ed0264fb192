package textutil

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/antzucaro/matchr"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)
var punctuationRegex = regexp.MustCompile(`[^a-z0-9\s]`)

func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = punctuationRegex.ReplaceAllString(name, "")
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, " ")
	return name
}

func MatchName(name string, matchers []string) bool {
	name = NormalizeName(name)
	for _, m := range matchers {
		if strings.Contains(name, m) {
			return true
		}
	}
	return false
}

// Rot13 shifts every ascii letter 13 places forward within its case
// alphabet, everything else passes through untouched. Applying it twice
// returns the original string.
func Rot13(s string) string {
	if s == "" {
		return ""
	}
	out := strings.Builder{}
	out.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
			out.WriteByte('a' + (c-'a'+13)%26)
		case c >= 'A' && c <= 'Z':
			out.WriteByte('A' + (c-'A'+13)%26)
		default:
			out.WriteByte(c)
		}
	}
	return out.String()
}

var numberRegex = regexp.MustCompile(`\d+(\.\d+)?`)

// ExtractNumber returns the first numeric substring in s, sites bury
// episode numbers inside titles like "Episode 12.5 (uncensored)" and
// view counters render with thousands separators.
func ExtractNumber(s string) (float64, bool) {
	match := numberRegex.FindString(strings.ReplaceAll(s, ",", ""))
	if match == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// RankBySimilarity returns an index permutation of names ordered by
// descending JaroWinkler similarity against query. Equal scores keep
// their original relative order.
func RankBySimilarity(query string, names []string) []int {
	query = NormalizeName(query)

	scores := make([]float64, len(names))
	for i, name := range names {
		scores[i] = matchr.JaroWinkler(query, NormalizeName(name), false)
	}

	order := make([]int, len(names))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	return order
}
