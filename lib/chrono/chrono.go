package chrono

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// scrape timestamps are pinned to UTC, the upstream sites serve
// relative dates computed against their own server clocks and mixing
// in a local zone skews day boundaries
var Location = time.UTC

// Now is swappable so date arithmetic in tests is deterministic.
var Now = func() time.Time {
	return time.Now().In(Location)
}

var relativeRegex = regexp.MustCompile(`(?i)^(an?|\d+)\s+(second|minute|hour|day|week|month|year)s?\s+ago$`)

// ParseUploadDate understands both the relative forms sites render in
// listing cards ("3 days ago", "a month ago", "yesterday") and plain
// absolute dates. Returns false when the text is not a date at all.
func ParseUploadDate(text string) (time.Time, bool) {
	text = strings.Trim(text, " \t\n")
	if text == "" {
		return time.Time{}, false
	}

	now := Now()
	switch strings.ToLower(text) {
	case "just now", "now", "today":
		return now, true
	case "yesterday":
		return now.AddDate(0, 0, -1), true
	}

	groups := relativeRegex.FindStringSubmatch(text)
	if groups != nil {
		n := 1
		if groups[1] != "a" && groups[1] != "an" && groups[1] != "A" && groups[1] != "An" {
			parsed, err := strconv.Atoi(groups[1])
			if err != nil {
				return time.Time{}, false
			}
			n = parsed
		}
		switch strings.ToLower(groups[2]) {
		case "second":
			return now.Add(-time.Duration(n) * time.Second), true
		case "minute":
			return now.Add(-time.Duration(n) * time.Minute), true
		case "hour":
			return now.Add(-time.Duration(n) * time.Hour), true
		case "day":
			return now.AddDate(0, 0, -n), true
		case "week":
			return now.AddDate(0, 0, -7*n), true
		case "month":
			return now.AddDate(0, -n, 0), true
		case "year":
			return now.AddDate(-n, 0, 0), true
		}
	}

	parsed, err := dateparse.ParseIn(text, Location)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}
