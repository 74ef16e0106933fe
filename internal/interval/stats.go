package interval

import (
	"regexp"
	"strings"
)

// Stats summarizes an interval list.
type Stats struct {
	Count       int   `json:"count"`
	MinStart    int64 `json:"min_start"`
	MaxEnd      int64 `json:"max_end"`
	TotalWeight int64 `json:"total_weight"`
}

// Summarize computes Stats over intervals. TotalWeight stays 0 for unweighted input.
func Summarize(intervals []Interval) Stats {
	if len(intervals) == 0 {
		return Stats{}
	}

	s := Stats{
		Count:    len(intervals),
		MinStart: intervals[0].start,
		MaxEnd:   intervals[0].end,
	}
	for _, iv := range intervals {
		s.MinStart = min(s.MinStart, iv.start)
		s.MaxEnd = max(s.MaxEnd, iv.end)
		if iv.weighted {
			s.TotalWeight += iv.weight
		}
	}
	return s
}

// whitespaceRegex matches one or more whitespace characters
var whitespaceRegex = regexp.MustCompile(`\s+`)

// Normalize canonicalizes a set name:
// 1. Trim leading/trailing whitespace
// 2. Lowercase
// 3. Collapse internal whitespace to single spaces
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return whitespaceRegex.ReplaceAllString(s, " ")
}
