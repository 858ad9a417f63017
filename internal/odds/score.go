package odds

import (
	"strconv"
	"strings"
)

// UnknownScore is the sentinel the scraping layer emits for missing results
const UnknownScore = "?-?"

// Score is a final result as goals for the home and away rows
type Score struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// Total returns the combined goals of both sides
func (s Score) Total() int {
	return s.Home + s.Away
}

// Diff returns home goals minus away goals
func (s Score) Diff() int {
	return s.Home - s.Away
}

// String renders the score in the "H-A" form
func (s Score) String() string {
	return strconv.Itoa(s.Home) + "-" + strconv.Itoa(s.Away)
}

// ParseScore reads "H-A" or "H:A" results. The "?-?" sentinel and any
// non-numeric goal count report false.
func ParseScore(text string) (Score, bool) {
	s := strings.ReplaceAll(strings.TrimSpace(text), " ", "")
	if s == "" || strings.Contains(s, "?") {
		return Score{}, false
	}

	sep := strings.IndexAny(s, "-:")
	if sep <= 0 || sep == len(s)-1 {
		return Score{}, false
	}

	home, ok := parseGoals(s[:sep])
	if !ok {
		return Score{}, false
	}
	away, ok := parseGoals(s[sep+1:])
	if !ok {
		return Score{}, false
	}
	return Score{Home: home, Away: away}, true
}

func parseGoals(s string) (int, bool) {
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
