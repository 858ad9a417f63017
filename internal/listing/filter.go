package listing

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/estudio/internal/model"
	"github.com/ppiankov/estudio/internal/odds"
)

const (
	// handicapRangeFrom switches the handicap filter to "this bucket or larger"
	handicapRangeFrom = 2.0
	// goalRangeFrom switches the goal-line filter to "this line or higher"
	goalRangeFrom = 4.0
	goalEpsilon   = 1e-6
	displayLayout = "02/01 15:04"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Predicate reports whether a raw line passes a filter
type Predicate func(raw string) bool

// HandicapFilter builds a predicate over raw handicap lines. A target of
// magnitude 2 or more matches every bucket on the same side that is at
// least as large; smaller targets match their bucket exactly. It returns
// nil when filter is empty or unreadable.
func HandicapFilter(filter string) Predicate {
	if strings.TrimSpace(filter) == "" {
		return nil
	}
	target, ok := odds.Bucket(filter)
	if !ok {
		return nil
	}
	targetValue, _ := strconv.ParseFloat(target, 64)
	useRange := math.Abs(targetValue) >= handicapRangeFrom

	return func(raw string) bool {
		bucket, ok := odds.Bucket(raw)
		if !ok {
			return false
		}
		if !useRange {
			return bucket == target
		}
		v, _ := strconv.ParseFloat(bucket, 64)
		if targetValue > 0 {
			return v > 0 && v >= targetValue
		}
		return v < 0 && v <= targetValue
	}
}

// GoalLineFilter builds a predicate over raw goal lines. Targets of 4 or
// more match any line at least as high; lower targets match exactly.
func GoalLineFilter(filter string) Predicate {
	if strings.TrimSpace(filter) == "" {
		return nil
	}
	target, ok := odds.Parse(filter)
	if !ok {
		return nil
	}
	useRange := target >= goalRangeFrom

	return func(raw string) bool {
		v, ok := odds.Parse(raw)
		if !ok {
			return false
		}
		if useRange {
			return v >= target
		}
		return math.Abs(v-target) < goalEpsilon
	}
}

// GoalLineOf returns the first populated goal-line field of an entry
func GoalLineOf(e model.ListingEntry) string {
	for _, v := range []string{e.GoalLine, e.GoalLineAlt, e.GoalLineDecimal} {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// NormalizeGoalLine renders a raw goal line with at most two decimals.
// The second value is false when raw cannot be read.
func NormalizeGoalLine(raw string) (string, bool) {
	v, ok := odds.Parse(raw)
	if !ok {
		return "", false
	}
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	if s == "-0" {
		s = "0"
	}
	return s, true
}

// ParseTime reads the time_obj field of a listing entry
func ParseTime(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Query selects a page of a listing section
type Query struct {
	Handicap string
	GoalLine string
	Offset   int
	Limit    int
}

// Select filters, sorts and pages entries. Entries are sorted by kickoff
// then id, ascending unless desc. Entries without a display time get one
// derived from time_obj. The input slice is not modified.
func Select(entries []model.ListingEntry, q Query, desc bool) []model.ListingEntry {
	type prepared struct {
		entry model.ListingEntry
		at    time.Time
	}

	handicap := HandicapFilter(q.Handicap)
	goals := GoalLineFilter(q.GoalLine)

	items := make([]prepared, 0, len(entries))
	for _, e := range entries {
		if handicap != nil && !handicap(e.Handicap) {
			continue
		}
		if goals != nil && !goals(GoalLineOf(e)) {
			continue
		}
		at, ok := ParseTime(e.TimeObj)
		if ok && strings.TrimSpace(e.Time) == "" {
			e.Time = at.Format(displayLayout)
		}
		items = append(items, prepared{entry: e, at: at})
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if !a.at.Equal(b.at) {
			if desc {
				return a.at.After(b.at)
			}
			return a.at.Before(b.at)
		}
		if desc {
			return a.entry.ID > b.entry.ID
		}
		return a.entry.ID < b.entry.ID
	})

	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []model.ListingEntry{}
	}
	items = items[offset:]
	if q.Limit >= 0 && q.Limit < len(items) {
		items = items[:q.Limit]
	}

	out := make([]model.ListingEntry, len(items))
	for i, it := range items {
		out[i] = it.entry
	}
	return out
}

// Options lists the distinct handicap buckets and goal lines present in
// the given sections, both sorted numerically.
type Options struct {
	Handicaps []string `json:"handicaps"`
	GoalLines []string `json:"goal_lines"`
}

// BuildOptions collects filter options from every section
func BuildOptions(sections ...[]model.ListingEntry) Options {
	handicaps := map[string]struct{}{}
	goals := map[string]struct{}{}
	for _, section := range sections {
		for _, e := range section {
			if b, ok := odds.Bucket(e.Handicap); ok {
				handicaps[b] = struct{}{}
			}
			if g, ok := NormalizeGoalLine(GoalLineOf(e)); ok {
				goals[g] = struct{}{}
			}
		}
	}
	return Options{Handicaps: sortedNumeric(handicaps), GoalLines: sortedNumeric(goals)}
}

func sortedNumeric(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		a, _ := strconv.ParseFloat(out[i], 64)
		b, _ := strconv.ParseFloat(out[j], 64)
		return a < b
	})
	return out
}
