package odds

import (
	"regexp"
	"strconv"
	"strings"
)

// plainNumber matches a signed decimal with an optional fractional part
var plainNumber = regexp.MustCompile(`^[+-]?\d+(?:\.\d+)?$`)

// numberCleaner normalizes the separators and signs found in scraped odds
var numberCleaner = strings.NewReplacer(
	"\u2212", "-", // unicode minus
	",", ".",
	" ", "",
	"\t", "",
	"\u00a0", "",
)

// Parse converts a loosely formatted handicap or goal line into a number.
// Split lines such as "0/0.5" are averaged. The second return value is
// false when the text cannot be interpreted; Parse never panics.
func Parse(text string) (float64, bool) {
	s := numberCleaner.Replace(strings.TrimSpace(text))
	if s == "" {
		return 0, false
	}

	if strings.Contains(s, "/") {
		return parseSplit(s)
	}

	return parsePlain(strings.TrimPrefix(s, "+"))
}

// parseSplit averages the segments of a split handicap
func parseSplit(s string) (float64, bool) {
	var segments []string
	for _, part := range strings.Split(s, "/") {
		if part != "" {
			segments = append(segments, part)
		}
	}
	if len(segments) == 0 {
		return 0, false
	}

	values := make([]float64, 0, len(segments))
	for _, seg := range segments {
		v, ok := parsePlain(strings.TrimPrefix(seg, "+"))
		if !ok {
			return 0, false
		}
		values = append(values, v)
	}

	// A negative line writes its sign once: "-0/0.5" and "-0.5/1" are away lines.
	leadsNegative := values[0] < 0 || (values[0] == 0 && strings.HasPrefix(s, "-"))
	if leadsNegative {
		for i := 1; i < len(values); i++ {
			if values[i] > 0 && !strings.HasPrefix(segments[i], "-") && !strings.HasPrefix(segments[i], "+") {
				values[i] = -values[i]
			}
		}
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), true
}

// parsePlain parses a single signed decimal without any split notation
func parsePlain(s string) (float64, bool) {
	if !plainNumber.MatchString(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
