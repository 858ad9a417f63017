package odds

import (
	"math"
	"strconv"
	"strings"
)

// Placeholder is the display value for a missing or unreadable line
const Placeholder = "-"

const formatEpsilon = 1e-9

// FormatOption customizes Format output
type FormatOption func(*formatOptions)

type formatOptions struct {
	spreadsheet bool
}

// WithSpreadsheet prefixes the result with an apostrophe and uses a comma
// decimal separator so spreadsheets keep the value as text.
func WithSpreadsheet() FormatOption {
	return func(o *formatOptions) {
		o.spreadsheet = true
	}
}

// Format renders a raw handicap line in its canonical display form:
// whole lines as integers, half lines with one decimal and quarter lines
// with two. Missing or unreadable input renders as Placeholder.
func Format(raw string, opts ...FormatOption) string {
	var o formatOptions
	for _, opt := range opts {
		opt(&o)
	}

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "-" || trimmed == "?" {
		return Placeholder
	}

	value, ok := Parse(trimmed)
	if !ok {
		return Placeholder
	}

	out := FormatValue(value)
	if o.spreadsheet {
		return "'" + strings.ReplaceAll(out, ".", ",")
	}
	return out
}

// FormatValue renders an already parsed line. It applies the same
// snapping as Format.
func FormatValue(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Placeholder
	}
	if value == 0 {
		return "0"
	}

	snapped := Snap(math.Abs(value))
	if snapped < formatEpsilon {
		return "0"
	}

	sign := ""
	if value < 0 {
		sign = "-"
	}

	whole := math.Floor(snapped)
	frac := snapped - whole
	switch {
	case near(frac, 0, formatEpsilon):
		return sign + strconv.FormatFloat(whole, 'f', 0, 64)
	case near(frac, 1, formatEpsilon):
		return sign + strconv.FormatFloat(whole+1, 'f', 0, 64)
	case near(frac, 0.5, formatEpsilon):
		return sign + strconv.FormatFloat(snapped, 'f', 1, 64)
	default:
		return sign + strconv.FormatFloat(snapped, 'f', 2, 64)
	}
}

// Snap moves an absolute line onto the nearest quarter granularity.
// Standard fractions (.0, .25, .5, .75) are kept; any other fraction is
// floored below .25, moved to .5 below .75 and ceiled otherwise.
func Snap(abs float64) float64 {
	whole := math.Floor(abs)
	frac := abs - whole

	switch {
	case near(frac, 0, formatEpsilon):
		return whole
	case near(frac, 0.25, formatEpsilon):
		return whole + 0.25
	case near(frac, 0.5, formatEpsilon):
		return whole + 0.5
	case near(frac, 0.75, formatEpsilon):
		return whole + 0.75
	case near(frac, 1, formatEpsilon):
		return whole + 1
	case frac < 0.25:
		return whole
	case frac < 0.75:
		return whole + 0.5
	default:
		return math.Ceil(abs)
	}
}

func near(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}
