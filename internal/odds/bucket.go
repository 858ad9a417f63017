package odds

import (
	"math"
	"strconv"
)

const bucketEpsilon = 1e-6

// quarterNudge is the historical distance under which a fallback bucket
// that rounded to a whole number is moved to the half line instead. Kept
// as-is for compatibility with previously stored buckets.
const quarterNudge = 0.26

// Bucket maps a raw handicap onto the coarse half-line grid used for
// grouping and filtering ("-1.5", "0.0", "2.5"). Quarter and half lines
// both collapse to the .5 bucket above their whole part.
func Bucket(raw string) (string, bool) {
	value, ok := Parse(raw)
	if !ok {
		return "", false
	}
	return FormatBucket(BucketValue(value)), true
}

// BucketValue returns the half-line bucket for an already parsed line
func BucketValue(value float64) float64 {
	if value == 0 {
		return 0
	}

	sign := 1.0
	if value < 0 {
		sign = -1.0
	}
	av := math.Abs(value)
	base := math.Floor(av + 1e-9)
	frac := av - base

	var bucket float64
	switch {
	case near(frac, 0, bucketEpsilon):
		bucket = base
	case near(frac, 0.25, bucketEpsilon), near(frac, 0.5, bucketEpsilon), near(frac, 0.75, bucketEpsilon):
		bucket = base + 0.5
	default:
		bucket = math.RoundToEven(av*2) / 2
		whole := math.Floor(bucket)
		if near(bucket-whole, 0, bucketEpsilon) &&
			(math.Abs(av-(whole+0.25)) < quarterNudge || math.Abs(av-(whole+0.75)) < quarterNudge) {
			bucket = whole + 0.5
		}
	}

	if bucket == 0 {
		return 0
	}
	return sign * bucket
}

// FormatBucket renders a bucket with exactly one decimal digit
func FormatBucket(bucket float64) string {
	if bucket == 0 {
		return "0.0"
	}
	return strconv.FormatFloat(bucket, 'f', 1, 64)
}
