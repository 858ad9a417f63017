package odds

import (
	"math"
	"strings"
)

// pushTolerance absorbs the float noise of averaged split lines. It is
// not a rounding of the line itself.
const pushTolerance = 0.05

// Verdict is the four-way outcome of evaluating a result against a line
type Verdict int

const (
	Indeterminate Verdict = iota // inputs missing or inconsistent
	Covered
	NotCovered
	Push // exact tie against the line
)

func (v Verdict) String() string {
	switch v {
	case Covered:
		return "covered"
	case NotCovered:
		return "not_covered"
	case Push:
		return "push"
	default:
		return "indeterminate"
	}
}

// MarshalText encodes the verdict by name
func (v Verdict) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText decodes a verdict name; unknown names decode as Indeterminate
func (v *Verdict) UnmarshalText(text []byte) error {
	switch string(text) {
	case "covered":
		*v = Covered
	case "not_covered":
		*v = NotCovered
	case "push":
		*v = Push
	default:
		*v = Indeterminate
	}
	return nil
}

// Handicap and goal line display labels
const (
	LabelCovered       = "COVERED"
	LabelNotCovered    = "NOT COVERED"
	LabelPush          = "PUSH"
	LabelIndeterminate = "INDETERMINATE"
	LabelOver          = "SUPERADA"
	LabelUnder         = "NOT SUPERADA"
)

// Outcome pairs a verdict with the label shown to users
type Outcome struct {
	Verdict Verdict `json:"verdict"`
	Label   string  `json:"label"`
}

// Covered projects the verdict onto a nullable boolean: true when covered,
// false when not, nil for a push or an indeterminate evaluation.
func (o Outcome) Covered() *bool {
	var b bool
	switch o.Verdict {
	case Covered:
		b = true
	case NotCovered:
		b = false
	default:
		return nil
	}
	return &b
}

func handicapOutcome(v Verdict) Outcome {
	switch v {
	case Covered:
		return Outcome{Verdict: v, Label: LabelCovered}
	case NotCovered:
		return Outcome{Verdict: v, Label: LabelNotCovered}
	case Push:
		return Outcome{Verdict: v, Label: LabelPush}
	default:
		return Outcome{Verdict: Indeterminate, Label: LabelIndeterminate}
	}
}

func goalOutcome(v Verdict) Outcome {
	switch v {
	case Covered:
		return Outcome{Verdict: v, Label: LabelOver}
	case NotCovered:
		return Outcome{Verdict: v, Label: LabelUnder}
	case Push:
		return Outcome{Verdict: v, Label: LabelPush}
	default:
		return Outcome{Verdict: Indeterminate, Label: LabelIndeterminate}
	}
}

// EvaluateHandicap decides whether the result of a precedent played by
// sideA (home row) and sideB (away row) would have covered line for
// favorite. referenceHome is the home side of the match the line belongs
// to; it orients the zero line, which has no favorite.
func EvaluateHandicap(result string, line float64, favorite, sideA, sideB, referenceHome string) Outcome {
	score, ok := ParseScore(result)
	if !ok || math.IsNaN(line) || math.IsInf(line, 0) {
		return handicapOutcome(Indeterminate)
	}

	if math.Abs(line) < formatEpsilon {
		diff := score.Diff()
		if !strings.EqualFold(strings.TrimSpace(referenceHome), strings.TrimSpace(sideA)) {
			diff = -diff
		}
		switch {
		case diff > 0:
			return handicapOutcome(Covered)
		case diff < 0:
			return handicapOutcome(NotCovered)
		default:
			return handicapOutcome(Push)
		}
	}

	fav := strings.TrimSpace(favorite)
	var margin int
	switch {
	case fav != "" && strings.EqualFold(fav, strings.TrimSpace(sideA)):
		margin = score.Home - score.Away
	case fav != "" && strings.EqualFold(fav, strings.TrimSpace(sideB)):
		margin = score.Away - score.Home
	default:
		return handicapOutcome(Indeterminate)
	}

	delta := float64(margin) - math.Abs(line)
	switch {
	case delta > pushTolerance:
		return handicapOutcome(Covered)
	case delta < -pushTolerance:
		return handicapOutcome(NotCovered)
	default:
		return handicapOutcome(Push)
	}
}

// EvaluateGoalLine compares the combined goals of result with an
// over/under line: over is Covered, under is NotCovered, equal is Push.
func EvaluateGoalLine(result string, goalLine float64) Outcome {
	score, ok := ParseScore(result)
	if !ok || math.IsNaN(goalLine) || math.IsInf(goalLine, 0) {
		return goalOutcome(Indeterminate)
	}

	total := float64(score.Total())
	switch {
	case total > goalLine+formatEpsilon:
		return goalOutcome(Covered)
	case total < goalLine-formatEpsilon:
		return goalOutcome(NotCovered)
	default:
		return goalOutcome(Push)
	}
}
