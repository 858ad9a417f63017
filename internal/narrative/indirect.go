package narrative

import (
	"fmt"
	"strings"

	"github.com/ppiankov/estudio/internal/model"
	"github.com/ppiankov/estudio/internal/odds"
)

// CoverStatus evaluates an indirect precedent against the current line.
// It returns model.Neutral when the precedent was not found, has no usable
// result or the current line is unreadable.
func CoverStatus(p model.Precedent, cur CurrentLine) model.CoverStatus {
	if !p.Found() || !cur.valid {
		return model.Neutral
	}
	result := strings.TrimSpace(p.Result)
	if _, ok := odds.ParseScore(result); !ok {
		return model.Neutral
	}
	outcome := odds.EvaluateHandicap(result, cur.value, cur.favorite, p.Home, p.Away, cur.home)
	return model.CoverStatus(outcome.Label)
}

// CompareRivals compares the goal differences of the last home and last
// away matches. RivalsUnknown is returned when either result is missing.
func CompareRivals(lastHome, lastAway model.Precedent) model.RivalsComparison {
	if !lastHome.Found() || !lastAway.Found() {
		return model.RivalsUnknown
	}
	home, ok := odds.ParseScore(lastHome.Result)
	if !ok {
		return model.RivalsUnknown
	}
	away, ok := odds.ParseScore(lastAway.Result)
	if !ok {
		return model.RivalsUnknown
	}

	switch {
	case home.Diff() > away.Diff():
		return model.RivalsHomeBetter
	case away.Diff() > home.Diff():
		return model.RivalsAwayBetter
	default:
		return model.RivalsSimilar
	}
}

// RivalsSentence describes a rivals comparison, empty when unknown
func RivalsSentence(c model.RivalsComparison) string {
	switch c {
	case model.RivalsHomeBetter:
		return "Against common rivals, the home side has obtained better results."
	case model.RivalsAwayBetter:
		return "Against common rivals, the away side has obtained better results."
	case model.RivalsSimilar:
		return "Both sides have had similar results against their rivals."
	default:
		return ""
	}
}

// DescribeIndirect states whether team would have covered the current
// line in the indirect precedent p.
func DescribeIndirect(p model.Precedent, team string, cur CurrentLine) string {
	switch CoverStatus(p, cur) {
	case odds.LabelCovered:
		return fmt.Sprintf("Against this rival, %s would have covered the handicap.", team)
	case odds.LabelNotCovered:
		return fmt.Sprintf("Against this rival, %s would not have covered the handicap.", team)
	default:
		return fmt.Sprintf("Against this rival, the outcome for %s would be indeterminate.", team)
	}
}

// BuildIndirect evaluates every indirect precedent of the dossier against
// its current handicap. Precedents that were not found are left nil.
func BuildIndirect(d model.Dossier) model.IndirectAnalysis {
	cur := NewCurrentLine(d.Odds.HandicapLine, d.Home, d.Away)

	ia := model.IndirectAnalysis{
		LastHome:   entryFor(d.LastHome, cur),
		LastAway:   entryFor(d.LastAway, cur),
		RivalsH2H:  entryFor(d.RivalsH2H, cur),
		GeneralH2H: entryFor(d.H2H.General, cur),
		Rivals:     CompareRivals(d.LastHome, d.LastAway),
	}
	ia.RivalsSummary = RivalsSentence(ia.Rivals)

	if e := entryFor(d.ComparativeHome, cur); e != nil {
		e.Description = DescribeIndirect(d.ComparativeHome, d.Home, cur)
		ia.ComparativeHome = e
	}
	if e := entryFor(d.ComparativeAway, cur); e != nil {
		e.Description = DescribeIndirect(d.ComparativeAway, d.Away, cur)
		ia.ComparativeAway = e
	}
	return ia
}

func entryFor(p model.Precedent, cur CurrentLine) *model.IndirectEntry {
	if !p.Found() {
		return nil
	}
	goalLine := strings.TrimSpace(p.GoalLine)
	if goalLine == "" {
		goalLine = odds.Placeholder
	}
	return &model.IndirectEntry{
		Home:     p.Home,
		Away:     p.Away,
		Date:     p.Date,
		Result:   strings.TrimSpace(p.Result),
		Line:     odds.Format(p.HandicapLine),
		GoalLine: goalLine,
		Venue:    p.Venue,
		Cover:    CoverStatus(p, cur),
	}
}
