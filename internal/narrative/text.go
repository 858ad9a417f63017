package narrative

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ppiankov/estudio/internal/model"
	"github.com/ppiankov/estudio/internal/odds"
)

// Markers appended to handicap verdicts
const (
	markCovered    = "✅"
	markNotCovered = "❌"
	markUnknown    = "🤔"
)

// trimDecimal renders v with two decimals and drops trailing zeros
func trimDecimal(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	if s == "-0" {
		return "0"
	}
	return s
}

// ShiftSentence describes a favorite shift in plain English
func ShiftSentence(s model.FavoriteShift) string {
	switch s.Kind {
	case model.ShiftMoreFavored:
		return fmt.Sprintf("The market rates this side as more favored than in the precedent (movement: %s).", s.Movement)
	case model.ShiftLessFavored:
		return fmt.Sprintf("The market rates this side as less favored than in the precedent (movement: %s).", s.Movement)
	case model.ShiftIdenticalMagnitude:
		return fmt.Sprintf("The market keeps a line of identical magnitude to the precedent (%s).", s.HistoricalLine)
	case model.ShiftFavoriteChanged:
		return fmt.Sprintf("Favoritism changed completely. In the precedent the favorite was '%s' (movement: %s).", s.HistoricalFavorite, s.Movement)
	case model.ShiftFavoriteEstablished:
		return fmt.Sprintf("The market establishes a clear favorite where the precedent had none (movement: %s).", s.Movement)
	case model.ShiftFavoriteRemoved:
		return fmt.Sprintf("The market removed the favorite of the precedent ('%s') (movement: %s).", s.HistoricalFavorite, s.Movement)
	default:
		return fmt.Sprintf("No detailed comparison was possible (historical line: %s).", s.HistoricalLine)
	}
}

// VerdictText is the handicap label followed by its marker, e.g. "COVERED ✅"
func VerdictText(o odds.Outcome) string {
	switch o.Verdict {
	case odds.Covered:
		return o.Label + " " + markCovered
	case odds.NotCovered:
		return o.Label + " " + markNotCovered
	default:
		return o.Label + " " + markUnknown
	}
}

// HandicapSentence describes the handicap half of a precedent analysis
func HandicapSentence(pa model.PrecedentAnalysis) string {
	if pa.Handicap.Status != model.StatusAnalyzed {
		return "Handicap: not enough data in this precedent."
	}
	var b strings.Builder
	b.WriteString("Handicap: ")
	if pa.Handicap.Shift != nil {
		b.WriteString(ShiftSentence(*pa.Handicap.Shift))
		b.WriteString(" ")
	}
	fmt.Fprintf(&b, "With the result (%s), the current line would have been %s.", displayResult(pa.Result), VerdictText(pa.Handicap.Outcome))
	return b.String()
}

// GoalsSentence describes the goal-line half of a precedent analysis
func GoalsSentence(pa model.PrecedentAnalysis) string {
	if pa.Goals.Status != model.StatusAnalyzed {
		return "Goals: not enough data in this precedent."
	}
	return fmt.Sprintf("Goals: the match had %d goals, so the current line would have been %s.", pa.Goals.TotalGoals, pa.Goals.Outcome.Label)
}

// HeadlineSentence summarizes the current lines and favorite
func HeadlineSentence(a model.MarketAnalysis) string {
	favorite := a.Favorite
	if favorite == "" {
		favorite = "none (line at 0)"
	}
	return fmt.Sprintf("Current lines: AH %s / Goals %s | Favorite: %s", a.HandicapDisplay, a.GoalLineDisplay, favorite)
}

// displayResult renders "2-1" as "2:1"
func displayResult(result string) string {
	return strings.ReplaceAll(strings.TrimSpace(result), "-", ":")
}
