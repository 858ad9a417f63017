package narrative

import (
	"math"
	"strings"

	"github.com/ppiankov/estudio/internal/model"
	"github.com/ppiankov/estudio/internal/odds"
)

const magnitudeEpsilon = 1e-9

var indeterminate = odds.Outcome{Verdict: odds.Indeterminate, Label: odds.LabelIndeterminate}

// CurrentLine is the parsed handicap of the match being analyzed
type CurrentLine struct {
	value    float64
	display  string
	favorite string // empty on a zero line
	home     string
	away     string
	valid    bool
}

// NewCurrentLine parses the current handicap the way Build does. The
// returned line is invalid when raw cannot be read.
func NewCurrentLine(raw, home, away string) CurrentLine {
	display := odds.Format(raw)
	value, ok := odds.Parse(display)
	if !ok {
		return CurrentLine{display: display, home: home, away: away}
	}
	return CurrentLine{
		value:    value,
		display:  display,
		favorite: FavoriteOf(value, home, away),
		home:     home,
		away:     away,
		valid:    true,
	}
}

// Valid reports whether the current handicap could be read
func (c CurrentLine) Valid() bool { return c.valid }

// Display returns the canonical display form of the line
func (c CurrentLine) Display() string { return c.display }

// Favorite returns the favored side, empty on a zero line
func (c CurrentLine) Favorite() string { return c.favorite }

// Build composes the market narrative of a match against its stadium and
// general precedents. It never fails: missing data is reported through
// StatusInsufficientData on the analysis or on each precedent.
func Build(in model.MarketInput) model.MarketAnalysis {
	cur := NewCurrentLine(in.HandicapRaw, in.Home, in.Away)
	analysis := model.MarketAnalysis{
		Home:            in.Home,
		Away:            in.Away,
		HandicapDisplay: cur.display,
		GoalLineDisplay: odds.Placeholder,
	}

	goalLine, okGoal := odds.Parse(in.GoalLineRaw)
	if !cur.valid || !okGoal {
		analysis.Status = model.StatusInsufficientData
		analysis.Stadium = skipped(model.RoleStadium, in.Stadium, model.StatusInsufficientData)
		analysis.General = skipped(model.RoleGeneral, in.General, model.StatusInsufficientData)
		return analysis
	}

	analysis.Status = model.StatusAnalyzed
	analysis.Handicap = cur.value
	analysis.GoalLine = goalLine
	analysis.GoalLineDisplay = FormatGoalLine(goalLine)
	analysis.Favorite = cur.favorite

	stadium := in.Stadium
	if stadium.Home == "" && stadium.Away == "" {
		stadium.Home, stadium.Away = in.Home, in.Away
	}
	analysis.Stadium = analyzePrecedent(model.RoleStadium, stadium, cur, goalLine)

	if sameMatch(in.Stadium, in.General) {
		analysis.General = skipped(model.RoleGeneral, in.General, model.StatusDuplicate)
	} else {
		analysis.General = analyzePrecedent(model.RoleGeneral, in.General, cur, goalLine)
	}

	return analysis
}

// FavoriteOf returns the side favored by line: home when positive, away
// when negative and nobody on a zero line.
func FavoriteOf(line float64, home, away string) string {
	switch {
	case line > 0:
		return home
	case line < 0:
		return away
	default:
		return ""
	}
}

// FormatGoalLine renders an over/under line with at most two decimals
func FormatGoalLine(v float64) string {
	return trimDecimal(v)
}

func sameMatch(a, b model.Precedent) bool {
	return a.MatchID != "" && b.MatchID != "" && a.MatchID == b.MatchID
}

func skipped(role model.PrecedentRole, p model.Precedent, status model.AnalysisStatus) model.PrecedentAnalysis {
	return model.PrecedentAnalysis{
		Role:     role,
		Status:   status,
		MatchID:  p.MatchID,
		Home:     p.Home,
		Away:     p.Away,
		Result:   p.Result,
		Handicap: model.HandicapAssessment{Status: status, Outcome: indeterminate},
		Goals:    model.GoalAssessment{Status: status, Outcome: indeterminate},
	}
}

func analyzePrecedent(role model.PrecedentRole, p model.Precedent, cur CurrentLine, goalLine float64) model.PrecedentAnalysis {
	if !p.Found() {
		return skipped(role, p, model.StatusInsufficientData)
	}

	result := strings.TrimSpace(p.Result)
	score, scoreOK := odds.ParseScore(result)
	rawLine := strings.TrimSpace(p.HandicapLine)
	lineOK := rawLine != "" && rawLine != odds.Placeholder

	pa := skipped(role, p, model.StatusInsufficientData)

	if scoreOK && lineOK {
		shift := compareFavorites(p, cur)
		pa.Handicap = model.HandicapAssessment{
			Status:  model.StatusAnalyzed,
			Shift:   &shift,
			Outcome: odds.EvaluateHandicap(result, cur.value, cur.favorite, p.Home, p.Away, cur.home),
		}
	}

	if scoreOK {
		pa.Goals = model.GoalAssessment{
			Status:     model.StatusAnalyzed,
			TotalGoals: score.Total(),
			Outcome:    odds.EvaluateGoalLine(result, goalLine),
		}
	}

	if pa.Handicap.Status == model.StatusAnalyzed || pa.Goals.Status == model.StatusAnalyzed {
		pa.Status = model.StatusAnalyzed
	}
	return pa
}

// compareFavorites classifies the move from the precedent's line to the
// current one. The historical line is compared as written against the
// snapped current line; Movement shows both display forms.
func compareFavorites(p model.Precedent, cur CurrentLine) model.FavoriteShift {
	histDisplay := odds.Format(p.HandicapLine)
	shift := model.FavoriteShift{
		HistoricalLine:  histDisplay,
		CurrentLine:     cur.display,
		CurrentFavorite: cur.favorite,
	}

	hist, ok := odds.Parse(p.HandicapLine)
	if !ok {
		shift.Kind = model.ShiftNotComparable
		return shift
	}

	histFavorite := FavoriteOf(hist, p.Home, p.Away)
	shift.HistoricalFavorite = histFavorite
	shift.Movement = odds.FormatValue(math.Abs(hist)) + " → " + odds.FormatValue(math.Abs(cur.value))

	switch {
	case histFavorite == "" && cur.favorite == "":
		shift.Kind = model.ShiftIdenticalMagnitude
	case histFavorite != "" && cur.favorite != "" && strings.EqualFold(histFavorite, cur.favorite):
		delta := math.Abs(cur.value) - math.Abs(hist)
		switch {
		case delta > magnitudeEpsilon:
			shift.Kind = model.ShiftMoreFavored
		case delta < -magnitudeEpsilon:
			shift.Kind = model.ShiftLessFavored
		default:
			shift.Kind = model.ShiftIdenticalMagnitude
		}
	case histFavorite == "":
		shift.Kind = model.ShiftFavoriteEstablished
	case cur.favorite == "":
		shift.Kind = model.ShiftFavoriteRemoved
	default:
		shift.Kind = model.ShiftFavoriteChanged
	}
	return shift
}
