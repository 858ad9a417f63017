package narrative

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/estudio/internal/model"
	"github.com/ppiankov/estudio/internal/odds"
)

func found(home, away, result, line string) model.Precedent {
	return model.Precedent{Status: model.PrecedentFound, Home: home, Away: away, Result: result, HandicapLine: line}
}

func TestBuild_MoreFavoredAwaySide(t *testing.T) {
	in := model.MarketInput{
		Home:        "Home FC",
		Away:        "Away FC",
		HandicapRaw: "-1.0",
		GoalLineRaw: "2.5",
		Stadium:     found("Home FC", "Away FC", "0-2", "-0.5"),
	}

	a := Build(in)
	require.Equal(t, model.StatusAnalyzed, a.Status)
	assert.Equal(t, "-1", a.HandicapDisplay)
	assert.Equal(t, "Away FC", a.Favorite)
	assert.Equal(t, "2.5", a.GoalLineDisplay)

	st := a.Stadium
	require.Equal(t, model.StatusAnalyzed, st.Handicap.Status)
	require.NotNil(t, st.Handicap.Shift)
	assert.Equal(t, model.ShiftMoreFavored, st.Handicap.Shift.Kind)
	assert.Equal(t, "0.5 → 1", st.Handicap.Shift.Movement)
	assert.Equal(t, odds.Covered, st.Handicap.Outcome.Verdict)
	assert.Contains(t, HandicapSentence(st), "more favored")
	assert.Contains(t, HandicapSentence(st), "0.5 → 1")
	assert.Contains(t, HandicapSentence(st), "COVERED ✅")

	assert.Equal(t, model.StatusAnalyzed, st.Goals.Status)
	assert.Equal(t, 2, st.Goals.TotalGoals)
	assert.Equal(t, odds.LabelUnder, st.Goals.Outcome.Label)
}

func TestBuild_ShiftKinds(t *testing.T) {
	tests := []struct {
		name       string
		current    string
		historical string
		want       model.ShiftKind
	}{
		{"less favored", "0.5", "1", model.ShiftLessFavored},
		{"more favored", "1", "0.5", model.ShiftMoreFavored},
		{"identical", "0.75", "0.75", model.ShiftIdenticalMagnitude},
		{"raw historical line is larger", "1", "1.1", model.ShiftLessFavored},
		{"raw historical line is smaller", "0.5", "0.3", model.ShiftMoreFavored},
		{"current line snapped before comparing", "0.6", "0.5", model.ShiftIdenticalMagnitude},
		{"both zero", "0", "0", model.ShiftIdenticalMagnitude},
		{"changed", "-0.5", "0.5", model.ShiftFavoriteChanged},
		{"established", "0.5", "0", model.ShiftFavoriteEstablished},
		{"removed", "0", "-0.25", model.ShiftFavoriteRemoved},
		{"not comparable", "0.5", "abc", model.ShiftNotComparable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Build(model.MarketInput{
				Home: "A", Away: "B",
				HandicapRaw: tt.current, GoalLineRaw: "2.5",
				Stadium: found("A", "B", "1-0", tt.historical),
			})
			require.NotNil(t, a.Stadium.Handicap.Shift)
			assert.Equal(t, tt.want, a.Stadium.Handicap.Shift.Kind)
		})
	}
}

func TestBuild_ChangedFavoriteNamesHistoricalFavorite(t *testing.T) {
	a := Build(model.MarketInput{
		Home: "A", Away: "B",
		HandicapRaw: "-0.5", GoalLineRaw: "2.5",
		Stadium: found("A", "B", "1-0", "0.5"),
	})
	shift := a.Stadium.Handicap.Shift
	require.NotNil(t, shift)
	assert.Equal(t, "A", shift.HistoricalFavorite)
	assert.Equal(t, "B", shift.CurrentFavorite)
	assert.Contains(t, ShiftSentence(*shift), "'A'")
}

func TestBuild_InsufficientCurrentLines(t *testing.T) {
	for _, in := range []model.MarketInput{
		{Home: "A", Away: "B", HandicapRaw: "-", GoalLineRaw: "2.5"},
		{Home: "A", Away: "B", HandicapRaw: "0.5", GoalLineRaw: ""},
		{Home: "A", Away: "B", HandicapRaw: "?", GoalLineRaw: "?"},
	} {
		a := Build(in)
		assert.Equal(t, model.StatusInsufficientData, a.Status)
		assert.Equal(t, model.StatusInsufficientData, a.Stadium.Status)
		assert.Equal(t, model.StatusInsufficientData, a.General.Status)
	}
}

func TestBuild_InsufficientPrecedent(t *testing.T) {
	tests := []struct {
		name      string
		precedent model.Precedent
		handicap  model.AnalysisStatus
		goals     model.AnalysisStatus
	}{
		{"not found", model.Precedent{Status: model.PrecedentNotFound}, model.StatusInsufficientData, model.StatusInsufficientData},
		{"unknown result", found("A", "B", "?-?", "0.5"), model.StatusInsufficientData, model.StatusInsufficientData},
		{"empty result", found("A", "B", "", "0.5"), model.StatusInsufficientData, model.StatusInsufficientData},
		{"placeholder line", found("A", "B", "2-1", "-"), model.StatusInsufficientData, model.StatusAnalyzed},
		{"missing line", found("A", "B", "2-1", ""), model.StatusInsufficientData, model.StatusAnalyzed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Build(model.MarketInput{
				Home: "A", Away: "B", HandicapRaw: "0.5", GoalLineRaw: "2.5",
				Stadium: tt.precedent,
			})
			assert.Equal(t, tt.handicap, a.Stadium.Handicap.Status)
			assert.Equal(t, tt.goals, a.Stadium.Goals.Status)
			if tt.handicap != model.StatusAnalyzed {
				assert.Nil(t, a.Stadium.Handicap.Shift)
				assert.Equal(t, odds.Indeterminate, a.Stadium.Handicap.Outcome.Verdict)
				assert.Equal(t, "Handicap: not enough data in this precedent.", HandicapSentence(a.Stadium))
			}
		})
	}
}

func TestBuild_DuplicateGeneralPrecedent(t *testing.T) {
	stadium := found("A", "B", "2-0", "1")
	stadium.MatchID = "123"
	general := found("A", "B", "2-0", "1")
	general.MatchID = "123"

	a := Build(model.MarketInput{
		Home: "A", Away: "B", HandicapRaw: "1", GoalLineRaw: "2.5",
		Stadium: stadium, General: general,
	})
	assert.Equal(t, model.StatusAnalyzed, a.Stadium.Status)
	assert.Equal(t, model.StatusDuplicate, a.General.Status)
	assert.Nil(t, a.General.Handicap.Shift)
}

func TestBuild_GeneralPrecedentReversedVenue(t *testing.T) {
	// The general meeting was played at B's ground: B is its home row.
	a := Build(model.MarketInput{
		Home: "A", Away: "B", HandicapRaw: "0.5", GoalLineRaw: "2.5",
		General: found("B", "A", "0-2", "-0.5"),
	})
	gen := a.General
	require.Equal(t, model.StatusAnalyzed, gen.Status)
	require.NotNil(t, gen.Handicap.Shift)
	assert.Equal(t, model.ShiftIdenticalMagnitude, gen.Handicap.Shift.Kind)
	assert.Equal(t, "A", gen.Handicap.Shift.HistoricalFavorite)
	assert.Equal(t, odds.Covered, gen.Handicap.Outcome.Verdict)
	assert.Equal(t, odds.NotCovered, gen.Goals.Outcome.Verdict)
}

func TestBuild_StadiumFallsBackToCurrentSides(t *testing.T) {
	a := Build(model.MarketInput{
		Home: "A", Away: "B", HandicapRaw: "0.5", GoalLineRaw: "2.5",
		Stadium: model.Precedent{Status: model.PrecedentFound, Result: "1-0", HandicapLine: "0.25"},
	})
	require.Equal(t, model.StatusAnalyzed, a.Stadium.Handicap.Status)
	assert.Equal(t, odds.Covered, a.Stadium.Handicap.Outcome.Verdict)
	assert.Equal(t, model.ShiftMoreFavored, a.Stadium.Handicap.Shift.Kind)
}

func TestBuild_ZeroLineEvaluatesFromReferenceHome(t *testing.T) {
	a := Build(model.MarketInput{
		Home: "A", Away: "B", HandicapRaw: "0", GoalLineRaw: "2",
		General: found("B", "A", "2-0", "0"),
	})
	assert.Equal(t, "", a.Favorite)
	assert.Equal(t, odds.NotCovered, a.General.Handicap.Outcome.Verdict)
	assert.Equal(t, odds.Push, a.General.Goals.Outcome.Verdict)
}

func TestFormatGoalLine(t *testing.T) {
	assert.Equal(t, "2.5", FormatGoalLine(2.5))
	assert.Equal(t, "3", FormatGoalLine(3))
	assert.Equal(t, "2.75", FormatGoalLine(2.75))
	assert.Equal(t, "0", FormatGoalLine(0))
}
