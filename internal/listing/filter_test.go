package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/estudio/internal/model"
)

func TestHandicapFilter_Exact(t *testing.T) {
	pred := HandicapFilter("0.25")
	require.NotNil(t, pred)

	assert.True(t, pred("0.5"))
	assert.True(t, pred("0.75"))
	assert.True(t, pred("0/0.5"))
	assert.False(t, pred("1"))
	assert.False(t, pred("-0.5"))
	assert.False(t, pred("-"))
}

func TestHandicapFilter_Range(t *testing.T) {
	pos := HandicapFilter("2")
	require.NotNil(t, pos)
	assert.True(t, pos("2"))
	assert.True(t, pos("2.75"))
	assert.True(t, pos("3"))
	assert.False(t, pos("1.5"))
	assert.False(t, pos("-3"))

	neg := HandicapFilter("-2.5")
	require.NotNil(t, neg)
	assert.True(t, neg("-2.5"))
	assert.True(t, neg("-3.25"))
	assert.False(t, neg("-2"))
	assert.False(t, neg("3"))
}

func TestHandicapFilter_Disabled(t *testing.T) {
	assert.Nil(t, HandicapFilter(""))
	assert.Nil(t, HandicapFilter("abc"))
}

func TestGoalLineFilter(t *testing.T) {
	exact := GoalLineFilter("2.5")
	require.NotNil(t, exact)
	assert.True(t, exact("2.5"))
	assert.True(t, exact("2/3"))
	assert.False(t, exact("2.75"))
	assert.False(t, exact(""))

	rng := GoalLineFilter("4")
	require.NotNil(t, rng)
	assert.True(t, rng("4"))
	assert.True(t, rng("4.5"))
	assert.False(t, rng("3.75"))

	assert.Nil(t, GoalLineFilter(" "))
	assert.Nil(t, GoalLineFilter("x"))
}

func TestNormalizeGoalLine(t *testing.T) {
	for in, want := range map[string]string{"2.5": "2.5", "3": "3", "2.50": "2.5", "2.75": "2.75", "2/2.5": "2.25"} {
		got, ok := NormalizeGoalLine(in)
		require.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := NormalizeGoalLine("-")
	assert.False(t, ok)
}

func TestParseTime(t *testing.T) {
	for _, in := range []string{"2024-05-01T18:30:00", "2024-05-01 18:30:00", "2024-05-01T18:30:00Z", "2024-05-01T18:30:00+02:00"} {
		_, ok := ParseTime(in)
		assert.True(t, ok, in)
	}
	_, ok := ParseTime("yesterday")
	assert.False(t, ok)
}

func entries() []model.ListingEntry {
	return []model.ListingEntry{
		{ID: "3", HomeTeam: "C", TimeObj: "2024-05-02T12:00:00", Handicap: "0.5", GoalLine: "2.5"},
		{ID: "1", HomeTeam: "A", TimeObj: "2024-05-01T18:30:00", Handicap: "-1", GoalLine: "3"},
		{ID: "2", HomeTeam: "B", TimeObj: "2024-05-01T18:30:00", Handicap: "0.25", GoalLineAlt: "2.5", Time: "custom"},
		{ID: "4", HomeTeam: "D", Handicap: "2.5", GoalLine: "4.5"},
	}
}

func ids(es []model.ListingEntry) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = string(e.ID)
	}
	return out
}

func TestSelect_SortAndTimeFill(t *testing.T) {
	got := Select(entries(), Query{Limit: -1}, false)
	assert.Equal(t, []string{"4", "1", "2", "3"}, ids(got))
	assert.Equal(t, "01/05 18:30", got[1].Time)
	assert.Equal(t, "custom", got[2].Time)
	assert.Empty(t, got[0].Time)

	desc := Select(entries(), Query{Limit: -1}, true)
	assert.Equal(t, []string{"3", "2", "1", "4"}, ids(desc))
}

func TestSelect_FiltersAndPaging(t *testing.T) {
	assert.Equal(t, []string{"2", "3"}, ids(Select(entries(), Query{Handicap: "0.5", Limit: -1}, false)))
	assert.Equal(t, []string{"2", "3"}, ids(Select(entries(), Query{GoalLine: "2.5", Limit: -1}, false)))
	assert.Equal(t, []string{"4"}, ids(Select(entries(), Query{GoalLine: "4", Limit: -1}, false)))
	assert.Equal(t, []string{"1", "2"}, ids(Select(entries(), Query{Offset: 1, Limit: 2}, false)))
	assert.Empty(t, Select(entries(), Query{Offset: 10, Limit: 5}, false))
	assert.Empty(t, Select(entries(), Query{Limit: 0}, false))
}

func TestSelect_DoesNotModifyInput(t *testing.T) {
	in := entries()
	_ = Select(in, Query{Limit: -1}, false)
	assert.Empty(t, in[1].Time)
	assert.Equal(t, "3", string(in[0].ID))
}

func TestBuildOptions(t *testing.T) {
	opts := BuildOptions(entries(), []model.ListingEntry{{Handicap: "-1.0", GoalLineDecimal: "2.75"}, {Handicap: "?"}})
	assert.Equal(t, []string{"-1.0", "0.5", "2.5"}, opts.Handicaps)
	assert.Equal(t, []string{"2.5", "2.75", "3", "4.5"}, opts.GoalLines)
}
