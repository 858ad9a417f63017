package listing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `{
  "upcoming_matches": [
    {"id": 101, "home_team": "A", "away_team": "B", "time_obj": "2024-05-02T12:00:00", "handicap": "0.5", "goal_line": "2.5"},
    {"id": "102", "home_team": "C", "away_team": "D", "time_obj": "2024-05-01T12:00:00", "handicap": "-1", "goal_line": "3"}
  ],
  "finished_matches": [
    {"id": "90", "home_team": "E", "away_team": "F", "time_obj": "2024-04-01 20:00:00", "score": "2-1", "handicap": "0/0.5", "goalLine": "2.25"},
    {"id": "91", "home_team": "G", "away_team": "H", "time_obj": "2024-04-02 20:00:00", "score": "0-0", "handicap": "0"}
  ]
}`

func writeDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestStore_Sections(t *testing.T) {
	s := NewStore(writeDoc(t, sampleDoc), nil)

	up := s.Upcoming(Query{})
	assert.Equal(t, []string{"102", "101"}, ids(up))
	assert.Equal(t, "02/05 12:00", up[1].Time)

	fin := s.Finished(Query{})
	assert.Equal(t, []string{"91", "90"}, ids(fin))

	assert.Equal(t, []string{"90"}, ids(s.Finished(Query{Handicap: "0.5"})))
}

func TestStore_Limits(t *testing.T) {
	s := NewStore(writeDoc(t, sampleDoc), nil).WithLimits(1, 1)
	assert.Len(t, s.Upcoming(Query{}), 1)
	assert.Len(t, s.Upcoming(Query{Limit: 40}), 1)
	assert.Equal(t, []string{"101"}, ids(s.Upcoming(Query{Offset: 1, Limit: 1})))

	capped := NewStore(writeDoc(t, sampleDoc), nil)
	assert.Equal(t, MaxLimit, capped.clamp(Query{Limit: 500}).Limit)
	assert.Equal(t, DefaultLimit, capped.clamp(Query{}).Limit)
	assert.Equal(t, 0, capped.clamp(Query{Offset: -3}).Offset)
}

func TestStore_Find(t *testing.T) {
	s := NewStore(writeDoc(t, sampleDoc), nil)

	e, ok := s.Find("101")
	require.True(t, ok)
	assert.Equal(t, "A", e.HomeTeam)

	e, ok = s.Find("90")
	require.True(t, ok)
	assert.Equal(t, "2-1", e.Score)

	_, ok = s.Find("999")
	assert.False(t, ok)
}

func TestStore_Options(t *testing.T) {
	opts := NewStore(writeDoc(t, sampleDoc), nil).Options()
	assert.Equal(t, []string{"-1.0", "0.0", "0.5"}, opts.Handicaps)
	assert.Equal(t, []string{"2.25", "2.5", "3"}, opts.GoalLines)
}

func TestStore_MissingFile(t *testing.T) {
	logger, hook := test.NewNullLogger()
	s := NewStore(filepath.Join(t.TempDir(), "absent.json"), logger)

	doc := s.Load()
	assert.NotNil(t, doc.Upcoming)
	assert.Empty(t, doc.Upcoming)
	assert.Empty(t, doc.Finished)
	assert.Empty(t, hook.AllEntries())
}

func TestStore_CorruptFile(t *testing.T) {
	logger, hook := test.NewNullLogger()
	s := NewStore(writeDoc(t, "{not json"), logger)

	assert.Empty(t, s.Upcoming(Query{}))
	require.NotEmpty(t, hook.AllEntries())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}
