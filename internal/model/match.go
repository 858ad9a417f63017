package model

import (
	"bytes"
	"encoding/json"
	"time"
)

// MainOdds holds the raw opening odds of the current match as scraped.
// Lines are kept verbatim ("0/0.5", "-1", "2.5/3") and only interpreted
// by the odds package.
type MainOdds struct {
	HandicapHomePrice string `json:"ah_home_price,omitempty"`
	HandicapLine      string `json:"ah_line_raw"`
	HandicapAwayPrice string `json:"ah_away_price,omitempty"`
	OverPrice         string `json:"goals_over_price,omitempty"`
	GoalLine          string `json:"goals_line_raw"`
	UnderPrice        string `json:"goals_under_price,omitempty"`
}

// PrecedentStatus tags whether the scraping layer located a precedent
type PrecedentStatus string

const (
	PrecedentFound    PrecedentStatus = "found"
	PrecedentNotFound PrecedentStatus = "not_found"
)

// Precedent is a previously played match used as a reference for the
// current lines. Result is the raw "H-A" score, "?-?" when unknown.
// Home and Away are the rows as the precedent was played, not as the
// current match is.
type Precedent struct {
	Status       PrecedentStatus `json:"status"`
	MatchID      string          `json:"match_id,omitempty"`
	Date         string          `json:"date,omitempty"`
	League       string          `json:"league,omitempty"`
	Home         string          `json:"home"`
	Away         string          `json:"away"`
	Result       string          `json:"result"`
	HandicapLine string          `json:"ah_line,omitempty"`
	GoalLine     string          `json:"ou_line,omitempty"`
	Venue        string          `json:"venue,omitempty"`
}

// Found reports whether the precedent was located. A zero Precedent is
// treated as not found.
func (p Precedent) Found() bool {
	return p.Status == PrecedentFound
}

// HeadToHead carries the two direct precedents: the last meeting with the
// same home and away rows (stadium) and the most recent meeting overall.
type HeadToHead struct {
	Stadium Precedent `json:"stadium"`
	General Precedent `json:"general"`
}

// Standings is a team's league table line. Values are kept as text
// because the source reports "N/A" for missing cells.
type Standings struct {
	Team         string `json:"team"`
	Ranking      string `json:"ranking"`
	Played       string `json:"played"`
	Won          string `json:"won"`
	Drawn        string `json:"drawn"`
	Lost         string `json:"lost"`
	GoalsFor     string `json:"goals_for"`
	GoalsAgainst string `json:"goals_against"`

	// Specific is the home-only or away-only split, labelled by SpecificType
	SpecificType         string `json:"specific_type,omitempty"`
	SpecificPlayed       string `json:"specific_played,omitempty"`
	SpecificWon          string `json:"specific_won,omitempty"`
	SpecificDrawn        string `json:"specific_drawn,omitempty"`
	SpecificLost         string `json:"specific_lost,omitempty"`
	SpecificGoalsFor     string `json:"specific_goals_for,omitempty"`
	SpecificGoalsAgainst string `json:"specific_goals_against,omitempty"`
}

// OverUnderStats summarizes a team's recent over/under record
type OverUnderStats struct {
	OverPct  float64 `json:"over_pct"`
	UnderPct float64 `json:"under_pct"`
	PushPct  float64 `json:"push_pct"`
	Total    int     `json:"total"`
}

// Dossier is everything the scraping collaborator extracted for one match
type Dossier struct {
	MatchID  string     `json:"match_id"`
	League   string     `json:"league,omitempty"`
	Home     string     `json:"home"`
	Away     string     `json:"away"`
	Score    string     `json:"score,omitempty"`
	Kickoff  *time.Time `json:"kickoff,omitempty"`
	Odds     MainOdds   `json:"odds"`
	H2H      HeadToHead `json:"h2h"`
	LastHome Precedent  `json:"last_home"`
	LastAway Precedent  `json:"last_away"`

	// RivalsH2H is the meeting between the last opponents of each side
	RivalsH2H Precedent `json:"rivals_h2h"`

	// ComparativeHome is the home side against the last away opponent of
	// the away side; ComparativeAway the reverse.
	ComparativeHome Precedent `json:"comparative_home"`
	ComparativeAway Precedent `json:"comparative_away"`

	HomeStandings Standings      `json:"home_standings"`
	AwayStandings Standings      `json:"away_standings"`
	HomeOverUnder OverUnderStats `json:"home_over_under"`
	AwayOverUnder OverUnderStats `json:"away_over_under"`
}

// MarketInput builds the narrative input from the dossier's main odds
// and direct precedents.
func (d Dossier) MarketInput() MarketInput {
	return MarketInput{
		Home:        d.Home,
		Away:        d.Away,
		HandicapRaw: d.Odds.HandicapLine,
		GoalLineRaw: d.Odds.GoalLine,
		Stadium:     d.H2H.Stadium,
		General:     d.H2H.General,
	}
}

// ListingEntry is one row of the match listings document
type ListingEntry struct {
	ID              FlexString `json:"id"`
	HomeTeam        string     `json:"home_team"`
	AwayTeam        string     `json:"away_team"`
	Competition     string     `json:"competition,omitempty"`
	Time            string     `json:"time,omitempty"`
	TimeObj         string     `json:"time_obj,omitempty"`
	Score           string     `json:"score,omitempty"`
	Handicap        string     `json:"handicap,omitempty"`
	GoalLine        string     `json:"goal_line,omitempty"`
	GoalLineAlt     string     `json:"goalLine,omitempty"`
	GoalLineDecimal string     `json:"goal_line_decimal,omitempty"`
}

// Listings is the document of upcoming and finished matches
type Listings struct {
	Upcoming []ListingEntry `json:"upcoming_matches"`
	Finished []ListingEntry `json:"finished_matches"`
}

// FlexString decodes a JSON string or number into its textual form.
// Listing ids arrive as either depending on the producer.
type FlexString string

// UnmarshalJSON accepts "123", 123 and null
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}
