package model

import (
	"time"

	"github.com/ppiankov/estudio/internal/odds"
)

// MarketInput is the current market of a match plus its direct precedents
type MarketInput struct {
	Home        string    `json:"home"`
	Away        string    `json:"away"`
	HandicapRaw string    `json:"ah_line_raw"`
	GoalLineRaw string    `json:"goals_line_raw"`
	Stadium     Precedent `json:"stadium"`
	General     Precedent `json:"general"`
}

// AnalysisStatus tags how far an analysis could proceed
type AnalysisStatus string

const (
	StatusAnalyzed         AnalysisStatus = "analyzed"
	StatusInsufficientData AnalysisStatus = "insufficient_data"
	StatusDuplicate        AnalysisStatus = "duplicate" // same match as the stadium precedent
)

// ShiftKind classifies how the favorite moved between a precedent and now
type ShiftKind string

const (
	ShiftMoreFavored         ShiftKind = "more_favored"
	ShiftLessFavored         ShiftKind = "less_favored"
	ShiftIdenticalMagnitude  ShiftKind = "identical_magnitude"
	ShiftFavoriteChanged     ShiftKind = "favorite_changed"
	ShiftFavoriteEstablished ShiftKind = "favorite_established"
	ShiftFavoriteRemoved     ShiftKind = "favorite_removed"
	ShiftNotComparable       ShiftKind = "not_comparable"
)

// PrecedentRole names which precedent an analysis refers to
type PrecedentRole string

const (
	RoleStadium PrecedentRole = "stadium"
	RoleGeneral PrecedentRole = "general"
)

// FavoriteShift compares the favorite implied by a historical line with
// the current one. Movement shows both magnitudes, e.g. "0.5 → 1".
type FavoriteShift struct {
	Kind               ShiftKind `json:"kind"`
	HistoricalLine     string    `json:"historical_line"`
	CurrentLine        string    `json:"current_line"`
	HistoricalFavorite string    `json:"historical_favorite,omitempty"`
	CurrentFavorite    string    `json:"current_favorite,omitempty"`
	Movement           string    `json:"movement,omitempty"`
}

// HandicapAssessment is the handicap half of a precedent analysis
type HandicapAssessment struct {
	Status  AnalysisStatus `json:"status"`
	Shift   *FavoriteShift `json:"shift,omitempty"`
	Outcome odds.Outcome   `json:"outcome"`
}

// GoalAssessment is the goal-line half of a precedent analysis
type GoalAssessment struct {
	Status     AnalysisStatus `json:"status"`
	TotalGoals int            `json:"total_goals"`
	Outcome    odds.Outcome   `json:"outcome"`
}

// PrecedentAnalysis is the evaluation of the current lines against one
// precedent
type PrecedentAnalysis struct {
	Role     PrecedentRole      `json:"role"`
	Status   AnalysisStatus     `json:"status"`
	MatchID  string             `json:"match_id,omitempty"`
	Home     string             `json:"home,omitempty"`
	Away     string             `json:"away,omitempty"`
	Result   string             `json:"result,omitempty"`
	Handicap HandicapAssessment `json:"handicap"`
	Goals    GoalAssessment     `json:"goals"`
}

// MarketAnalysis is the complete market narrative for a match
type MarketAnalysis struct {
	Status          AnalysisStatus    `json:"status"`
	Home            string            `json:"home"`
	Away            string            `json:"away"`
	HandicapDisplay string            `json:"handicap_display"`
	Handicap        float64           `json:"handicap"`
	GoalLineDisplay string            `json:"goal_line_display"`
	GoalLine        float64           `json:"goal_line"`
	Favorite        string            `json:"favorite,omitempty"` // empty on a zero line
	Stadium         PrecedentAnalysis `json:"stadium"`
	General         PrecedentAnalysis `json:"general"`
}

// CoverStatus is the cover label of an indirect precedent, or Neutral
// when it cannot be evaluated at all.
type CoverStatus string

// Neutral marks an indirect precedent that has no result or no current line
const Neutral CoverStatus = "NEUTRAL"

// RivalsComparison compares two teams by their results against rivals
type RivalsComparison string

const (
	RivalsHomeBetter RivalsComparison = "home_better"
	RivalsAwayBetter RivalsComparison = "away_better"
	RivalsSimilar    RivalsComparison = "similar"
	RivalsUnknown    RivalsComparison = "unknown"
)

// IndirectEntry is one indirect precedent evaluated against the current line
type IndirectEntry struct {
	Home        string      `json:"home"`
	Away        string      `json:"away"`
	Date        string      `json:"date,omitempty"`
	Result      string      `json:"result"`
	Line        string      `json:"ah_line"`
	GoalLine    string      `json:"ou_line,omitempty"`
	Venue       string      `json:"venue,omitempty"`
	Cover       CoverStatus `json:"cover_status"`
	Description string      `json:"description,omitempty"`
}

// IndirectAnalysis groups the indirect precedents of a match
type IndirectAnalysis struct {
	LastHome        *IndirectEntry   `json:"last_home,omitempty"`
	LastAway        *IndirectEntry   `json:"last_away,omitempty"`
	RivalsH2H       *IndirectEntry   `json:"rivals_h2h,omitempty"`
	GeneralH2H      *IndirectEntry   `json:"general_h2h,omitempty"`
	ComparativeHome *IndirectEntry   `json:"comparative_home,omitempty"`
	ComparativeAway *IndirectEntry   `json:"comparative_away,omitempty"`
	Rivals          RivalsComparison `json:"rivals"`
	RivalsSummary   string           `json:"rivals_summary,omitempty"`
}

// AnalysisReport is the complete output for one match
type AnalysisReport struct {
	MatchID     string           `json:"match_id"`
	League      string           `json:"league,omitempty"`
	Home        string           `json:"home"`
	Away        string           `json:"away"`
	Score       string           `json:"score,omitempty"`
	Kickoff     *time.Time       `json:"kickoff,omitempty"`
	GeneratedAt time.Time        `json:"generated_at"`
	Source      string           `json:"source"`
	Market      MarketAnalysis   `json:"market"`
	Indirect    IndirectAnalysis `json:"indirect"`

	HomeStandings Standings      `json:"home_standings"`
	AwayStandings Standings      `json:"away_standings"`
	HomeOverUnder OverUnderStats `json:"home_over_under"`
	AwayOverUnder OverUnderStats `json:"away_over_under"`

	// MarketHTML is the rendered narrative fragment for web presentation
	MarketHTML string `json:"market_html,omitempty"`

	LLM *LLMSummary `json:"llm,omitempty"` // never affects verdicts
}

// LLMSummary contains an optional generated summary of the narrative
type LLMSummary struct {
	Enabled   bool     `json:"enabled"`
	Provider  string   `json:"provider,omitempty"`
	Model     string   `json:"model,omitempty"`
	Strict    bool     `json:"strict"`
	SummaryMD string   `json:"summary_md,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}
