package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/estudio/internal/model"
	"github.com/ppiankov/estudio/internal/narrative"
	"github.com/ppiankov/estudio/internal/odds"
)

// Renderer writes analysis reports to files and terminals
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the report as indented JSON
func (r *Renderer) RenderJSON(report *model.AnalysisReport, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

// RenderMarkdown writes the report as Markdown
func (r *Renderer) RenderMarkdown(report *model.AnalysisReport, path string) error {
	return writeFile(path, []byte(r.Markdown(report)))
}

// RenderLLMMarkdown writes an already rendered LLM summary
func (r *Renderer) RenderLLMMarkdown(markdown string, path string) error {
	return writeFile(path, []byte(markdown))
}

// Markdown renders the full report document
func (r *Renderer) Markdown(report *model.AnalysisReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s vs %s\n\n", report.Home, report.Away)
	fmt.Fprintf(&b, "- **Match:** %s\n", report.MatchID)
	if report.League != "" {
		fmt.Fprintf(&b, "- **League:** %s\n", report.League)
	}
	if report.Kickoff != nil {
		fmt.Fprintf(&b, "- **Kickoff:** %s\n", report.Kickoff.Format("2006-01-02 15:04 MST"))
	}
	if report.Score != "" {
		fmt.Fprintf(&b, "- **Score:** %s\n", report.Score)
	}
	b.WriteString("\n")

	b.WriteString(narrative.RenderMarkdown(report.Market))
	b.WriteString("\n")
	b.WriteString(narrative.RenderIndirectMarkdown(report.Indirect))
	b.WriteString("\n")

	writeStandings(&b, report)
	writeOverUnder(&b, report)

	if r.includeFooter {
		fmt.Fprintf(&b, "---\n\n_Generated by estudio from %s at %s. Verdicts replay historical results against the current lines; they are not predictions._\n",
			report.Source, report.GeneratedAt.UTC().Format("2006-01-02 15:04:05 UTC"))
	}
	return b.String()
}

func writeStandings(b *strings.Builder, report *model.AnalysisReport) {
	rows := []model.Standings{report.HomeStandings, report.AwayStandings}
	if rows[0].Team == "" && rows[1].Team == "" {
		return
	}

	b.WriteString("## Standings\n\n")
	b.WriteString("| Team | Rank | P | W | D | L | GF | GA |\n")
	b.WriteString("|---|---|---|---|---|---|---|---|\n")
	for _, s := range rows {
		if s.Team == "" {
			continue
		}
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s | %s | %s | %s |\n",
			s.Team, cell(s.Ranking), cell(s.Played), cell(s.Won), cell(s.Drawn), cell(s.Lost), cell(s.GoalsFor), cell(s.GoalsAgainst))
	}
	b.WriteString("\n")
}

func writeOverUnder(b *strings.Builder, report *model.AnalysisReport) {
	rows := []struct {
		team  string
		stats model.OverUnderStats
	}{
		{report.Home, report.HomeOverUnder},
		{report.Away, report.AwayOverUnder},
	}
	if rows[0].stats.Total == 0 && rows[1].stats.Total == 0 {
		return
	}

	b.WriteString("## Over/under record\n\n")
	b.WriteString("| Team | Over | Under | Push | Matches |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, r := range rows {
		fmt.Fprintf(b, "| %s | %.0f%% | %.0f%% | %.0f%% | %d |\n", r.team, r.stats.OverPct, r.stats.UnderPct, r.stats.PushPct, r.stats.Total)
	}
	b.WriteString("\n")
}

func cell(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

// RenderSummary prints a short verdict overview
func (r *Renderer) RenderSummary(w io.Writer, report *model.AnalysisReport) {
	fmt.Fprintf(w, "\n%s vs %s (match %s)\n", report.Home, report.Away, report.MatchID)

	m := report.Market
	if m.Status != model.StatusAnalyzed {
		fmt.Fprintln(w, "  Not enough data: current handicap or goal line missing")
		return
	}
	fmt.Fprintf(w, "  %s\n", narrative.HeadlineSentence(m))
	for _, pa := range []model.PrecedentAnalysis{m.Stadium, m.General} {
		fmt.Fprintf(w, "  %-8s %s\n", string(pa.Role)+":", precedentLine(pa))
	}
	if report.Indirect.RivalsSummary != "" {
		fmt.Fprintf(w, "  %s\n", report.Indirect.RivalsSummary)
	}
}

func precedentLine(pa model.PrecedentAnalysis) string {
	switch {
	case pa.Status == model.StatusDuplicate:
		return "same match as the stadium precedent"
	case pa.Status != model.StatusAnalyzed:
		return "insufficient data"
	}

	handicap := "-"
	if pa.Handicap.Status == model.StatusAnalyzed {
		handicap = narrative.VerdictText(pa.Handicap.Outcome)
	}
	goals := odds.Placeholder
	if pa.Goals.Status == model.StatusAnalyzed {
		goals = pa.Goals.Outcome.Label
	}
	return fmt.Sprintf("AH %s | Goals %s", handicap, goals)
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
