package llm

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/ppiankov/estudio/internal/model"
	"github.com/ppiankov/estudio/internal/odds"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Summarize writes a prose summary of an analysis narrative
	Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// SummarizeRequest contains the input for LLM summarization
type SummarizeRequest struct {
	// Report is the deterministic analysis being summarized
	Report model.AnalysisReport

	// Narrative is the rendered Markdown of the analysis
	Narrative string

	// AllowedLabels are the verdict labels present in the analysis. In
	// strict mode a summary naming any other label is rejected.
	AllowedLabels []string

	// Prompt is an optional custom prompt (if empty, use default)
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// SummarizeResponse contains the LLM's summary output
type SummarizeResponse struct {
	Summary string

	// MentionedLabels are the verdict labels found in Summary
	MentionedLabels []string

	Model      string
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "ollama" or "" for disabled
	Provider string

	Model   string
	APIKey  string
	BaseURL string

	Timeout int // seconds

	// Strict rejects summaries that mention verdicts absent from the analysis
	Strict bool

	MaxTokens int

	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns the disabled default configuration
func DefaultConfig() Config {
	return Config{
		Provider:  "",
		Timeout:   30,
		Strict:    true,
		MaxTokens: 600,
	}
}

const systemPrompt = "You summarize football handicap market analyses. You restate the deterministic verdicts you are given and never invent new ones."

// verdictLabels lists every label a verdict can carry; longer labels
// first so "NOT COVERED" is not read as "COVERED"
var verdictLabels = []string{
	odds.LabelNotCovered,
	odds.LabelUnder,
	odds.LabelCovered,
	odds.LabelOver,
	odds.LabelPush,
	odds.LabelIndeterminate,
}

var labelPattern = regexp.MustCompile(`\b(` + strings.Join(quoteAll(verdictLabels), "|") + `)\b`)

func quoteAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = regexp.QuoteMeta(s)
	}
	return out
}

// BuildPrompt constructs the default summarization prompt
func BuildPrompt(report model.AnalysisReport, narrative string, allowedLabels []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, `You are summarizing the market analysis of %s vs %s.

RULES:
1. The verdicts below are final. Only use these verdict labels, written exactly as shown:
%s
2. DO NOT predict the result or recommend a bet.
3. If a precedent has insufficient data, say so plainly.
4. Mention the favorite and how the line moved against the precedents.

Analysis:
%s
`, report.Home, report.Away, joinLabels(allowedLabels), strings.TrimSpace(narrative))

	b.WriteString("\nProvide a 3-4 sentence summary in plain prose.")
	return b.String()
}

func joinLabels(labels []string) string {
	if len(labels) == 0 {
		return "(No verdicts available, do not state any)"
	}
	var b strings.Builder
	for _, l := range labels {
		b.WriteString("\n- ")
		b.WriteString(l)
	}
	return b.String()
}

// AllowedLabels returns the sorted verdict labels of every evaluated
// assessment in the report
func AllowedLabels(report model.AnalysisReport) []string {
	seen := make(map[string]bool)
	for _, pa := range []model.PrecedentAnalysis{report.Market.Stadium, report.Market.General} {
		if pa.Handicap.Status == model.StatusAnalyzed {
			seen[pa.Handicap.Outcome.Label] = true
		}
		if pa.Goals.Status == model.StatusAnalyzed {
			seen[pa.Goals.Outcome.Label] = true
		}
	}

	ia := report.Indirect
	for _, e := range []*model.IndirectEntry{ia.LastHome, ia.LastAway, ia.RivalsH2H, ia.GeneralH2H, ia.ComparativeHome, ia.ComparativeAway} {
		if e != nil && e.Cover != model.Neutral && e.Cover != "" {
			seen[string(e.Cover)] = true
		}
	}

	labels := make([]string, 0, len(seen))
	for l := range seen {
		if l != "" {
			labels = append(labels, l)
		}
	}
	sort.Strings(labels)
	return labels
}

// extractLabels returns the distinct verdict labels mentioned in text
func extractLabels(text string) []string {
	seen := make(map[string]bool)
	var labels []string
	for _, m := range labelPattern.FindAllString(text, -1) {
		if !seen[m] {
			seen[m] = true
			labels = append(labels, m)
		}
	}
	return labels
}

// checkLabels fails when strict and the summary names a label outside allowed
func checkLabels(strict bool, mentioned, allowed []string) error {
	if !strict {
		return nil
	}
	for _, l := range mentioned {
		if !contains(allowed, l) {
			return fmt.Errorf("LABEL LEAK: summary mentions verdict absent from the analysis: %s", l)
		}
	}
	return nil
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// resolve fills model and token defaults from the request and config
func resolve(req SummarizeRequest, cfg Config, defaultModel string) (modelName string, maxTokens int) {
	modelName = req.Model
	if modelName == "" {
		modelName = cfg.Model
	}
	if modelName == "" {
		modelName = defaultModel
	}

	maxTokens = req.MaxTokens
	if maxTokens == 0 {
		maxTokens = cfg.MaxTokens
	}
	if maxTokens == 0 {
		maxTokens = 600
	}
	return modelName, maxTokens
}
