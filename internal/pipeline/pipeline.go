package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"github.com/sirupsen/logrus"

	"github.com/ppiankov/estudio/internal/cache"
	"github.com/ppiankov/estudio/internal/llm"
	"github.com/ppiankov/estudio/internal/metrics"
	"github.com/ppiankov/estudio/internal/model"
	"github.com/ppiankov/estudio/internal/narrative"
	"github.com/ppiankov/estudio/internal/worker"
)

// ErrInvalidMatchID is returned when a match id has no digits
var ErrInvalidMatchID = errors.New("invalid match id")

// Summarizer produces the optional LLM summary of a report
type Summarizer interface {
	IsEnabled() bool
	GenerateSummary(ctx context.Context, report model.AnalysisReport, narrative string) (*model.LLMSummary, error)
}

// Analyzer orchestrates the analysis of a match: cache lookup, dossier
// load, market and indirect narratives, optional summary and cache store.
type Analyzer struct {
	source     Source
	cache      cache.Cache
	ttl        time.Duration
	summarizer Summarizer
	metrics    *metrics.Metrics
	log        logrus.FieldLogger
	now        func() time.Time
}

// Option configures an Analyzer
type Option func(*Analyzer)

// WithCache stores finished reports in c for ttl
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(a *Analyzer) {
		a.cache = c
		a.ttl = ttl
	}
}

// WithSummarizer attaches an LLM summarizer
func WithSummarizer(s Summarizer) Option {
	return func(a *Analyzer) { a.summarizer = s }
}

// WithMetrics records analyses in m
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Analyzer) { a.metrics = m }
}

// WithAnalyzerLogger sets the analyzer logger
func WithAnalyzerLogger(log logrus.FieldLogger) Option {
	return func(a *Analyzer) { a.log = log }
}

// WithClock overrides the report timestamp source
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) { a.now = now }
}

// NewAnalyzer creates an analyzer reading dossiers from source
func NewAnalyzer(source Source, opts ...Option) *Analyzer {
	a := &Analyzer{
		source: source,
		log:    logrus.StandardLogger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// New wires an analyzer from the application config
func New(cfg *model.Config, log logrus.FieldLogger) (*Analyzer, error) {
	fetcherOpts := []FetcherOption{
		WithLimiter(worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)),
		WithBreaker(cfg.HTTP.BreakerFailures, cfg.HTTP.BreakerTimeout),
		WithLogger(log),
	}
	if cfg.HTTP.RespectRobots {
		fetcherOpts = append(fetcherOpts, WithRobots())
	}
	fetcher := NewFetcher(cfg.HTTP.Timeout, cfg.HTTP.UserAgent, cfg.HTTP.MaxBodyBytes, cfg.HTTP.InsecureTLS,
		cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy, fetcherOpts...)

	opts := []Option{WithAnalyzerLogger(log)}

	c, err := cache.New(cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("init cache: %w", err)
	}
	if c != nil {
		opts = append(opts, WithCache(c, cfg.Cache.TTL))
	}

	if cfg.LLM.Provider != "" {
		s, err := llm.NewSummarizer(llm.ConfigFromModel(cfg.LLM, cfg.HTTP))
		if err != nil {
			log.WithError(err).Warn("failed to initialize LLM provider")
		} else {
			opts = append(opts, WithSummarizer(s))
		}
	}

	if cfg.Metrics.Enabled {
		opts = append(opts, WithMetrics(metrics.New()))
	}

	return NewAnalyzer(NewSource(cfg.Source, fetcher), opts...), nil
}

// CleanMatchID keeps only the digits of id
func CleanMatchID(id string) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && unicode.IsDigit(r) {
			return r
		}
		return -1
	}, id)
	if cleaned == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidMatchID, id)
	}
	return cleaned, nil
}

// Analyze produces the report of one match
func (a *Analyzer) Analyze(ctx context.Context, matchID string) (*model.AnalysisReport, error) {
	id, err := CleanMatchID(matchID)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	log := a.log.WithFields(logrus.Fields{"match_id": id, "source": a.source.Name()})

	key := cache.Key(id)
	if a.cache != nil {
		var cached model.AnalysisReport
		hit := cache.GetJSON(ctx, a.cache, key, &cached)
		a.metrics.CacheHit(hit)
		if hit {
			log.WithField("cache", "hit").Debug("serving cached analysis")
			return &cached, nil
		}
		log = log.WithField("cache", "miss")
	}

	dossier, err := a.source.Load(ctx, id)
	if err != nil {
		a.metrics.Failed(time.Since(start))
		return nil, fmt.Errorf("load dossier: %w", err)
	}

	report := a.BuildReport(dossier)

	if a.summarizer != nil && a.summarizer.IsEnabled() {
		md := narrative.RenderMarkdown(report.Market) + "\n" + narrative.RenderIndirectMarkdown(report.Indirect)
		summary, err := a.summarizer.GenerateSummary(ctx, *report, md)
		if err != nil {
			log.WithError(err).Warn("LLM summary generation failed")
		} else if summary != nil {
			report.LLM = summary
		}
	}

	if a.cache != nil {
		if err := cache.SetJSON(ctx, a.cache, key, report, a.ttl); err != nil {
			log.WithError(err).Warn("failed to cache analysis")
		}
	}

	a.metrics.Observe(report, time.Since(start))
	log.WithField("status", report.Market.Status).Info("match analyzed")
	return report, nil
}

// BuildReport computes the deterministic part of a report from a dossier
func (a *Analyzer) BuildReport(d *model.Dossier) *model.AnalysisReport {
	report := &model.AnalysisReport{
		MatchID:       d.MatchID,
		League:        d.League,
		Home:          d.Home,
		Away:          d.Away,
		Score:         d.Score,
		Kickoff:       d.Kickoff,
		GeneratedAt:   a.now().UTC(),
		Source:        a.source.Name(),
		Market:        narrative.Build(d.MarketInput()),
		Indirect:      narrative.BuildIndirect(*d),
		HomeStandings: d.HomeStandings,
		AwayStandings: d.AwayStandings,
		HomeOverUnder: d.HomeOverUnder,
		AwayOverUnder: d.AwayOverUnder,
	}

	fragment, err := narrative.RenderHTML(report.Market)
	if err != nil {
		a.log.WithError(err).WithField("match_id", d.MatchID).Warn("failed to render market HTML")
	}
	report.MarketHTML = fragment
	return report
}

// Metrics returns the analyzer's metrics, nil when disabled
func (a *Analyzer) Metrics() *metrics.Metrics {
	return a.metrics
}

// Close releases the cache backend
func (a *Analyzer) Close() error {
	if closer, ok := a.cache.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// RenderReport renders report to the requested outputs. The LLM summary,
// when present, goes next to the Markdown file as <name>.llm.md.
func RenderReport(r *Renderer, report *model.AnalysisReport, jsonPath, mdPath string, log logrus.FieldLogger) error {
	if jsonPath != "" {
		if err := r.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		log.WithField("path", jsonPath).Info("wrote JSON report")
	}

	if mdPath != "" {
		if err := r.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		log.WithField("path", mdPath).Info("wrote Markdown report")
	}

	if report.LLM != nil && report.LLM.Enabled && mdPath != "" {
		llmPath := strings.TrimSuffix(mdPath, ".md") + ".llm.md"
		if err := r.RenderLLMMarkdown(llm.RenderSeparateMarkdown(report.LLM), llmPath); err != nil {
			log.WithError(err).Warn("failed to write LLM summary")
		} else {
			log.WithField("path", llmPath).Info("wrote LLM summary")
		}
	}
	return nil
}
