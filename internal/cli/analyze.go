package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ppiankov/estudio/internal/model"
	"github.com/ppiankov/estudio/internal/pipeline"
)

var (
	outJSON     string
	outMD       string
	timeout     time.Duration
	sourceDir   string
	sourceURL   string
	noCache     bool
	noFooter    bool
	insecureTLS bool
	cacheBack   string
	llmEnabled  bool
	llmProvider string
	llmModel    string
	metricsFile string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <match-id>",
	Short: "Analyze the market of a single match against its precedents",
	Long: `Analyze loads the dossier of a match and:
- Formats the current handicap and goal line
- Compares the current favorite with the stadium and general H2H
- Replays each precedent result against the current lines
- Evaluates the indirect precedents and common rivals
- Optionally summarizes the narrative with an LLM (never changes verdicts)

Example:
  estudio analyze 2401
  estudio analyze 2401 --json 2401.json --md 2401.md
  estudio analyze 2401 --source-url https://dossiers.example.com
  estudio analyze 2401 --llm --llm-provider ollama --llm-model llama3`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (optional)")
	analyzeCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	analyzeCmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "overall analysis timeout")
	addSourceFlags(analyzeCmd)
	addLLMFlags(analyzeCmd)
}

func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&sourceDir, "source-dir", "", "directory of <id>.json dossiers (overrides source.dir)")
	cmd.Flags().StringVar(&sourceURL, "source-url", "", "base URL serving <id>.json dossiers (overrides source.base_url)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh analysis)")
	cmd.Flags().StringVar(&cacheBack, "cache", "", "cache backend (memory, disk, layered, sqlite, redis)")
	cmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	cmd.Flags().BoolVar(&insecureTLS, "insecure", false, "skip TLS certificate verification (use for self-signed certs)")
	cmd.Flags().StringVar(&metricsFile, "metrics-textfile", "", "write Prometheus metrics to this file after the run")
}

func addLLMFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM summary generation")
	cmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, ollama)")
	cmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name (provider default when empty)")
}

// applyFlags layers the command flags over the loaded config
func applyFlags(cmd *cobra.Command, cfg *model.Config) error {
	if sourceDir != "" {
		cfg.Source.Dir = sourceDir
	}
	if sourceURL != "" {
		cfg.Source.BaseURL = sourceURL
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if cacheBack != "" {
		cfg.Cache.Backend = cacheBack
	}
	if noFooter {
		cfg.Output.IncludeFooter = false
	}
	if insecureTLS {
		cfg.HTTP.InsecureTLS = true
	}
	if metricsFile != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Textfile = metricsFile
	}

	if !llmEnabled {
		return nil
	}
	if cmd.Flags().Changed("llm-provider") || cfg.LLM.Provider == "" {
		cfg.LLM.Provider = llmProvider
	}
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}

	switch cfg.LLM.Provider {
	case "openai":
		if cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		}
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "ollama":
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" && cfg.LLM.BaseURL == "" {
			cfg.LLM.BaseURL = baseURL
		}
	}
	return nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	analyzer, err := pipeline.New(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = analyzer.Close() }()

	report, err := analyzer.Analyze(ctx, args[0])
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)
	renderer.RenderSummary(cmd.OutOrStdout(), report)
	if report.LLM != nil {
		for _, w := range report.LLM.Warnings {
			log.WithField("match_id", report.MatchID).Debug(w)
		}
	}

	if err := pipeline.RenderReport(renderer, report, outJSON, outMD, log); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	writeMetrics(analyzer, cfg, log)
	return nil
}

func writeMetrics(analyzer *pipeline.Analyzer, cfg *model.Config, log logrus.FieldLogger) {
	if !cfg.Metrics.Enabled || cfg.Metrics.Textfile == "" {
		return
	}
	path := cfg.Metrics.Textfile
	if err := analyzer.Metrics().WriteToTextfile(path); err != nil {
		log.WithError(err).Warn("failed to write metrics")
		return
	}
	log.WithField("path", filepath.Clean(path)).Debug("wrote metrics textfile")
}
