package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/estudio/internal/logging"
	"github.com/ppiankov/estudio/internal/model"
)

// Version is set at build time with -ldflags
var Version = "v0.1.0"

var (
	cfgFile   string
	verbose   bool
	logLevel  string
	logFormat string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "estudio",
	Short: "Estudio - Asian handicap market analysis of football matches",
	Long: `Estudio replays historical results against the current Asian handicap
and goal lines of a match.

For each match it compares the current favorite with the stadium and
general head-to-head precedents, states whether the current lines would
have been covered, pushed or lost, and evaluates the indirect precedents
(last matches and common rivals).

Verdicts describe the past. Estudio does not predict results.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of estudio.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "estudio %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.estudio/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (text, json)")

	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig loads .env, the config file and ESTUDIO_* variables
func initConfig() {
	// .env is optional
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}
		viper.AddConfigPath(filepath.Join(home, ".estudio"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("ESTUDIO")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults(viper.GetViper(), model.DefaultConfig())

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
		}
	} else if verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setDefaults registers every config key so that env variables and
// Unmarshal see them
func setDefaults(v *viper.Viper, cfg *model.Config) {
	defaults := map[string]any{
		"http.timeout":          cfg.HTTP.Timeout,
		"http.user_agent":       cfg.HTTP.UserAgent,
		"http.max_body_bytes":   cfg.HTTP.MaxBodyBytes,
		"http.insecure_tls":     cfg.HTTP.InsecureTLS,
		"http.http_proxy":       cfg.HTTP.HTTPProxy,
		"http.https_proxy":      cfg.HTTP.HTTPSProxy,
		"http.no_proxy":         cfg.HTTP.NoProxy,
		"http.respect_robots":   cfg.HTTP.RespectRobots,
		"http.breaker_failures": cfg.HTTP.BreakerFailures,
		"http.breaker_timeout":  cfg.HTTP.BreakerTimeout,

		"cache.enabled":     cfg.Cache.Enabled,
		"cache.backend":     cfg.Cache.Backend,
		"cache.ttl":         cfg.Cache.TTL,
		"cache.dir":         cfg.Cache.Dir,
		"cache.sqlite_path": cfg.Cache.SQLitePath,
		"cache.redis_addr":  cfg.Cache.RedisAddr,
		"cache.redis_db":    cfg.Cache.RedisDB,

		"rate_limiting.requests_per_second": cfg.RateLimiting.RequestsPerSecond,
		"rate_limiting.burst_size":          cfg.RateLimiting.BurstSize,

		"concurrency.workers": cfg.Concurrency.Workers,

		"source.dir":      cfg.Source.Dir,
		"source.base_url": cfg.Source.BaseURL,

		"listing.data_file":     cfg.Listing.DataFile,
		"listing.default_limit": cfg.Listing.DefaultLimit,
		"listing.max_limit":     cfg.Listing.MaxLimit,

		"llm.provider":   cfg.LLM.Provider,
		"llm.model":      cfg.LLM.Model,
		"llm.api_key":    cfg.LLM.APIKey,
		"llm.base_url":   cfg.LLM.BaseURL,
		"llm.timeout":    cfg.LLM.Timeout,
		"llm.strict":     cfg.LLM.Strict,
		"llm.max_tokens": cfg.LLM.MaxTokens,

		"output.dir":            cfg.Output.Dir,
		"output.verbose":        cfg.Output.Verbose,
		"output.include_footer": cfg.Output.IncludeFooter,
		"output.spreadsheet":    cfg.Output.Spreadsheet,

		"metrics.enabled":  cfg.Metrics.Enabled,
		"metrics.textfile": cfg.Metrics.Textfile,

		"logging.level":  cfg.Logging.Level,
		"logging.format": cfg.Logging.Format,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

// loadConfig merges defaults, config file, env and flags into a Config
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.LLM.APIKey == "" && strings.EqualFold(cfg.LLM.Provider, "openai") {
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.LLM.BaseURL == "" && strings.EqualFold(cfg.LLM.Provider, "ollama") {
		cfg.LLM.BaseURL = os.Getenv("OLLAMA_BASE_URL")
	}
	return cfg, nil
}

// setup loads the config and builds the logger for a command
func setup() (*model.Config, *logrus.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	log, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Output.Verbose && cfg.Logging.Level == "info" {
		log.SetLevel(logrus.DebugLevel)
	}
	return cfg, log, nil
}
