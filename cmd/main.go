package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	travelura "github.com/clonejo/travel-ura"
	"github.com/clonejo/travel-ura/config"
	"github.com/clonejo/travel-ura/ura"
)

var rootCmd = &cobra.Command{
	Use:   "travel-ura <stop point name>...",
	Short: "Combined bus departures across a sequence of stops",
	Long: "Queries an URA instant endpoint for every stop point named and lists\n" +
		"the vehicles predicted to visit all of them, in that order, as\n" +
		"departures from the first stop.",
	Args:          cobra.MinimumNArgs(1),
	RunE:          departures,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	configPath    string
	provider      string
	baseURL       string
	timeout       time.Duration
	maxConcurrent int
	verbose       bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "", "", "providers file (YAML)")
	rootCmd.PersistentFlags().StringVarP(&provider, "provider", "p", "", "provider from the providers file")
	rootCmd.PersistentFlags().StringVarP(&baseURL, "base-url", "", "", "URA instant endpoint, overrides the provider")
	rootCmd.PersistentFlags().DurationVarP(&timeout, "timeout", "", ura.DefaultTimeout, "per-request timeout")
	rootCmd.PersistentFlags().IntVarP(&maxConcurrent, "max-concurrent", "", travelura.DefaultMaxConcurrent, "concurrent stop fetches")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func main() {
	// A .env in the working directory may carry URA_* variables;
	// missing is fine.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// logger builds the CLI logger: human-readable, on stderr, quiet unless
// --verbose.
func logger() zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

// loadConfig resolves defaults, providers file, environment, and flags,
// in that order.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(configPath, provider)
	if err != nil {
		return config.Config{}, err
	}

	if cmd.Flags().Changed("base-url") {
		cfg.BaseURL = baseURL
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Timeout = timeout
	}
	if cmd.Flags().Changed("max-concurrent") {
		cfg.MaxConcurrent = maxConcurrent
	}

	return cfg, nil
}

// newClient builds the instant client the commands share.
func newClient(cmd *cobra.Command) (*ura.Client, config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, config.Config{}, err
	}

	client := ura.NewClient(cfg.BaseURL)
	client.HTTPClient.Timeout = cfg.Timeout
	client.Logger = logger()

	return client, cfg, nil
}
