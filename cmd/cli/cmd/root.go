package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/angelospk/subsubs/pkg/config"
	coreErrors "github.com/angelospk/subsubs/pkg/core/errors"
	"github.com/angelospk/subsubs/pkg/core/history"
	"github.com/angelospk/subsubs/pkg/core/opensubtitles"
	"github.com/angelospk/subsubs/pkg/logging"
	"github.com/angelospk/subsubs/pkg/orchestrator"
	"github.com/spf13/cobra"
)

// LoadConfigFunc allows overriding configuration loading for testing.
var LoadConfigFunc = config.Load

// NewUpstreamFunc allows overriding the OpenSubtitles client creation for testing.
var NewUpstreamFunc = func(cfg config.OpenSubtitlesConfig) (orchestrator.Upstream, error) {
	return opensubtitles.NewClient(opensubtitles.Config{
		APIKey:    cfg.APIKey,
		UserAgent: cfg.UserAgent,
		BaseURL:   cfg.BaseURL,
		Token:     cfg.Token,
		Languages: cfg.Languages,
		Timeout:   cfg.Timeout,
	})
}

// OpenHistoryFunc allows overriding the history store for testing.
var OpenHistoryFunc = func(cfg config.HistoryConfig, logger *logging.Logger) (history.Store, error) {
	pc := cfg.ProviderConfig()
	pc.Logger = logger.WithComponent("history")
	return history.New(cfg.Provider, pc)
}

var (
	// Used for flags.
	cfgFile  string
	logLevel string

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "subsubs",
		Short: "Search and download subtitles from OpenSubtitles.",
		Long: `subsubs searches OpenSubtitles by title, ranks English subtitles first,
downloads the chosen subtitle and keeps a history of downloads.

The API key is read from the config file (opensubtitles.apikey),
SUBSUBS_OPENSUBTITLES_APIKEY or OPENSUBTITLES_API_KEY.`,
		SilenceUsage: true,
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml or $HOME/.subsubs/config.yaml)")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (trace, debug, info, warn, error)")
}

// app bundles what a command needs and releases it in Close.
type app struct {
	cfg    *config.Config
	logger *logging.Logger
	store  history.Store
	orch   *orchestrator.Orchestrator
}

// newApp loads configuration and wires the orchestrator. CLI logs go to stderr
// so stdout carries only command output.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := LoadConfigFunc(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if cfg.Logging.Output == nil {
		cfg.Logging.Output = cmd.ErrOrStderr()
	}
	logger := logging.New(cfg.Logging)

	upstream, err := NewUpstreamFunc(cfg.OpenSubtitles)
	if err != nil {
		logger.Close()
		return nil, fmt.Errorf("failed to initialize OpenSubtitles client: %w", err)
	}

	store, err := OpenHistoryFunc(cfg.History, logger)
	if err != nil {
		logger.Close()
		return nil, fmt.Errorf("failed to open download history (%s): %w", cfg.History.Provider, err)
	}

	return &app{
		cfg:    cfg,
		logger: logger,
		store:  store,
		orch:   orchestrator.New(upstream, store, logger.Logger),
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.WithError(err).Warn("Failed to close history store")
	}
	a.logger.Close()
}

// describeError turns an operation failure into a message for the terminal.
func describeError(err error) string {
	var cfgErr *coreErrors.ConfigurationError
	switch {
	case errors.As(err, &cfgErr):
		return fmt.Sprintf("OpenSubtitles API key not configured. Set %s in the config file, SUBSUBS_OPENSUBTITLES_APIKEY or %s", cfgErr.Setting, config.LegacyAPIKeyEnv)
	case coreErrors.IsUnavailable(err):
		return fmt.Sprintf("could not reach OpenSubtitles: %v", err)
	}
	if upErr, ok := coreErrors.AsUpstream(err); ok {
		if upErr.Message != "" {
			return fmt.Sprintf("OpenSubtitles returned status %d: %s", upErr.Status, upErr.Message)
		}
		return fmt.Sprintf("OpenSubtitles returned status %d", upErr.Status)
	}
	return err.Error()
}
