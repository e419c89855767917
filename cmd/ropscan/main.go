package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/spf13/cobra"

	"github.com/ropscan/ropscan-go/api"
	"github.com/ropscan/ropscan-go/envconf"
	"github.com/ropscan/ropscan-go/notification"
)

type config struct {
	APIBaseURL  string         `env:"ROPSCAN_API_BASE_URL" toml:"api_base_url"`
	AccessToken envconf.Secret `env:"ROPSCAN_ACCESS_TOKEN" toml:"access_token"`
	Verbose     bool           `env:"ROPSCAN_VERBOSE" toml:"verbose"`
}

type app struct {
	cfg    config
	logger log.Logger
	client *api.Client
	sink   notification.Sink
}

var verbose bool

var rootCmd = &cobra.Command{
	Use:           "ropscan",
	Short:         "Client for the ROP screening API",
	Long:          "ropscan talks to the retinopathy-of-prematurity screening backend: patients, appointments, fundus image uploads and AI analysis results.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.NewLogger().Errorf(err.Error())
		os.Exit(1)
	}
}

func configFilePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "ropscan", "config.toml")
}

// newApp loads the configuration (TOML file first, environment overrides) and
// wires the shared client, logger and sink.
func newApp() (*app, error) {
	var cfg config
	path := configFilePath()
	if path != "" {
		if err := envconf.LoadFile(path, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}
	if err := envconf.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if verbose {
		cfg.Verbose = true
	}
	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("API base URL is empty: set ROPSCAN_API_BASE_URL or api_base_url in %s", path)
	}

	logger := log.NewLogger()
	logger.EnableDebugLog(cfg.Verbose)

	return &app{
		cfg:    cfg,
		logger: logger,
		client: api.NewDefaultClient(cfg.APIBaseURL, string(cfg.AccessToken), logger),
		sink:   notification.NewLogSink(logger),
	}, nil
}
