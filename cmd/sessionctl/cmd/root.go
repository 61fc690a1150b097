package cmd

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jrsteele09/go-session-client/client"
	"github.com/jrsteele09/go-session-client/internal/config"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "sessionctl",
	Short: "Session client CLI - authenticate, inspect, and check permissions",
	Long: `sessionctl drives the session client against the protected API: log in and
out, restore a persisted session, list the permitted menu, and check whether
a navigation path is allowed.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath(), "Path to the YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(canCmd)
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "sessionctl.yaml"
	}
	return home + "/.sessionctl/config.yaml"
}

// newClient assembles the session client from the layered configuration.
func newClient() (*client.Client, error) {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	cfg, err := config.NewFromFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return client.New(cfg,
		client.WithLogger(logger),
		client.WithLogoutSignal(func() {
			pterm.Warning.Println("Session expired - log in again with 'sessionctl login'")
		}),
	)
}
