package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/teemow/calview/internal/config"
	"github.com/teemow/calview/internal/logging"
)

// rootCmd represents the base command for the calview application
var rootCmd = &cobra.Command{
	Use:   "calview",
	Short: "Month calendar view for CRM users backed by Google Calendar",
	Long: `calview shows a month calendar of a user's Google Calendar (or a shared
ICS feed) inside a CRM. It provides a login screen that sends users to
Google's consent page, a tab that checks whether a user is signed in, and a
month grid of their events.

It can run as:
  - A web server (calview serve)
  - A terminal viewer (calview show)`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return initApp(cmd)
	},
}

// version will be set by main
var version = "dev"

var (
	configPath string
	logLevel   string
	logFormat  string

	appConfig *config.Config
	appLogger *slog.Logger
)

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "calview version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp loads the configuration and sets up logging. Flags win over the
// environment, which wins over the config file.
func initApp(cmd *cobra.Command) error {
	if err := config.LoadEnv(); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	cfg.ApplyEnv()

	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Log.Format = logFormat
	}

	logger, err := logging.Setup(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Writer: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}

	appConfig = cfg
	appLogger = logger
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the YAML config file (default: user config dir/calview/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error. Can also use CALVIEW_LOG_LEVEL env var.")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text or json. Can also use CALVIEW_LOG_FORMAT env var.")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newVersionCmd())
}
