package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/civicportal/admin-api/internal/infrastructure/config"
	"github.com/civicportal/admin-api/pkg/logger"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "civicadmin",
	Short: "Civic issue admin portal API",
	Long: `civicadmin serves the back-office REST API used by city staff to triage
citizen-reported issues, manage staff accounts and follow resolution metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
	FParseErrWhitelist: cobra.FParseErrWhitelist{},
}

// Execute runs the root command. Called once by main.main.
func Execute() error {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	return rootCmd.Execute()
}

func SetVersionInfo(v, c, d string) {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(ensureIndexesCmd)
}

// bootstrap loads the optional dotenv file and the configuration, then
// initialises the global logger.
func bootstrap(ctx context.Context) (*config.Config, zerolog.Logger, error) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, zerolog.Nop(), fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, zerolog.Nop(), err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Env == "development",
		Service: "civic-admin",
	})
	return cfg, log, nil
}
