package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	mapcycle "go-mapcycle"
	"go-mapcycle/database"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	envFile     string
	jsonPath    string
	textPath    string
	dbDriver    string
	dbURL       string
	tablePrefix string
	seed        uint64
	logLevel    string

	config mapcycle.Config
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "mapcycle",
		Short: "Map rotation, voting and rock-the-vote for game servers",
		Long: `Mapcycle runs the map rotation of a game server: scheduled votes,
nominations, rock the vote, map extensions and map ratings.
Settings are read from MC_* environment variables, optionally from a .env file.`,
		SilenceUsage:      true,
		PersistentPreRunE: loadSettings,
	}

	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "File with MC_* settings to load into the environment")
	rootCmd.PersistentFlags().StringVar(&jsonPath, "maps", "mapcycle.json", "Map list in JSON")
	rootCmd.PersistentFlags().StringVar(&textPath, "mapcycle-txt", "mapcycle.txt", "Plain map cycle used to generate the JSON map list")
	rootCmd.PersistentFlags().Uint64Var(&seed, "seed", 0, "Seed for shuffling and tie-breaks (0 picks a random one)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn or error")

	rootCmd.PersistentFlags().StringVar(&dbDriver, "db-driver", database.DriverSQLite, "Stats database driver: sqlite or postgres")
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "mapcycle.db", "Stats database path or URL")
	rootCmd.PersistentFlags().StringVar(&tablePrefix, "table-prefix", "mapcycle", "Prefix of the stats table")

	rootCmd.AddCommand(newSimulateCmd(), newPreviewCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadSettings loads the .env file, if any, and parses the configuration.
func loadSettings(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(envFile); err != nil {
		// The default file is optional
		if !errors.Is(err, fs.ErrNotExist) || cmd.Flags().Changed("env-file") {
			return fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	var err error
	config, err = mapcycle.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	return nil
}

func newLogger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		level = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

func controllerOptions(logger *slog.Logger, extra ...mapcycle.Option) []mapcycle.Option {
	var opts = []mapcycle.Option{
		mapcycle.WithConfig(config),
		mapcycle.WithLogger(logger),
	}
	if seed != 0 {
		opts = append(opts, mapcycle.WithSeed(seed))
	}
	return append(opts, extra...)
}

func poolSource() mapcycle.PoolSource {
	return mapcycle.FilePoolSource{
		JSONPath: jsonPath,
		TextPath: textPath,
	}
}

// openStatsStore connects to the stats database and creates the table if needed.
func openStatsStore(ctx context.Context) (*sql.DB, *mapcycle.SQLStatsStore, error) {
	db, dialect, err := database.Open(ctx, dbDriver, dbURL)
	if err != nil {
		return nil, nil, err
	}

	if err := database.Migrate(db, tablePrefix); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	store, err := mapcycle.NewSQLStatsStore(db, tablePrefix, dialect)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	return db, store, nil
}
