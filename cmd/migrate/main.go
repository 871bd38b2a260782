package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/documentiulia/backend/internal/infrastructure/config"
	"github.com/documentiulia/backend/internal/infrastructure/logger"
	"github.com/documentiulia/backend/internal/infrastructure/migration"
	"github.com/documentiulia/backend/migrations"
	"github.com/fatih/color"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultMigrationsPath = "migrations"

var (
	migrationsPath string
	logLevel       string
	log            *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "DocumentIulia database migration tool",
	Long: `Applies and inspects the PostgreSQL schema.

Without --path the migrations compiled into the binary are used; create and
list work on the directory given by --path (default ./migrations).
Connection settings come from config.toml and DI_DATABASE_* variables.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logger.New(&logger.Config{
			Level:      logLevel,
			Format:     "console",
			Output:     "stdout",
			TimeFormat: "2006-01-02 15:04:05",
		}, "migrate")
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		log = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(m *migration.Migrator) error {
			if err := m.Up(); err != nil {
				return err
			}
			return printVersion(m)
		})
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back every migration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		confirm, _ := cmd.Flags().GetBool("confirm")
		if !confirm {
			color.Red("Refusing to roll back the whole schema without --confirm")
			return fmt.Errorf("down cancelled")
		}
		return withMigrator(func(m *migration.Migrator) error {
			return m.Down()
		})
	},
}

var stepCmd = &cobra.Command{
	Use:   "step <n>",
	Short: "Apply n migrations (negative n rolls back)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[0])
		if err != nil || n == 0 {
			return fmt.Errorf("invalid step count %q", args[0])
		}
		return withMigrator(func(m *migration.Migrator) error {
			if err := m.Steps(n); err != nil {
				return err
			}
			return printVersion(m)
		})
	},
}

var gotoCmd = &cobra.Command{
	Use:   "goto <version>",
	Short: "Migrate up or down to a specific version",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		version, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid version %q", args[0])
		}
		return withMigrator(func(m *migration.Migrator) error {
			if err := m.GoTo(uint(version)); err != nil {
				return err
			}
			return printVersion(m)
		})
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the current schema version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(printVersion)
	},
}

var forceCmd = &cobra.Command{
	Use:   "force <version>",
	Short: "Mark a version as applied without running it",
	Long:  `Use after a failed migration left the schema dirty and it was repaired by hand.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		version, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid version %q", args[0])
		}
		color.Yellow("Forcing schema version %d", version)
		return withMigrator(func(m *migration.Migrator) error {
			return m.Force(version)
		})
	},
}

var createCmd = &cobra.Command{
	Use:   "create <name> [description]",
	Short: "Create the next up/down migration pair",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		description := ""
		if len(args) > 1 {
			description = args[1]
		}
		mf, err := migration.CreateMigration(migrationDir(), args[0], description)
		if err != nil {
			return err
		}
		color.Green("Created migration %06d", mf.Version)
		fmt.Println("  up:  ", mf.UpPath)
		fmt.Println("  down:", mf.DownPath)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the migrations in the migrations directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := migration.ListMigrations(migrationDir())
		if err != nil {
			return err
		}
		if len(names) == 0 {
			color.Yellow("No migrations found in %s", migrationDir())
			return nil
		}
		for _, name := range names {
			fmt.Println("  -", name)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&migrationsPath, "path", "", "migrations directory (default: embedded migrations)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	downCmd.Flags().Bool("confirm", false, "confirm rolling back every migration")

	rootCmd.AddCommand(upCmd, downCmd, stepCmd, gotoCmd, versionCmd, forceCmd, createCmd, listCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func migrationDir() string {
	if migrationsPath != "" {
		return migrationsPath
	}
	return defaultMigrationsPath
}

func migrationSource() (migration.Source, error) {
	if migrationsPath == "" {
		return migration.FromFS(migrations.FS, ".")
	}
	abs, err := filepath.Abs(migrationsPath)
	if err != nil {
		return migration.Source{}, fmt.Errorf("failed to resolve %s: %w", migrationsPath, err)
	}
	return migration.FromDir(abs), nil
}

// withMigrator opens the configured database and runs fn against it.
func withMigrator(fn func(m *migration.Migrator) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to reach database %s@%s:%d: %w",
			cfg.Database.DBName, cfg.Database.Host, cfg.Database.Port, err)
	}

	src, err := migrationSource()
	if err != nil {
		return err
	}
	m, err := migration.New(db, src, log)
	if err != nil {
		return err
	}
	defer m.Close()

	return fn(m)
}

func printVersion(m *migration.Migrator) error {
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	switch {
	case version == 0:
		color.Yellow("No migrations applied")
	case dirty:
		color.Red("Schema version %d (dirty)", version)
	default:
		color.Green("Schema version %d", version)
	}
	return nil
}
