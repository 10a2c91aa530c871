package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"zennote/config"
	"zennote/db"
	"zennote/logging"
	"zennote/server"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string
	root := &cobra.Command{
		Use:          "zennote",
		Short:        "Notes backend with token authentication",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	loadConfig := func() (*config.Config, error) {
		return config.Load(envFile)
	}

	root.AddCommand(newServeCmd(loadConfig), newMigrateCmd(loadConfig))
	return root
}

func newServeCmd(loadConfig func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			conn, err := db.Open(ctx, cfg.DBDriver, cfg.DSN)
			if err != nil {
				return err
			}
			defer conn.Close()
			log.Info("connected to database", "driver", cfg.DBDriver)

			if cfg.AutoMigrate {
				n, err := db.Migrate(ctx, conn, cfg.DBDriver)
				if err != nil {
					return err
				}
				log.Info("migrations applied", "count", n)
			}

			deps := server.NewDeps(conn, cfg, log)
			if !deps.Tokens.Configured() {
				log.Error("JWT_SECRET is not set; register, login and note endpoints will answer 500")
			}
			return server.Run(ctx, cfg.Addr(), server.Routes(deps), cfg.ShutdownTimeout, log)
		},
	}
}

func newMigrateCmd(loadConfig func() (*config.Config, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	withDB := func(cmd *cobra.Command, fn func(ctx context.Context, conn *sql.DB, driver string) error) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		conn, err := db.Open(ctx, cfg.DBDriver, cfg.DSN)
		if err != nil {
			return err
		}
		defer conn.Close()
		return fn(ctx, conn, cfg.DBDriver)
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(cmd, func(ctx context.Context, conn *sql.DB, driver string) error {
				n, err := db.Migrate(ctx, conn, driver)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", n)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "List migrations and whether they are applied",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(cmd, func(ctx context.Context, conn *sql.DB, driver string) error {
				states, err := db.MigrationStatus(ctx, conn, driver)
				if err != nil {
					return err
				}
				for _, s := range states {
					state := "pending"
					if s.Applied {
						state = "applied"
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%05d  %-8s  %s\n", s.Version, state, s.Source)
				}
				return nil
			})
		},
	})
	return cmd
}
