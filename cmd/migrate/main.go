package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/leaddesk/backend/internal/config"
	"github.com/leaddesk/backend/internal/logging"
	"github.com/leaddesk/backend/internal/model"
	"github.com/leaddesk/backend/internal/repository"
	"github.com/leaddesk/backend/internal/service"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// withPool loads config, connects, and runs fn with the pool and migrations dir.
func withPool(ctx context.Context, fn func(ctx context.Context, pool *pgxpool.Pool, dir string) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(cfg.LogLevel)

	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect failed: %w", err)
	}
	defer pool.Close()
	return fn(ctx, pool, findMigrationDir())
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the leaddesk database schema",
		Long:          "Apply pending migrations by default. Subcommands reset the schema, create admin accounts and load seed data.",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(cmd.Context(), runIncremental)
		},
	}
	root.AddCommand(newUpCmd(), newResetCmd(), newFreshCmd(), newCreateAdminCmd(), newSeedCmd())
	return root
}

func newUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(cmd.Context(), runIncremental)
		},
	}
}

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Drop all tables and recreate them from the consolidated schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(cmd.Context(), func(ctx context.Context, pool *pgxpool.Pool, dir string) error {
				if err := runDropAll(ctx, pool, dir); err != nil {
					return err
				}
				return runConsolidated(ctx, pool, dir)
			})
		},
	}
}

func newFreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fresh",
		Short: "Drop all tables and apply every migration in order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(cmd.Context(), func(ctx context.Context, pool *pgxpool.Pool, dir string) error {
				if err := runDropAll(ctx, pool, dir); err != nil {
					return err
				}
				return runIncremental(ctx, pool, dir)
			})
		},
	}
}

func newCreateAdminCmd() *cobra.Command {
	var username, email, role string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account (password read from ADMIN_PASSWORD)",
		RunE: func(cmd *cobra.Command, args []string) error {
			password := os.Getenv("ADMIN_PASSWORD")
			if password == "" {
				return errors.New("ADMIN_PASSWORD must be set")
			}
			return withPool(cmd.Context(), func(ctx context.Context, pool *pgxpool.Pool, _ string) error {
				svc := service.NewAdminAuthService(repository.NewPgAdminUserRepository(pool))
				u, err := svc.CreateAdmin(ctx, username, email, password, role)
				if errors.Is(err, model.ErrValidation) {
					return fmt.Errorf("invalid admin: username required, password at least %d characters, role admin|moderator", service.MinPasswordLength)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %s %s (%s)\n", u.Role, u.Username, u.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "login name (required)")
	cmd.Flags().StringVar(&email, "email", "", "email matched by Google login")
	cmd.Flags().StringVar(&role, "role", model.RoleAdmin, "admin or moderator")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func newSeedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert contacts from a YAML seed file",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()
			seed, err := parseSeed(f)
			if err != nil {
				return err
			}
			return withPool(cmd.Context(), func(ctx context.Context, pool *pgxpool.Pool, _ string) error {
				n, err := seedContacts(ctx, repository.NewPgContactRepository(pool), seed)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "seeded %d contacts\n", n)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "seed/contacts.yaml", "seed file path")
	return cmd
}
