package main

import (
	"fmt"
	"log/slog"

	"github.com/msomdec/todo-api/internal/domain"
	"github.com/msomdec/todo-api/internal/service"
	"github.com/spf13/cobra"
)

func newMigrateCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create tables, collections and indexes, then exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := bootstrap(cmd.Context(), *envFile)
			if err != nil {
				return err
			}
			return db.Close()
		},
	}
}

func newUserCmd(envFile *string) *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}

	var name, email, password, role string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an account, typically the first admin",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := bootstrap(cmd.Context(), *envFile)
			if err != nil {
				return err
			}
			defer db.Close()

			auth := service.NewAuthService(db.Users(), cfg.Auth.JWTSecret, cfg.Auth.BcryptCost, cfg.Auth.TokenTTL)
			user, err := auth.Register(cmd.Context(), name, email, password, domain.Role(role))
			if err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			slog.Info("user created", "id", user.ID, "email", user.Email, "role", user.Role)
			return nil
		},
	}
	create.Flags().StringVar(&name, "name", "", "display name")
	create.Flags().StringVar(&email, "email", "", "login email")
	create.Flags().StringVar(&password, "password", "", "login password")
	create.Flags().StringVar(&role, "role", string(domain.RoleAdmin), "user or admin")
	for _, f := range []string{"name", "email", "password"} {
		_ = create.MarkFlagRequired(f)
	}

	userCmd.AddCommand(create)
	return userCmd
}
