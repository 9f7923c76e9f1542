package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/servicedesk/internal/repository"
	"github.com/spec-kit/servicedesk/internal/service"
)

func newUsersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage ERP logins",
	}
	cmd.AddCommand(newAddUserCommand())
	return cmd
}

func newAddUserCommand() *cobra.Command {
	var (
		email    string
		password string
		admin    bool
	)
	cmd := &cobra.Command{
		Use:   "add <nick>",
		Short: "Create a user able to log in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close()

			authService := service.NewAuthService(rt.cfg.Auth, repository.NewUserRepository(rt.pg.PoolHandle()))
			user, err := authService.CreateUser(cmd.Context(), args[0], email, password, admin)
			if err != nil {
				return err
			}
			rt.logger.Info("user created", zap.String("nick", user.Nick), zap.Bool("admin", user.Admin))
			fmt.Fprintf(cmd.OutOrStdout(), "created user %s\n", user.Nick)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Notification address")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Login password")
	cmd.Flags().BoolVar(&admin, "admin", false, "Grant administrator rights")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
