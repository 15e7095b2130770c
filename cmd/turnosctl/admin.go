package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/Turnos-api/internal/application/auth"
	"github.com/jhoicas/Turnos-api/internal/domain/entity"
	"github.com/jhoicas/Turnos-api/internal/infrastructure/postgres"
)

func newMigrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones SQL pendientes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			applied, err := postgres.Migrate(cmd.Context(), e.pool, e.cfg.Realtime.Channel, e.log)
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "sin migraciones pendientes")
				return nil
			}
			for _, v := range applied {
				fmt.Fprintln(cmd.OutOrStdout(), "aplicada", v)
			}
			return nil
		},
	}
}

func newCreateAdminCmd(e *env) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Crea un usuario con rol admin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(password) < 8 {
				return errors.New("--password debe tener al menos 8 caracteres")
			}
			users := postgres.NewUserRepository(e.pool)
			profiles := postgres.NewProfileRepository(e.pool)
			roles := postgres.NewRoleRepository(e.pool)
			employees := postgres.NewEmployeeRepository(e.pool)
			uc := auth.NewAuthUseCase(users, profiles, roles, employees, postgres.NewTxRunner(e.pool), auth.JWTConfig{
				Secret: e.cfg.JWT.Secret, ExpMinutes: e.cfg.JWT.Expiration, Issuer: e.cfg.JWT.Issuer,
			})
			u, err := uc.CreateUser(cmd.Context(), email, password, []string{entity.RoleAdmin})
			if err != nil {
				return err
			}
			e.log.Info().Str("user_id", u.ID).Str("email", u.Email).Msg("administrador creado")
			fmt.Fprintln(cmd.OutOrStdout(), u.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email del administrador")
	cmd.Flags().StringVar(&password, "password", "", "contraseña inicial")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
