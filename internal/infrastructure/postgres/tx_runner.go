package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Turnos-api/internal/domain/repository"
)

var _ repository.RoleTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunRoles inicia una transacción, ejecuta fn con el repo de roles atado a la tx y hace Commit o Rollback.
func (r *TxRunner) RunRoles(ctx context.Context, fn func(roles repository.RoleRepository) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewRoleRepository(tx))
	})
}

// RunSignup crea usuario, perfil y rol inicial en una sola transacción.
func (r *TxRunner) RunSignup(ctx context.Context, fn func(
	users repository.UserRepository,
	profiles repository.ProfileRepository,
	roles repository.RoleRepository,
) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewUserRepository(tx), NewProfileRepository(tx), NewRoleRepository(tx))
	})
}

func (r *TxRunner) run(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
