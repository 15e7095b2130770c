package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Turnos-api/internal/domain"
	"github.com/jhoicas/Turnos-api/internal/domain/entity"
	"github.com/jhoicas/Turnos-api/internal/domain/repository"
)

var (
	_ repository.UserRepository    = (*UserRepo)(nil)
	_ repository.ProfileRepository = (*ProfileRepo)(nil)
	_ repository.RoleRepository    = (*RoleRepo)(nil)
)

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios. Pasar pool o tx.
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

// Create persiste un nuevo usuario.
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.Status, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID obtiene un usuario por ID; nil si no existe.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	query := `
		SELECT id, email, password_hash, status, created_at, updated_at
		FROM users WHERE id = $1`
	u, err := scanUser(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

// FindByEmail obtiene un usuario por email; nil si no existe.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	query := `
		SELECT id, email, password_hash, status, created_at, updated_at
		FROM users WHERE lower(email) = lower($1) LIMIT 1`
	u, err := scanUser(r.q.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func scanUser(row pgxScanner) (*entity.User, error) {
	var u entity.User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Status, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// ProfileRepo vínculo usuario ↔ empleado (user_profiles).
type ProfileRepo struct {
	q Querier
}

// NewProfileRepository construye el adaptador. Pasar pool o tx.
func NewProfileRepository(q Querier) *ProfileRepo {
	return &ProfileRepo{q: q}
}

// Upsert crea o actualiza el perfil del usuario.
func (r *ProfileRepo) Upsert(ctx context.Context, p *entity.UserProfile) error {
	query := `
		INSERT INTO user_profiles (user_id, employee_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET employee_id = EXCLUDED.employee_id, updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(ctx, query, p.UserID, p.EmployeeID, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("upsert user_profile: %w", err)
	}
	return nil
}

// GetByUserID perfil del usuario; nil si no tiene.
func (r *ProfileRepo) GetByUserID(ctx context.Context, userID string) (*entity.UserProfile, error) {
	return r.getOne(ctx, `SELECT user_id, employee_id, created_at, updated_at FROM user_profiles WHERE user_id = $1`, userID)
}

// GetByEmployeeID perfil ligado a la ficha; nil si ningún usuario la tiene.
func (r *ProfileRepo) GetByEmployeeID(ctx context.Context, employeeID string) (*entity.UserProfile, error) {
	return r.getOne(ctx, `SELECT user_id, employee_id, created_at, updated_at FROM user_profiles WHERE employee_id = $1`, employeeID)
}

// List todos los perfiles (resolución de nombres en mensajería).
func (r *ProfileRepo) List(ctx context.Context) ([]entity.UserProfile, error) {
	rows, err := r.q.Query(ctx, `SELECT user_id, employee_id, created_at, updated_at FROM user_profiles`)
	if err != nil {
		return nil, fmt.Errorf("list user_profiles: %w", err)
	}
	defer rows.Close()
	var list []entity.UserProfile
	for rows.Next() {
		var p entity.UserProfile
		if err := rows.Scan(&p.UserID, &p.EmployeeID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan user_profile: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (r *ProfileRepo) getOne(ctx context.Context, query, arg string) (*entity.UserProfile, error) {
	var p entity.UserProfile
	err := r.q.QueryRow(ctx, query, arg).Scan(&p.UserID, &p.EmployeeID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user_profile: %w", err)
	}
	return &p, nil
}

// RoleRepo filas de user_roles.
type RoleRepo struct {
	q Querier
}

// NewRoleRepository construye el adaptador. Pasar pool o tx.
func NewRoleRepository(q Querier) *RoleRepo {
	return &RoleRepo{q: q}
}

// ListByUser roles del usuario en orden alfabético.
func (r *RoleRepo) ListByUser(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.q.Query(ctx, `SELECT role FROM user_roles WHERE user_id = $1 ORDER BY role`, userID)
	if err != nil {
		if isInvalidText(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list user_roles: %w", err)
	}
	defer rows.Close()
	roles := make([]string, 0, 3)
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, fmt.Errorf("scan user_role: %w", err)
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// HasRole consulta directa de la fila (no confía en los claims del token).
func (r *RoleRepo) HasRole(ctx context.Context, userID, role string) (bool, error) {
	var ok bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM user_roles WHERE user_id = $1 AND role = $2)`, userID, role,
	).Scan(&ok)
	if err != nil {
		if isInvalidText(err) {
			return false, nil
		}
		return false, fmt.Errorf("has role: %w", err)
	}
	return ok, nil
}

// ReplaceForUser borra y vuelve a insertar los roles del usuario.
func (r *RoleRepo) ReplaceForUser(ctx context.Context, userID string, roles []string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, userID); err != nil {
		if isInvalidText(err) {
			return domain.ErrInvalidInput
		}
		return fmt.Errorf("delete user_roles: %w", err)
	}
	for _, role := range roles {
		_, err := r.q.Exec(ctx,
			`INSERT INTO user_roles (user_id, role) VALUES ($1, $2) ON CONFLICT DO NOTHING`, userID, role)
		if err != nil {
			if isForeignKeyViolation(err) {
				return domain.ErrUserNotFound
			}
			if isCheckViolation(err) {
				return domain.ErrInvalidInput
			}
			return fmt.Errorf("insert user_role: %w", err)
		}
	}
	return nil
}

// CountByRole usuarios por rol.
func (r *RoleRepo) CountByRole(ctx context.Context) (map[string]int, error) {
	rows, err := r.q.Query(ctx, `SELECT role, COUNT(*) FROM user_roles GROUP BY role`)
	if err != nil {
		return nil, fmt.Errorf("count user_roles: %w", err)
	}
	defer rows.Close()
	out := map[string]int{}
	for rows.Next() {
		var role string
		var n int
		if err := rows.Scan(&role, &n); err != nil {
			return nil, fmt.Errorf("scan role count: %w", err)
		}
		out[role] = n
	}
	return out, rows.Err()
}
