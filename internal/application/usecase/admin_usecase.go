package usecase

import (
	"context"
	"fmt"

	"github.com/jhoicas/Turnos-api/internal/application/dto"
	"github.com/jhoicas/Turnos-api/internal/domain"
	"github.com/jhoicas/Turnos-api/internal/domain/entity"
	"github.com/jhoicas/Turnos-api/internal/domain/repository"
	"github.com/jhoicas/Turnos-api/pkg/logger"
)

// AdminUseCase operaciones de la función de administración. Corre sobre el pool privilegiado.
type AdminUseCase struct {
	users     repository.UserRepository
	roles     repository.RoleRepository
	tx        repository.RoleTxRunner
	analytics repository.AnalyticsRepository
	log       *logger.Logger
}

// NewAdminUseCase construye el caso de uso.
func NewAdminUseCase(
	users repository.UserRepository,
	roles repository.RoleRepository,
	tx repository.RoleTxRunner,
	analytics repository.AnalyticsRepository,
	log *logger.Logger,
) *AdminUseCase {
	return &AdminUseCase{users: users, roles: roles, tx: tx, analytics: analytics, log: log}
}

// IsAdmin consulta la fila admin en user_roles; no confía en los claims del token.
func (uc *AdminUseCase) IsAdmin(ctx context.Context, userID string) (bool, error) {
	return uc.roles.HasRole(ctx, userID, entity.RoleAdmin)
}

// SystemStats conteos agregados del sistema.
func (uc *AdminUseCase) SystemStats(ctx context.Context) (*dto.SystemStatsResponse, error) {
	s, err := uc.analytics.GetSystemStats(ctx)
	if err != nil {
		return nil, err
	}
	counts := map[string]int{entity.RoleAdmin: 0, entity.RoleManager: 0, entity.RoleEmployee: 0}
	for role, n := range s.RoleCounts {
		counts[role] = n
	}
	return &dto.SystemStatsResponse{
		TotalUsers:      s.TotalUsers,
		TotalEmployees:  s.TotalEmployees,
		ActiveEmployees: s.ActiveEmployees,
		TotalShifts:     s.TotalShifts,
		PendingTimeOff:  s.PendingTimeOff,
		TotalMessages:   s.TotalMessages,
		UnreadMessages:  s.UnreadMessages,
		RoleCounts:      counts,
	}, nil
}

// AssignRoles reemplaza todos los roles del usuario en una transacción.
// Lista vacía deja al usuario sin roles. Roles repetidos se colapsan.
func (uc *AdminUseCase) AssignRoles(ctx context.Context, adminID, userID string, roles []string) (*dto.AssignRolesResponse, error) {
	if userID == "" {
		return nil, fmt.Errorf("userId es obligatorio: %w", domain.ErrInvalidInput)
	}
	clean := make([]string, 0, len(roles))
	seen := make(map[string]bool, len(roles))
	for _, r := range roles {
		if !entity.IsValidRole(r) {
			return nil, fmt.Errorf("rol desconocido %q: %w", r, domain.ErrInvalidInput)
		}
		if !seen[r] {
			seen[r] = true
			clean = append(clean, r)
		}
	}
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}

	err = uc.tx.RunRoles(ctx, func(repo repository.RoleRepository) error {
		return repo.ReplaceForUser(ctx, userID, clean)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("admin_id", adminID).Str("user_id", userID).Strs("roles", clean).Msg("roles reasignados")
	return &dto.AssignRolesResponse{Success: true, UserID: userID, Roles: clean}, nil
}
