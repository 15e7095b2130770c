package usecase

import (
	"context"

	"github.com/jhoicas/Turnos-api/internal/application/dto"
	"github.com/jhoicas/Turnos-api/internal/domain"
	"github.com/jhoicas/Turnos-api/internal/domain/repository"
)

// ProfileUseCase datos del usuario autenticado.
type ProfileUseCase struct {
	users     repository.UserRepository
	profiles  repository.ProfileRepository
	roles     repository.RoleRepository
	employees repository.EmployeeRepository
}

// NewProfileUseCase construye el caso de uso.
func NewProfileUseCase(users repository.UserRepository, profiles repository.ProfileRepository, roles repository.RoleRepository, employees repository.EmployeeRepository) *ProfileUseCase {
	return &ProfileUseCase{users: users, profiles: profiles, roles: roles, employees: employees}
}

// Me perfil, roles actuales (desde user_roles) y ficha vinculada.
func (uc *ProfileUseCase) Me(ctx context.Context, userID string) (*dto.MeResponse, error) {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	profile, err := uc.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	roles, err := uc.roles.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := &dto.MeResponse{User: *toUserResponse(user, profile, roles)}
	if profile != nil && profile.EmployeeID != nil {
		emp, err := uc.employees.GetByID(ctx, *profile.EmployeeID)
		if err != nil {
			return nil, err
		}
		if emp != nil {
			out.Employee = toEmployeeResponse(emp)
		}
	}
	return out, nil
}
