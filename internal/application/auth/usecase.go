package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Turnos-api/internal/application/dto"
	"github.com/jhoicas/Turnos-api/internal/domain"
	"github.com/jhoicas/Turnos-api/internal/domain/entity"
	"github.com/jhoicas/Turnos-api/internal/domain/repository"
	"github.com/jhoicas/Turnos-api/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// SignupTxRunner crea usuario, perfil y rol en una sola transacción.
type SignupTxRunner interface {
	RunSignup(ctx context.Context, fn func(
		users repository.UserRepository,
		profiles repository.ProfileRepository,
		roles repository.RoleRepository,
	) error) error
}

// AuthUseCase casos de uso de autenticación: registro y login.
type AuthUseCase struct {
	userRepo     repository.UserRepository
	profileRepo  repository.ProfileRepository
	roleRepo     repository.RoleRepository
	employeeRepo repository.EmployeeRepository
	tx           SignupTxRunner
	jwtCfg       JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(
	userRepo repository.UserRepository,
	profileRepo repository.ProfileRepository,
	roleRepo repository.RoleRepository,
	employeeRepo repository.EmployeeRepository,
	tx SignupTxRunner,
	jwtCfg JWTConfig,
) *AuthUseCase {
	return &AuthUseCase{
		userRepo: userRepo, profileRepo: profileRepo, roleRepo: roleRepo,
		employeeRepo: employeeRepo, tx: tx, jwtCfg: jwtCfg,
	}
}

// RegisterUser crea un usuario con rol employee: hashea password con bcrypt y, si existe una
// ficha con el mismo email que nadie reclamó, la vincula. ErrEmailAlreadyExists si el email ya existe.
func (uc *AuthUseCase) RegisterUser(ctx context.Context, in dto.RegisterRequest) (*dto.UserResponse, error) {
	return uc.CreateUser(ctx, in.Email, in.Password, []string{entity.RoleEmployee})
}

// CreateUser alta con roles explícitos (turnosctl create-admin usa esta variante).
func (uc *AuthUseCase) CreateUser(ctx context.Context, email, password string, roles []string) (*dto.UserResponse, error) {
	email = strings.TrimSpace(email)
	if !strings.Contains(email, "@") || len(password) < 8 {
		return nil, domain.ErrInvalidInput
	}
	for _, r := range roles {
		if !entity.IsValidRole(r) {
			return nil, domain.ErrInvalidInput
		}
	}
	existing, err := uc.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	user := &entity.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		Status:       entity.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	profile := &entity.UserProfile{UserID: user.ID, CreatedAt: now, UpdatedAt: now}
	if emp, err := uc.employeeRepo.FindByEmail(ctx, email); err != nil {
		return nil, err
	} else if emp != nil {
		owner, err := uc.profileRepo.GetByEmployeeID(ctx, emp.ID)
		if err != nil {
			return nil, err
		}
		if owner == nil {
			profile.EmployeeID = &emp.ID
		}
	}

	err = uc.tx.RunSignup(ctx, func(users repository.UserRepository, profiles repository.ProfileRepository, roleRepo repository.RoleRepository) error {
		if err := users.Create(ctx, user); err != nil {
			return err
		}
		if err := profiles.Upsert(ctx, profile); err != nil {
			return err
		}
		return roleRepo.ReplaceForUser(ctx, user.ID, roles)
	})
	if err != nil {
		return nil, err
	}
	return toUserResponse(user, profile, roles), nil
}

// Login verifica email/password, genera JWT con los roles actuales y retorna token + usuario.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.FindByEmail(ctx, strings.TrimSpace(in.Email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if user.Status != entity.UserStatusActive {
		return nil, domain.ErrForbidden
	}
	profile, err := uc.profileRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	roles, err := uc.roleRepo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	id := jwt.Identity{UserID: user.ID, Roles: roles}
	if profile != nil && profile.EmployeeID != nil {
		id.EmployeeID = *profile.EmployeeID
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, id, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token: token,
		User:  *toUserResponse(user, profile, roles),
	}, nil
}

func toUserResponse(u *entity.User, profile *entity.UserProfile, roles []string) *dto.UserResponse {
	out := &dto.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Status:    u.Status,
		Roles:     append([]string{}, roles...),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if profile != nil {
		out.EmployeeID = profile.EmployeeID
	}
	return out
}
