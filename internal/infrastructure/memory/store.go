// Package memory implementa los puertos de repositorio en memoria, con publicación de cambios
// en el mismo formato que el listener de Postgres. Lo usan los tests de casos de uso, del
// workspace y de HTTP, y turnosctl en modo demo.
package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/Turnos-api/internal/domain"
	"github.com/jhoicas/Turnos-api/internal/domain/entity"
	"github.com/jhoicas/Turnos-api/internal/domain/repository"
)

// Publisher destino de los eventos de cambio (realtime.Hub).
type Publisher interface {
	Publish(ev repository.ChangeEvent)
}

// Store estado compartido por todos los repositorios en memoria.
type Store struct {
	mu        sync.Mutex
	users     map[string]entity.User
	profiles  map[string]entity.UserProfile
	roles     map[string][]string
	employees map[string]entity.Employee
	shifts    map[string]entity.Shift
	requests  map[string]entity.TimeOffRequest
	balances  map[string]entity.TimeOffBalance
	messages  []entity.Message

	pub   Publisher
	fails map[string]error
	calls map[string]int
}

// NewStore crea un store vacío. pub puede ser nil.
func NewStore(pub Publisher) *Store {
	return &Store{
		users:     map[string]entity.User{},
		profiles:  map[string]entity.UserProfile{},
		roles:     map[string][]string{},
		employees: map[string]entity.Employee{},
		shifts:    map[string]entity.Shift{},
		requests:  map[string]entity.TimeOffRequest{},
		balances:  map[string]entity.TimeOffBalance{},
		pub:       pub,
		fails:     map[string]error{},
		calls:     map[string]int{},
	}
}

// FailNext hace que la próxima llamada a op (ej. "shifts.UpdateDay") devuelva err.
func (s *Store) FailNext(op string, err error) {
	s.mu.Lock()
	s.fails[op] = err
	s.mu.Unlock()
}

// Calls veces que se invocó op.
func (s *Store) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// enter registra la llamada y devuelve el fallo programado. Requiere s.mu.
func (s *Store) enter(op string) error {
	s.calls[op]++
	if err, ok := s.fails[op]; ok {
		delete(s.fails, op)
		return err
	}
	return nil
}

func (s *Store) publish(table string, typ repository.ChangeType, rec, old json.RawMessage) {
	if s.pub == nil {
		return
	}
	s.pub.Publish(repository.ChangeEvent{Table: table, Type: typ, Record: rec, OldRecord: old, ReceivedAt: time.Now()})
}

func mustEncode(raw json.RawMessage, err error) json.RawMessage {
	if err != nil {
		panic(err)
	}
	return raw
}

// clock normaliza "HH:MM" a "HH:MM:SS" como hace la columna TIME.
func clock(v string) string {
	if strings.Count(v, ":") == 1 {
		return v + ":00"
	}
	return v
}

// ── Usuarios, perfiles y roles ────────────────────────────────────────────────

// Users repositorio de usuarios.
func (s *Store) Users() *UserRepo { return &UserRepo{s} }

// Profiles repositorio de perfiles.
func (s *Store) Profiles() *ProfileRepo { return &ProfileRepo{s} }

// Roles repositorio de roles.
func (s *Store) Roles() *RoleRepo { return &RoleRepo{s} }

var (
	_ repository.UserRepository    = (*UserRepo)(nil)
	_ repository.ProfileRepository = (*ProfileRepo)(nil)
	_ repository.RoleRepository    = (*RoleRepo)(nil)
	_ repository.RoleTxRunner      = (*Store)(nil)
)

type UserRepo struct{ s *Store }

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("users.Create"); err != nil {
		return err
	}
	for _, x := range r.s.users {
		if strings.EqualFold(x.Email, u.Email) {
			return domain.ErrEmailAlreadyExists
		}
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (r *UserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, nil
}

type ProfileRepo struct{ s *Store }

func (r *ProfileRepo) Upsert(_ context.Context, p *entity.UserProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p.EmployeeID != nil {
		for uid, x := range r.s.profiles {
			if uid != p.UserID && x.EmployeeID != nil && *x.EmployeeID == *p.EmployeeID {
				return domain.ErrDuplicate
			}
		}
	}
	r.s.profiles[p.UserID] = *p
	return nil
}

func (r *ProfileRepo) GetByUserID(_ context.Context, userID string) (*entity.UserProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.profiles[userID]; ok {
		return &p, nil
	}
	return nil, nil
}

func (r *ProfileRepo) GetByEmployeeID(_ context.Context, employeeID string) (*entity.UserProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.profiles {
		if p.EmployeeID != nil && *p.EmployeeID == employeeID {
			return &p, nil
		}
	}
	return nil, nil
}

func (r *ProfileRepo) List(_ context.Context) ([]entity.UserProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]entity.UserProfile, 0, len(r.s.profiles))
	for _, p := range r.s.profiles {
		out = append(out, p)
	}
	return out, nil
}

type RoleRepo struct{ s *Store }

func (r *RoleRepo) ListByUser(_ context.Context, userID string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := append([]string{}, r.s.roles[userID]...)
	sort.Strings(out)
	return out, nil
}

func (r *RoleRepo) HasRole(_ context.Context, userID, role string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("roles.HasRole"); err != nil {
		return false, err
	}
	return entity.HasRole(r.s.roles[userID], role), nil
}

func (r *RoleRepo) ReplaceForUser(_ context.Context, userID string, roles []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("roles.ReplaceForUser"); err != nil {
		return err
	}
	if _, ok := r.s.users[userID]; !ok {
		return domain.ErrUserNotFound
	}
	for _, role := range roles {
		if !entity.IsValidRole(role) {
			return domain.ErrInvalidInput
		}
	}
	r.s.roles[userID] = append([]string{}, roles...)
	return nil
}

// RunRoles ejecuta fn y, si falla, restaura los roles previos.
func (s *Store) RunRoles(ctx context.Context, fn func(repository.RoleRepository) error) error {
	s.mu.Lock()
	saved := cloneRoles(s.roles)
	s.mu.Unlock()
	if err := fn(s.Roles()); err != nil {
		s.mu.Lock()
		s.roles = saved
		s.mu.Unlock()
		return err
	}
	return nil
}

// RunSignup ejecuta fn y, si falla, deshace usuarios, perfiles y roles.
func (s *Store) RunSignup(ctx context.Context, fn func(repository.UserRepository, repository.ProfileRepository, repository.RoleRepository) error) error {
	s.mu.Lock()
	users := make(map[string]entity.User, len(s.users))
	for k, v := range s.users {
		users[k] = v
	}
	profiles := make(map[string]entity.UserProfile, len(s.profiles))
	for k, v := range s.profiles {
		profiles[k] = v
	}
	roles := cloneRoles(s.roles)
	s.mu.Unlock()

	if err := fn(s.Users(), s.Profiles(), s.Roles()); err != nil {
		s.mu.Lock()
		s.users, s.profiles, s.roles = users, profiles, roles
		s.mu.Unlock()
		return err
	}
	return nil
}

func cloneRoles(in map[string][]string) map[string][]string {
	out := make(map[string][]string, len(in))
	for k, v := range in {
		out[k] = append([]string{}, v...)
	}
	return out
}
