package memory

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Turnos-api/internal/domain"
	"github.com/jhoicas/Turnos-api/internal/domain/entity"
	"github.com/jhoicas/Turnos-api/internal/domain/repository"
	"github.com/jhoicas/Turnos-api/internal/infrastructure/rowjson"
)

var (
	_ repository.EmployeeRepository  = (*EmployeeRepo)(nil)
	_ repository.ShiftRepository     = (*ShiftRepo)(nil)
	_ repository.TimeOffRepository   = (*TimeOffRepo)(nil)
	_ repository.BalanceRepository   = (*BalanceRepo)(nil)
	_ repository.MessageRepository   = (*MessageRepo)(nil)
	_ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)
)

// Employees repositorio del directorio.
func (s *Store) Employees() *EmployeeRepo { return &EmployeeRepo{s} }

// Shifts repositorio de turnos.
func (s *Store) Shifts() *ShiftRepo { return &ShiftRepo{s} }

// TimeOff repositorio de solicitudes de ausencia.
func (s *Store) TimeOff() *TimeOffRepo { return &TimeOffRepo{s} }

// Balances repositorio de saldos.
func (s *Store) Balances() *BalanceRepo { return &BalanceRepo{s} }

// Messages repositorio de mensajes.
func (s *Store) Messages() *MessageRepo { return &MessageRepo{s} }

// Analytics consultas agregadas.
func (s *Store) Analytics() *AnalyticsRepo { return &AnalyticsRepo{s} }

// ── Employees ─────────────────────────────────────────────────────────────────

type EmployeeRepo struct{ s *Store }

func (r *EmployeeRepo) Create(_ context.Context, e *entity.Employee) error {
	r.s.mu.Lock()
	if err := r.s.enter("employees.Create"); err != nil {
		r.s.mu.Unlock()
		return err
	}
	for _, x := range r.s.employees {
		if strings.EqualFold(x.Email, e.Email) {
			r.s.mu.Unlock()
			return domain.ErrDuplicate
		}
	}
	if e.HireDate.IsZero() {
		e.HireDate = time.Now().UTC().Truncate(24 * time.Hour)
	}
	r.s.employees[e.ID] = *e
	r.s.mu.Unlock()

	r.s.publish(repository.TableEmployees, repository.ChangeInsert, mustEncode(rowjson.EncodeEmployee(*e)), nil)
	return nil
}

func (r *EmployeeRepo) GetByID(_ context.Context, id string) (*entity.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if e, ok := r.s.employees[id]; ok {
		return &e, nil
	}
	return nil, nil
}

func (r *EmployeeRepo) FindByEmail(_ context.Context, email string) (*entity.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.employees {
		if strings.EqualFold(e.Email, email) {
			return &e, nil
		}
	}
	return nil, nil
}

func (r *EmployeeRepo) Update(_ context.Context, e *entity.Employee) error {
	r.s.mu.Lock()
	old, ok := r.s.employees[e.ID]
	if !ok {
		r.s.mu.Unlock()
		return domain.ErrNotFound
	}
	e.UpdatedAt = time.Now()
	r.s.employees[e.ID] = *e
	r.s.mu.Unlock()

	r.s.publish(repository.TableEmployees, repository.ChangeUpdate,
		mustEncode(rowjson.EncodeEmployee(*e)), mustEncode(rowjson.EncodeEmployee(old)))
	return nil
}

func (r *EmployeeRepo) List(_ context.Context) ([]entity.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("employees.List"); err != nil {
		return nil, err
	}
	out := make([]entity.Employee, 0, len(r.s.employees))
	for _, e := range r.s.employees {
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		return out[i].FirstName < out[j].FirstName
	})
	return out, nil
}

// ── Shifts ────────────────────────────────────────────────────────────────────

type ShiftRepo struct{ s *Store }

func (r *ShiftRepo) Create(_ context.Context, sh *entity.Shift) error {
	r.s.mu.Lock()
	if err := r.s.enter("shifts.Create"); err != nil {
		r.s.mu.Unlock()
		return err
	}
	if _, ok := r.s.employees[sh.EmployeeID]; !ok {
		r.s.mu.Unlock()
		return domain.ErrNotFound
	}
	sh.StartTime = clock(sh.StartTime)
	if sh.EndTime != nil {
		end := clock(*sh.EndTime)
		sh.EndTime = &end
	}
	now := time.Now()
	if sh.CreatedAt.IsZero() {
		sh.CreatedAt = now
	}
	sh.UpdatedAt = now
	r.s.shifts[sh.ID] = *sh
	r.s.mu.Unlock()

	r.s.publish(repository.TableShifts, repository.ChangeInsert, mustEncode(rowjson.EncodeShift(*sh)), nil)
	return nil
}

func (r *ShiftRepo) GetByID(_ context.Context, id string) (*entity.Shift, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if sh, ok := r.s.shifts[id]; ok {
		return &sh, nil
	}
	return nil, nil
}

func (r *ShiftRepo) List(_ context.Context, f repository.ShiftFilter) ([]entity.Shift, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("shifts.List"); err != nil {
		return nil, err
	}
	out := make([]entity.Shift, 0, len(r.s.shifts))
	for _, sh := range r.s.shifts {
		if f.EmployeeID != "" && sh.EmployeeID != f.EmployeeID {
			continue
		}
		out = append(out, sh)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Day != out[j].Day {
			return out[i].Day < out[j].Day
		}
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *ShiftRepo) UpdateDay(_ context.Context, id string, day int) error {
	r.s.mu.Lock()
	if err := r.s.enter("shifts.UpdateDay"); err != nil {
		r.s.mu.Unlock()
		return err
	}
	if err := entity.ValidateDay(day); err != nil {
		r.s.mu.Unlock()
		return err
	}
	old, ok := r.s.shifts[id]
	if !ok {
		r.s.mu.Unlock()
		return domain.ErrNotFound
	}
	next := old
	next.Day = day
	next.UpdatedAt = time.Now()
	r.s.shifts[id] = next
	r.s.mu.Unlock()

	r.s.publish(repository.TableShifts, repository.ChangeUpdate,
		mustEncode(rowjson.EncodeShift(next)), mustEncode(rowjson.EncodeShift(old)))
	return nil
}

func (r *ShiftRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	if err := r.s.enter("shifts.Delete"); err != nil {
		r.s.mu.Unlock()
		return err
	}
	old, ok := r.s.shifts[id]
	if !ok {
		r.s.mu.Unlock()
		return domain.ErrNotFound
	}
	delete(r.s.shifts, id)
	r.s.mu.Unlock()

	r.s.publish(repository.TableShifts, repository.ChangeDelete, nil, mustEncode(rowjson.EncodeShift(old)))
	return nil
}

// ── Time off ──────────────────────────────────────────────────────────────────

type TimeOffRepo struct{ s *Store }

func (r *TimeOffRepo) Create(_ context.Context, req *entity.TimeOffRequest) error {
	r.s.mu.Lock()
	if err := r.s.enter("time_off.Create"); err != nil {
		r.s.mu.Unlock()
		return err
	}
	if req.Status == "" {
		req.Status = entity.TimeOffPending
	}
	if req.SubmittedAt.IsZero() {
		req.SubmittedAt = time.Now()
	}
	r.s.requests[req.ID] = *req
	r.s.mu.Unlock()

	r.s.publish(repository.TableTimeOffRequests, repository.ChangeInsert, mustEncode(rowjson.EncodeTimeOff(*req)), nil)
	return nil
}

func (r *TimeOffRepo) GetByID(_ context.Context, id string) (*entity.TimeOffRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if req, ok := r.s.requests[id]; ok {
		return &req, nil
	}
	return nil, nil
}

func (r *TimeOffRepo) List(_ context.Context, f repository.TimeOffFilter) ([]entity.TimeOffRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("time_off.List"); err != nil {
		return nil, err
	}
	out := make([]entity.TimeOffRequest, 0, len(r.s.requests))
	for _, req := range r.s.requests {
		if f.EmployeeID != "" && req.EmployeeID != f.EmployeeID {
			continue
		}
		if f.Status != "" && req.Status != f.Status {
			continue
		}
		out = append(out, req)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].SubmittedAt.After(out[j].SubmittedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Decide replica el trigger de la base: solo pending → approved | denied.
func (r *TimeOffRepo) Decide(_ context.Context, id string, status entity.TimeOffStatus, by string, at time.Time) error {
	r.s.mu.Lock()
	if err := r.s.enter("time_off.Decide"); err != nil {
		r.s.mu.Unlock()
		return err
	}
	old, ok := r.s.requests[id]
	if !ok {
		r.s.mu.Unlock()
		return domain.ErrNotFound
	}
	next := old
	if err := next.Transition(status, by, at); err != nil {
		r.s.mu.Unlock()
		return err
	}
	r.s.requests[id] = next
	r.s.mu.Unlock()

	r.s.publish(repository.TableTimeOffRequests, repository.ChangeUpdate,
		mustEncode(rowjson.EncodeTimeOff(next)), mustEncode(rowjson.EncodeTimeOff(old)))
	return nil
}

// ── Balances ──────────────────────────────────────────────────────────────────

type BalanceRepo struct{ s *Store }

func (r *BalanceRepo) GetByEmployee(_ context.Context, employeeID string) (*entity.TimeOffBalance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if b, ok := r.s.balances[employeeID]; ok {
		return &b, nil
	}
	return nil, nil
}

func (r *BalanceRepo) List(_ context.Context) ([]entity.TimeOffBalance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("balances.List"); err != nil {
		return nil, err
	}
	out := make([]entity.TimeOffBalance, 0, len(r.s.balances))
	for _, b := range r.s.balances {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out, nil
}

// Upsert simula el proceso externo que mantiene los saldos.
func (r *BalanceRepo) Upsert(_ context.Context, b *entity.TimeOffBalance) error {
	r.s.mu.Lock()
	old, existed := r.s.balances[b.EmployeeID]
	b.UpdatedAt = time.Now()
	r.s.balances[b.EmployeeID] = *b
	r.s.mu.Unlock()

	if existed {
		r.s.publish(repository.TableTimeOffBalances, repository.ChangeUpdate,
			mustEncode(rowjson.EncodeBalance(*b)), mustEncode(rowjson.EncodeBalance(old)))
		return nil
	}
	r.s.publish(repository.TableTimeOffBalances, repository.ChangeInsert, mustEncode(rowjson.EncodeBalance(*b)), nil)
	return nil
}

// ── Messages ──────────────────────────────────────────────────────────────────

type MessageRepo struct{ s *Store }

func (r *MessageRepo) Create(_ context.Context, m *entity.Message) error {
	r.s.mu.Lock()
	if err := r.s.enter("messages.Create"); err != nil {
		r.s.mu.Unlock()
		return err
	}
	if _, ok := r.s.users[m.SenderID]; !ok {
		r.s.mu.Unlock()
		return domain.ErrUserNotFound
	}
	if _, ok := r.s.users[m.RecipientID]; !ok {
		r.s.mu.Unlock()
		return domain.ErrUserNotFound
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	r.s.messages = append(r.s.messages, *m)
	r.s.mu.Unlock()

	r.s.publish(repository.TableMessages, repository.ChangeInsert, mustEncode(rowjson.EncodeMessage(*m)), nil)
	return nil
}

func (r *MessageRepo) GetByID(_ context.Context, id string) (*entity.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.messages {
		if m.ID == id {
			return &m, nil
		}
	}
	return nil, nil
}

func (r *MessageRepo) ListForUser(_ context.Context, userID string) ([]entity.Message, error) {
	return r.filter("messages.ListForUser", func(m entity.Message) bool { return m.Involves(userID) })
}

func (r *MessageRepo) ListBetween(_ context.Context, userID, otherID string) ([]entity.Message, error) {
	return r.filter("messages.ListBetween", func(m entity.Message) bool {
		return (m.SenderID == userID && m.RecipientID == otherID) ||
			(m.SenderID == otherID && m.RecipientID == userID)
	})
}

// filter conserva el orden de inserción, que coincide con created_at ascendente.
func (r *MessageRepo) filter(op string, keep func(entity.Message) bool) ([]entity.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter(op); err != nil {
		return nil, err
	}
	var out []entity.Message
	for _, m := range r.s.messages {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *MessageRepo) MarkRead(_ context.Context, id, userID string, at time.Time) error {
	r.s.mu.Lock()
	if err := r.s.enter("messages.MarkRead"); err != nil {
		r.s.mu.Unlock()
		return err
	}
	for i, m := range r.s.messages {
		if m.ID != id {
			continue
		}
		if m.RecipientID != userID {
			r.s.mu.Unlock()
			return domain.ErrForbidden
		}
		if m.ReadAt != nil {
			r.s.mu.Unlock()
			return nil
		}
		next := m
		next.ReadAt = &at
		r.s.messages[i] = next
		r.s.mu.Unlock()

		r.s.publish(repository.TableMessages, repository.ChangeUpdate,
			mustEncode(rowjson.EncodeMessage(next)), mustEncode(rowjson.EncodeMessage(m)))
		return nil
	}
	r.s.mu.Unlock()
	return domain.ErrNotFound
}

func (r *MessageRepo) CountUnread(_ context.Context, userID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, m := range r.s.messages {
		if m.UnreadFor(userID) && !m.IsSelf() {
			n++
		}
	}
	return n, nil
}

// ── Analytics ─────────────────────────────────────────────────────────────────

type AnalyticsRepo struct{ s *Store }

func (r *AnalyticsRepo) GetHeadcountByDepartment(_ context.Context) ([]repository.DepartmentHeadcount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	byDept := map[string]*repository.DepartmentHeadcount{}
	for _, e := range r.s.employees {
		name := e.Department
		if name == "" {
			name = "Sin departamento"
		}
		row, ok := byDept[name]
		if !ok {
			row = &repository.DepartmentHeadcount{Department: name}
			byDept[name] = row
		}
		row.Total++
		if e.Status == entity.EmployeeActive {
			row.Active++
		}
	}
	out := make([]repository.DepartmentHeadcount, 0, len(byDept))
	for _, row := range byDept {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Department < out[j].Department
	})
	return out, nil
}

func (r *AnalyticsRepo) GetScheduledHoursByDay(_ context.Context) ([]repository.DayHours, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	byDay := map[int]*repository.DayHours{}
	for _, sh := range r.s.shifts {
		row, ok := byDay[sh.Day]
		if !ok {
			row = &repository.DayHours{Day: sh.Day, Hours: decimal.Zero}
			byDay[sh.Day] = row
		}
		row.Shifts++
		if sh.EndTime == nil {
			continue
		}
		secs := seconds(*sh.EndTime) - seconds(sh.StartTime)
		if secs < 0 {
			secs += 24 * 3600
		}
		row.Hours = row.Hours.Add(decimal.NewFromInt(int64(secs)).Div(decimal.NewFromInt(3600)))
	}
	out := make([]repository.DayHours, 0, len(byDay))
	for _, row := range byDay {
		row.Hours = row.Hours.Round(2)
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out, nil
}

func (r *AnalyticsRepo) GetTimeOffByStatus(_ context.Context) (map[string]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := map[string]int{"pending": 0, "approved": 0, "denied": 0}
	for _, req := range r.s.requests {
		out[string(req.Status)]++
	}
	return out, nil
}

func (r *AnalyticsRepo) GetSystemStats(_ context.Context) (*repository.SystemStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("analytics.GetSystemStats"); err != nil {
		return nil, err
	}
	st := &repository.SystemStats{
		TotalUsers:     len(r.s.users),
		TotalEmployees: len(r.s.employees),
		TotalShifts:    len(r.s.shifts),
		TotalMessages:  len(r.s.messages),
		RoleCounts:     map[string]int{},
	}
	for _, e := range r.s.employees {
		if e.Status == entity.EmployeeActive {
			st.ActiveEmployees++
		}
	}
	for _, req := range r.s.requests {
		if req.Status == entity.TimeOffPending {
			st.PendingTimeOff++
		}
	}
	for _, m := range r.s.messages {
		if m.ReadAt == nil {
			st.UnreadMessages++
		}
	}
	for _, roles := range r.s.roles {
		for _, role := range roles {
			st.RoleCounts[role]++
		}
	}
	return st, nil
}

// seconds convierte "HH:MM[:SS]" a segundos desde medianoche.
func seconds(v string) int {
	total := 0
	mult := []int{3600, 60, 1}
	for i, p := range strings.Split(v, ":") {
		if i >= len(mult) {
			break
		}
		n, _ := strconv.Atoi(p)
		total += n * mult[i]
	}
	return total
}
