package usecase

import (
	"github.com/jhoicas/Turnos-api/internal/application/dto"
	"github.com/jhoicas/Turnos-api/internal/domain/entity"
)

func toEmployeeResponse(e *entity.Employee) *dto.EmployeeResponse {
	if e == nil {
		return nil
	}
	return &dto.EmployeeResponse{
		ID:         e.ID,
		FirstName:  e.FirstName,
		LastName:   e.LastName,
		FullName:   e.FullName(),
		Email:      e.Email,
		Department: e.Department,
		Position:   e.Position,
		Status:     e.Status,
		HireDate:   e.HireDate.Format(dateLayout),
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}

func toShiftResponse(s *entity.Shift) *dto.ShiftResponse {
	return &dto.ShiftResponse{
		ID:         s.ID,
		EmployeeID: s.EmployeeID,
		CreatedBy:  s.CreatedBy,
		Type:       s.Type,
		Day:        s.Day,
		StartTime:  s.StartTime,
		EndTime:    s.EndTime,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}

func toTimeOffResponse(r *entity.TimeOffRequest) *dto.TimeOffResponse {
	return &dto.TimeOffResponse{
		ID:          r.ID,
		EmployeeID:  r.EmployeeID,
		UserID:      r.UserID,
		Type:        r.Type,
		StartDate:   r.StartDate.Format(dateLayout),
		EndDate:     r.EndDate.Format(dateLayout),
		Days:        r.Days(),
		Reason:      r.Reason,
		Status:      string(r.Status),
		SubmittedAt: r.SubmittedAt,
		DecidedAt:   r.DecidedAt,
		DecidedBy:   r.DecidedBy,
	}
}

func toBalanceResponse(b *entity.TimeOffBalance) *dto.BalanceResponse {
	return &dto.BalanceResponse{
		EmployeeID:   b.EmployeeID,
		VacationDays: b.VacationDays,
		SickDays:     b.SickDays,
		PersonalDays: b.PersonalDays,
		UpdatedAt:    b.UpdatedAt,
	}
}

func toMessageResponse(m *entity.Message) *dto.MessageResponse {
	return &dto.MessageResponse{
		ID:          m.ID,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		Content:     m.Content,
		CreatedAt:   m.CreatedAt,
		ReadAt:      m.ReadAt,
	}
}

func toUserResponse(u *entity.User, profile *entity.UserProfile, roles []string) *dto.UserResponse {
	out := &dto.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Status:    u.Status,
		Roles:     roles,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if out.Roles == nil {
		out.Roles = []string{}
	}
	if profile != nil {
		out.EmployeeID = profile.EmployeeID
	}
	return out
}
