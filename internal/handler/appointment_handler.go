package handler

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"industry-console/internal/model"
	"industry-console/internal/store"
)

const (
	defaultListLimit = 100
	maxListLimit     = 500

	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

func validDate(s string) bool {
	_, err := time.Parse(dateLayout, s)
	return err == nil
}

func (h *Handler) ListAppointments(ctx context.Context, f model.AppointmentFilter) ([]model.Appointment, error) {
	if f.StartDate != "" && !validDate(f.StartDate) {
		return nil, status.Error(codes.InvalidArgument, "start_date must be YYYY-MM-DD")
	}
	if f.EndDate != "" && !validDate(f.EndDate) {
		return nil, status.Error(codes.InvalidArgument, "end_date must be YYYY-MM-DD")
	}
	if f.StartDate != "" && f.EndDate != "" && f.EndDate < f.StartDate {
		return nil, status.Error(codes.InvalidArgument, "end_date before start_date")
	}
	if f.Status != "" && !model.ValidStatus(f.Status) {
		return nil, status.Error(codes.InvalidArgument, "unknown status")
	}
	switch {
	case f.Limit <= 0:
		f.Limit = defaultListLimit
	case f.Limit > maxListLimit:
		f.Limit = maxListLimit
	}

	apts, err := h.store.ListAppointments(ctx, f)
	if err != nil {
		h.log.Error("list appointments", zap.Error(err))
		return nil, status.Error(codes.Internal, "internal error")
	}
	return apts, nil
}

func (h *Handler) CreateAppointment(ctx context.Context, req model.BookingRequest) (*model.Appointment, error) {
	if err := req.Validate(); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if !validDate(req.AppointmentDate) {
		return nil, status.Error(codes.InvalidArgument, "appointment_date must be YYYY-MM-DD")
	}
	start, err := time.Parse(timeLayout, req.StartTime)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "start_time must be HH:MM")
	}

	svc, err := h.store.GetService(ctx, req.ServiceID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, status.Error(codes.InvalidArgument, "unknown service")
	} else if err != nil {
		h.log.Error("lookup service", zap.String("service_id", req.ServiceID), zap.Error(err))
		return nil, status.Error(codes.Internal, "internal error")
	}

	apt := &model.Appointment{
		ID:              uuid.New().String(),
		AppointmentDate: req.AppointmentDate,
		StartTime:       start.Format(timeLayout),
		Status:          model.StatusPending,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerEmail:   req.CustomerEmail,
		ServiceID:       svc.ID,
		ServiceName:     svc.Name,
		Notes:           req.Notes,
	}
	if svc.DurationMinutes > 0 {
		apt.EndTime = start.Add(time.Duration(svc.DurationMinutes) * time.Minute).Format(timeLayout)
	}

	// no staff means "any available"
	if req.StaffID != "" {
		st, err := h.store.GetStaff(ctx, req.StaffID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, status.Error(codes.InvalidArgument, "unknown staff member")
		} else if err != nil {
			h.log.Error("lookup staff", zap.String("staff_id", req.StaffID), zap.Error(err))
			return nil, status.Error(codes.Internal, "internal error")
		}
		apt.StaffID, apt.StaffName = st.ID, st.Name
	}

	if err := h.store.CreateAppointment(ctx, apt); err != nil {
		h.log.Error("create appointment", zap.Error(err))
		return nil, status.Error(codes.Internal, "internal error")
	}
	h.log.Info("appointment created",
		zap.String("id", apt.ID),
		zap.String("date", apt.AppointmentDate),
		zap.String("start", apt.StartTime))
	return apt, nil
}

func (h *Handler) GetAppointment(ctx context.Context, id string) (*model.Appointment, error) {
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "id required")
	}
	apt, err := h.store.GetAppointment(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, status.Error(codes.NotFound, "not found")
	} else if err != nil {
		h.log.Error("get appointment", zap.String("id", id), zap.Error(err))
		return nil, status.Error(codes.Internal, "internal error")
	}
	return apt, nil
}

// UpdateAppointmentStatus moves an appointment to one of the five statuses
// and returns the updated record.
func (h *Handler) UpdateAppointmentStatus(ctx context.Context, id, st string) (*model.Appointment, error) {
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "id required")
	}
	if !model.ValidStatus(st) {
		return nil, status.Error(codes.InvalidArgument, "unknown status")
	}
	err := h.store.UpdateAppointmentStatus(ctx, id, st)
	if errors.Is(err, store.ErrNotFound) {
		return nil, status.Error(codes.NotFound, "not found")
	} else if err != nil {
		h.log.Error("update status", zap.String("id", id), zap.Error(err))
		return nil, status.Error(codes.Internal, "internal error")
	}
	return h.GetAppointment(ctx, id)
}
