// Package handler implements the backend operations behind both the REST
// routes and the gRPC service. Operations return gRPC status errors; the
// REST layer maps their codes onto HTTP statuses.
package handler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"industry-console/internal/model"
	"industry-console/internal/store"
)

// Store is implemented by store.Store (Postgres) and store.Lite (SQLite).
type Store interface {
	Ping(ctx context.Context) error

	GetSettings(ctx context.Context, industry string) ([]byte, error)
	PutSettings(ctx context.Context, industry string, doc []byte) error

	CreateAppointment(ctx context.Context, a *model.Appointment) error
	ListAppointments(ctx context.Context, f model.AppointmentFilter) ([]model.Appointment, error)
	GetAppointment(ctx context.Context, id string) (*model.Appointment, error)
	UpdateAppointmentStatus(ctx context.Context, id, status string) error

	ListStaff(ctx context.Context, active *bool) ([]model.Staff, error)
	GetStaff(ctx context.Context, id string) (*model.Staff, error)
	CreateStaff(ctx context.Context, st *model.Staff) error
	ListServices(ctx context.Context, active *bool) ([]model.Service, error)
	GetService(ctx context.Context, id string) (*model.Service, error)
	CreateService(ctx context.Context, sv *model.Service) error

	CreateUser(ctx context.Context, u *model.User) error
	UserByEmail(ctx context.Context, email string) (*model.User, error)
	UserByID(ctx context.Context, id string) (*model.User, error)
	CreateRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) (string, error)
	GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*store.RefreshToken, error)
	RotateRefreshToken(ctx context.Context, oldID, newID, userID, newHash string, newExpiry time.Time) error
	RevokeAllRefreshTokens(ctx context.Context, userID string) error
}

type Handler struct {
	store  Store
	secret string
	log    *zap.Logger
}

func New(st Store, secret string, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{store: st, secret: secret, log: log}
}

func (h *Handler) Health(ctx context.Context) error {
	return h.store.Ping(ctx)
}
