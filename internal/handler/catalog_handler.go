package handler

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"industry-console/internal/model"
)

func (h *Handler) ListStaff(ctx context.Context, active *bool) ([]model.Staff, error) {
	out, err := h.store.ListStaff(ctx, active)
	if err != nil {
		h.log.Error("list staff", zap.Error(err))
		return nil, status.Error(codes.Internal, "internal error")
	}
	return out, nil
}

func (h *Handler) CreateStaff(ctx context.Context, st model.Staff) (*model.Staff, error) {
	if st.Name == "" {
		return nil, status.Error(codes.InvalidArgument, "name required")
	}
	st.ID = uuid.New().String()
	if err := h.store.CreateStaff(ctx, &st); err != nil {
		h.log.Error("create staff", zap.Error(err))
		return nil, status.Error(codes.Internal, "internal error")
	}
	return &st, nil
}

func (h *Handler) ListServices(ctx context.Context, active *bool) ([]model.Service, error) {
	out, err := h.store.ListServices(ctx, active)
	if err != nil {
		h.log.Error("list services", zap.Error(err))
		return nil, status.Error(codes.Internal, "internal error")
	}
	return out, nil
}

func (h *Handler) CreateService(ctx context.Context, sv model.Service) (*model.Service, error) {
	if sv.Name == "" {
		return nil, status.Error(codes.InvalidArgument, "name required")
	}
	if sv.DurationMinutes < 0 || sv.Price < 0 {
		return nil, status.Error(codes.InvalidArgument, "duration and price must not be negative")
	}
	if sv.DurationMinutes == 0 {
		sv.DurationMinutes = 60
	}
	sv.ID = uuid.New().String()
	if err := h.store.CreateService(ctx, &sv); err != nil {
		h.log.Error("create service", zap.Error(err))
		return nil, status.Error(codes.Internal, "internal error")
	}
	return &sv, nil
}
