package handler

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"industry-console/internal/auth"
	"industry-console/internal/model"
	"industry-console/internal/store"
)

// Session is what a successful register, login or refresh hands back. The
// refresh token travels in a cookie, never in a response body.
type Session struct {
	UserID         string    `json:"user_id"`
	Name           string    `json:"name"`
	Token          string    `json:"token"`
	RefreshToken   string    `json:"-"`
	RefreshExpires time.Time `json:"-"`
}

func (h *Handler) issue(ctx context.Context, u *model.User) (*Session, error) {
	tok, err := auth.MakeToken(u.ID, u.Name, h.secret)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	raw, hash, err := auth.GenerateRefreshToken()
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	exp := time.Now().Add(auth.RefreshTTL)
	if _, err := h.store.CreateRefreshToken(ctx, u.ID, hash, exp); err != nil {
		h.log.Error("store refresh token", zap.Error(err))
		return nil, status.Error(codes.Internal, "internal error")
	}
	return &Session{UserID: u.ID, Name: u.Name, Token: tok, RefreshToken: raw, RefreshExpires: exp}, nil
}

func (h *Handler) Register(ctx context.Context, email, password, name string) (*Session, error) {
	if email == "" || password == "" || name == "" {
		return nil, status.Error(codes.InvalidArgument, "all fields required")
	}
	if len(password) < 8 {
		return nil, status.Error(codes.InvalidArgument, "password too short")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}

	u := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		Name:         name,
	}
	if err := h.store.CreateUser(ctx, u); err != nil {
		// unique violation = dup email, but don't reveal that
		return nil, status.Error(codes.AlreadyExists, "registration failed")
	}
	return h.issue(ctx, u)
}

func (h *Handler) Login(ctx context.Context, email, password string) (*Session, error) {
	if email == "" || password == "" {
		return nil, status.Error(codes.InvalidArgument, "email and password required")
	}
	u, err := h.store.UserByEmail(ctx, email)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "invalid credentials")
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, status.Error(codes.Unauthenticated, "invalid credentials")
	}
	return h.issue(ctx, u)
}

// Refresh rotates a refresh token. Presenting an already-rotated token
// revokes every token of that user.
func (h *Handler) Refresh(ctx context.Context, raw string) (*Session, error) {
	if raw == "" {
		return nil, status.Error(codes.Unauthenticated, "no refresh token")
	}
	rt, err := h.store.GetRefreshTokenByHash(ctx, auth.HashRefreshToken(raw))
	if errors.Is(err, store.ErrNotFound) {
		return nil, status.Error(codes.Unauthenticated, "invalid refresh token")
	} else if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	if rt.Revoked {
		h.log.Warn("refresh token reuse", zap.String("user_id", rt.UserID))
		_ = h.store.RevokeAllRefreshTokens(ctx, rt.UserID)
		return nil, status.Error(codes.Unauthenticated, "invalid refresh token")
	}
	if time.Now().After(rt.ExpiresAt) {
		return nil, status.Error(codes.Unauthenticated, "refresh token expired")
	}

	u, err := h.store.UserByID(ctx, rt.UserID)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "invalid refresh token")
	}

	newRaw, newHash, err := auth.GenerateRefreshToken()
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	newID := uuid.New().String()
	exp := time.Now().Add(auth.RefreshTTL)
	if err := h.store.RotateRefreshToken(ctx, rt.ID, newID, u.ID, newHash, exp); err != nil {
		h.log.Error("rotate refresh token", zap.Error(err))
		return nil, status.Error(codes.Internal, "internal error")
	}
	tok, err := auth.MakeToken(u.ID, u.Name, h.secret)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	return &Session{UserID: u.ID, Name: u.Name, Token: tok, RefreshToken: newRaw, RefreshExpires: exp}, nil
}

func (h *Handler) Logout(ctx context.Context, userID string) error {
	if err := h.store.RevokeAllRefreshTokens(ctx, userID); err != nil {
		return status.Error(codes.Internal, "internal error")
	}
	return nil
}
