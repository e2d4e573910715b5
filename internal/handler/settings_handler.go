package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"industry-console/internal/cms"
	"industry-console/internal/store"
)

// GetSettings returns the stored content document for industry. An
// industry that was never saved gets its default document.
func (h *Handler) GetSettings(ctx context.Context, industry string) (json.RawMessage, error) {
	if industry == "" {
		return nil, status.Error(codes.InvalidArgument, "industry required")
	}
	doc, err := h.store.GetSettings(ctx, industry)
	if errors.Is(err, store.ErrNotFound) {
		def, err := json.Marshal(cms.Defaults(industry))
		if err != nil {
			return nil, status.Error(codes.Internal, "internal error")
		}
		return def, nil
	}
	if err != nil {
		h.log.Error("get settings", zap.String("industry", industry), zap.Error(err))
		return nil, status.Error(codes.Internal, "internal error")
	}
	return doc, nil
}

// SaveSettings replaces the whole document for industry. The body may be
// the document itself or wrapped as {"data": document}. Overlapping saves
// are not ordered: the last one to reach the store wins.
func (h *Handler) SaveSettings(ctx context.Context, industry string, body []byte, idemKey string) (json.RawMessage, error) {
	if industry == "" {
		return nil, status.Error(codes.InvalidArgument, "industry required")
	}
	doc, err := unwrapDocument(body)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "document must be a JSON object")
	}
	if err := h.store.PutSettings(ctx, industry, doc); err != nil {
		h.log.Error("save settings", zap.String("industry", industry), zap.Error(err))
		return nil, status.Error(codes.Internal, "internal error")
	}
	h.log.Info("settings saved",
		zap.String("industry", industry),
		zap.String("idempotency_key", idemKey),
		zap.Int("bytes", len(doc)))
	return doc, nil
}

func unwrapDocument(body []byte) ([]byte, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil || top == nil {
		return nil, errors.New("not an object")
	}
	if inner, ok := top["data"]; ok && len(top) == 1 {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(inner, &obj); err != nil || obj == nil {
			return nil, errors.New("not an object")
		}
		body = inner
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, body); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
