package console

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"industry-console/internal/cms"
)

// SettingsAPI is the slice of the backend the content editor needs.
type SettingsAPI interface {
	GetSettings(ctx context.Context, industry string) (json.RawMessage, error)
	SaveSettings(ctx context.Context, industry string, doc cms.Document, idemKey string) error
}

// EditorSession binds a cms.Editor to the backend. Loads are tagged with a
// generation number so a response for an industry the user has already
// left is dropped. Saves are not serialized against each other.
type EditorSession struct {
	api    SettingsAPI
	log    *zap.Logger
	notify Notifier

	mu     sync.Mutex
	editor *cms.Editor
	gen    uint64
	saving int
}

func NewEditorSession(a SettingsAPI, industry string, log *zap.Logger, n Notifier) *EditorSession {
	if log == nil {
		log = zap.NewNop()
	}
	if n == nil {
		n = LogNotifier{Log: log}
	}
	return &EditorSession{api: a, log: log, notify: n, editor: cms.NewEditor(industry)}
}

// Load fetches the industry's document and merges it over the defaults.
// A failed or malformed fetch leaves the defaults in place; it is logged,
// never returned. The result reports whether the response was applied.
func (s *EditorSession) Load(ctx context.Context) bool {
	s.mu.Lock()
	s.gen++
	tok := s.gen
	industry := s.editor.Industry()
	s.mu.Unlock()

	raw, err := s.api.GetSettings(ctx, industry)

	s.mu.Lock()
	defer s.mu.Unlock()
	if tok != s.gen {
		s.log.Debug("dropping stale settings response", zap.String("industry", industry))
		return false
	}
	if err != nil {
		s.log.Warn("load settings", zap.String("industry", industry), zap.Error(err))
		return false
	}
	doc, err := cms.Merge(cms.Defaults(industry), raw)
	if err != nil {
		s.log.Warn("malformed settings", zap.String("industry", industry), zap.Error(err))
	}
	s.editor.Replace(doc)
	return true
}

// SwitchIndustry starts a fresh editor on industry (active section back to
// hero) and loads its document.
func (s *EditorSession) SwitchIndustry(ctx context.Context, industry string) bool {
	s.mu.Lock()
	s.editor = cms.NewEditor(industry)
	s.mu.Unlock()
	return s.Load(ctx)
}

// Edit runs fn against the editor under the session lock.
func (s *EditorSession) Edit(fn func(e *cms.Editor)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.editor)
}

func (s *EditorSession) Document() cms.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.Document()
}

func (s *EditorSession) Industry() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.Industry()
}

// Saving reports whether at least one save is in flight.
func (s *EditorSession) Saving() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saving > 0
}

// Save sends the whole in-memory document. On failure the local state is
// left as it was so the user can retry.
func (s *EditorSession) Save(ctx context.Context) error {
	s.mu.Lock()
	industry := s.editor.Industry()
	doc := s.editor.Document()
	s.saving++
	s.mu.Unlock()

	key := uuid.NewString()
	err := s.api.SaveSettings(ctx, industry, doc, key)

	s.mu.Lock()
	s.saving--
	s.mu.Unlock()

	if err != nil {
		s.log.Error("save settings", zap.String("industry", industry), zap.String("idempotency_key", key), zap.Error(err))
		s.notify.Notify(Notification{Level: LevelError, Message: "Failed to save changes"})
		return err
	}
	s.notify.Notify(Notification{Level: LevelSuccess, Message: "Changes saved"})
	return nil
}
