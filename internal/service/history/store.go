package history

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/finalyzer/support/backend/internal/model/chat"
	"github.com/finalyzer/support/backend/internal/storage"
)

// Store owns the durable session collection of one visitor. All writes go
// through Upsert and rewrite the whole collection.
type Store struct {
	kv     storage.KV
	logger logrus.FieldLogger
	now    func() time.Time
}

// NewStore binds a history store to a visitor's key/value space.
func NewStore(kv storage.KV, logger logrus.FieldLogger, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{kv: kv, logger: logger, now: now}
}

// LoadAll returns the persisted sessions in storage order. Read and parse
// failures are logged and yield an empty collection.
func (s *Store) LoadAll(ctx context.Context) []chat.Session {
	raw, ok, err := s.kv.Get(ctx, storage.KeySessions)
	if err != nil {
		s.logger.WithError(err).Warn("failed to read chat sessions")
		return []chat.Session{}
	}
	if !ok || raw == "" {
		return []chat.Session{}
	}

	var sessions []chat.Session
	if err := json.Unmarshal([]byte(raw), &sessions); err != nil {
		s.logger.WithError(err).Warn("failed to parse saved sessions")
		return []chat.Session{}
	}
	if sessions == nil {
		sessions = []chat.Session{}
	}
	return sessions
}

// Find looks up a session by id.
func (s *Store) Find(ctx context.Context, id string) (chat.Session, bool) {
	for _, session := range s.LoadAll(ctx) {
		if session.ID == id {
			return session, true
		}
	}
	return chat.Session{}, false
}

// Upsert replaces the messages of session id, or appends a new session
// created now.
func (s *Store) Upsert(ctx context.Context, id string, messages []chat.Message) error {
	sessions := s.LoadAll(ctx)
	copied := append([]chat.Message(nil), messages...)

	found := false
	for i := range sessions {
		if sessions[i].ID == id {
			sessions[i].Messages = copied
			found = true
			break
		}
	}
	if !found {
		sessions = append(sessions, chat.Session{
			ID:        id,
			Messages:  copied,
			CreatedAt: s.now(),
		})
	}

	data, err := json.Marshal(sessions)
	if err != nil {
		return fmt.Errorf("failed to encode chat sessions: %w", err)
	}
	if err := s.kv.Set(ctx, storage.KeySessions, string(data)); err != nil {
		return fmt.Errorf("failed to save chat sessions: %w", err)
	}
	return nil
}

// CurrentSessionID returns the pointer used to resume a session.
func (s *Store) CurrentSessionID(ctx context.Context) (string, bool) {
	id, ok, err := s.kv.Get(ctx, storage.KeyCurrentSession)
	if err != nil {
		s.logger.WithError(err).Warn("failed to read current session id")
		return "", false
	}
	return id, ok && id != ""
}

func (s *Store) SetCurrentSessionID(ctx context.Context, id string) error {
	if err := s.kv.Set(ctx, storage.KeyCurrentSession, id); err != nil {
		return fmt.Errorf("failed to set current session id: %w", err)
	}
	return nil
}

func (s *Store) ClearCurrentSessionID(ctx context.Context) error {
	if err := s.kv.Delete(ctx, storage.KeyCurrentSession); err != nil {
		return fmt.Errorf("failed to clear current session id: %w", err)
	}
	return nil
}

// SortByRecency orders sessions newest first. Equal timestamps keep their
// storage order.
func SortByRecency(sessions []chat.Session) []chat.Session {
	sorted := append([]chat.Session(nil), sessions...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	return sorted
}
