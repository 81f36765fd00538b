package profile

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/finalyzer/support/backend/internal/model/profile"
	"github.com/finalyzer/support/backend/internal/storage"
)

// Store reads and writes the single profile record of one visitor.
type Store struct {
	kv     storage.KV
	logger logrus.FieldLogger
}

// NewStore binds a profile store to a visitor's key/value space.
func NewStore(kv storage.KV, logger logrus.FieldLogger) *Store {
	return &Store{kv: kv, logger: logger}
}

// Load returns the stored profile. Missing and unreadable records both
// report false; the latter is logged.
func (s *Store) Load(ctx context.Context) (profile.UserProfile, bool) {
	raw, ok, err := s.kv.Get(ctx, storage.KeyProfile)
	if err != nil {
		s.logger.WithError(err).Warn("failed to read user profile")
		return profile.UserProfile{}, false
	}
	if !ok {
		return profile.UserProfile{}, false
	}

	var p profile.UserProfile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		s.logger.WithError(err).Warn("stored user profile is not valid JSON")
		return profile.UserProfile{}, false
	}
	return p, true
}

// Save overwrites the stored record.
func (s *Store) Save(ctx context.Context, p profile.UserProfile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode user profile: %w", err)
	}
	if err := s.kv.Set(ctx, storage.KeyProfile, string(data)); err != nil {
		return fmt.Errorf("failed to save user profile: %w", err)
	}
	return nil
}

// Clear removes the profile and the current-session pointer, so the next
// visit starts a new session.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, storage.KeyProfile); err != nil {
		return fmt.Errorf("failed to clear user profile: %w", err)
	}
	if err := s.kv.Delete(ctx, storage.KeyCurrentSession); err != nil {
		return fmt.Errorf("failed to clear current session: %w", err)
	}
	return nil
}
