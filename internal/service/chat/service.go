package chat

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/finalyzer/support/backend/internal/service/history"
	profilesvc "github.com/finalyzer/support/backend/internal/service/profile"
	"github.com/finalyzer/support/backend/internal/service/reply"
	"github.com/finalyzer/support/backend/internal/storage"
)

// DefaultReplyTimeout bounds how long a pipeline waits for one reply.
const DefaultReplyTimeout = 2 * time.Minute

// Service hands out per-visitor pipelines and stores. Pipelines idle for
// longer than the ttl are dropped and rebuilt from storage on next use.
type Service struct {
	store        storage.Store
	replier      reply.Replier
	logger       logrus.FieldLogger
	now          func() time.Time
	replyTimeout time.Duration

	mu        sync.Mutex
	pipelines *cache.Cache
}

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides time.Now for message and session timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithReplyTimeout bounds each reply request; zero or less keeps
// DefaultReplyTimeout.
func WithReplyTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.replyTimeout = d
		}
	}
}

// NewService bootstraps the chat service; ttl of zero keeps pipelines forever.
func NewService(store storage.Store, replier reply.Replier, logger logrus.FieldLogger, ttl time.Duration, opts ...Option) *Service {
	s := &Service{
		store:        store,
		replier:      replier,
		logger:       logger,
		now:          time.Now,
		replyTimeout: DefaultReplyTimeout,
		pipelines:    cache.New(ttl, ttl/2),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Profiles returns the visitor's profile store.
func (s *Service) Profiles(visitor string) *profilesvc.Store {
	return profilesvc.NewStore(storage.Scoped(s.store, visitor), s.visitorLogger(visitor))
}

// History returns the visitor's session history store.
func (s *Service) History(visitor string) *history.Store {
	return history.NewStore(storage.Scoped(s.store, visitor), s.visitorLogger(visitor), s.now)
}

// HasProfile reports whether the visitor has completed the form.
func (s *Service) HasProfile(ctx context.Context, visitor string) bool {
	_, ok := s.Profiles(visitor).Load(ctx)
	return ok
}

// Pipeline returns the visitor's pipeline, creating it on first use.
func (s *Service) Pipeline(visitor string) *Pipeline {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.pipelines.Get(visitor); ok {
		s.pipelines.SetDefault(visitor, v)
		return v.(*Pipeline)
	}

	pipeline := NewPipeline(s.Profiles(visitor), s.History(visitor), s.replier, s.visitorLogger(visitor), s.now)
	pipeline.replyTimeout = s.replyTimeout
	s.pipelines.SetDefault(visitor, pipeline)
	return pipeline
}

// Logout clears the visitor's profile and current-session pointer and drops
// the pipeline. Stored sessions are kept.
func (s *Service) Logout(ctx context.Context, visitor string) error {
	s.Forget(visitor)
	return s.Profiles(visitor).Clear(ctx)
}

// Forget drops the visitor's in-memory pipeline, e.g. after logout.
func (s *Service) Forget(visitor string) {
	s.pipelines.Delete(visitor)
}

func (s *Service) visitorLogger(visitor string) logrus.FieldLogger {
	return s.logger.WithField("visitor", visitor)
}
