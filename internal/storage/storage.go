// Package storage keeps per-visitor key/value records: the profile, the
// serialized session history and the current-session pointer that a browser
// would otherwise hold in local storage.
package storage

import (
	"context"
	"errors"
	"fmt"
)

var ErrUnknownDriver = errors.New("unknown storage driver")

// Keys used inside a visitor namespace.
const (
	KeyProfile        = "userProfile"
	KeySessions       = "chatSessions"
	KeyCurrentSession = "currentSessionId"
)

// Store is a namespaced key/value store. A namespace is one visitor.
type Store interface {
	Get(ctx context.Context, namespace, key string) (string, bool, error)
	Set(ctx context.Context, namespace, key, value string) error
	Delete(ctx context.Context, namespace, key string) error
	Close() error
}

// KV is a Store bound to a single namespace.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

type scoped struct {
	store     Store
	namespace string
}

// Scoped binds store to namespace.
func Scoped(store Store, namespace string) KV {
	return &scoped{store: store, namespace: namespace}
}

func (s *scoped) Get(ctx context.Context, key string) (string, bool, error) {
	return s.store.Get(ctx, s.namespace, key)
}

func (s *scoped) Set(ctx context.Context, key, value string) error {
	return s.store.Set(ctx, s.namespace, key, value)
}

func (s *scoped) Delete(ctx context.Context, key string) error {
	return s.store.Delete(ctx, s.namespace, key)
}

// Open returns the store for driver ("memory" or "sqlite").
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return OpenSQLite(ctx, dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}
