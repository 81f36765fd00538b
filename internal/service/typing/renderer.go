// Package typing paces the display of AI replies word by word. It is purely
// cosmetic: persisted messages always hold the complete text.
package typing

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/finalyzer/support/backend/internal/model/chat"
)

var (
	ErrSuperseded       = errors.New("reveal superseded by a newer message")
	ErrAlreadyRevealing = errors.New("message is already being revealed")
	ErrStopped          = errors.New("renderer stopped")
)

// Frame is one step of a reveal. Text is a prefix of the message text; the
// frame with Done set carries the whole text.
type Frame struct {
	MessageID string `json:"messageId"`
	Text      string `json:"text"`
	Done      bool   `json:"done"`
}

// Renderer reveals at most one message at a time.
type Renderer struct {
	interval time.Duration

	mu     sync.Mutex
	active *reveal
}

type reveal struct {
	id     string
	cancel context.CancelCauseFunc
}

// NewRenderer reveals one more word every interval.
func NewRenderer(interval time.Duration) *Renderer {
	return &Renderer{interval: interval}
}

// Reveal blocks while emitting frames for msg. Starting a reveal for another
// message cancels this one with ErrSuperseded.
func (r *Renderer) Reveal(ctx context.Context, msg chat.Message, emit func(Frame)) error {
	ctx, cancel := context.WithCancelCause(ctx)

	r.mu.Lock()
	if r.active != nil {
		if r.active.id == msg.ID {
			r.mu.Unlock()
			cancel(nil)
			return ErrAlreadyRevealing
		}
		r.active.cancel(ErrSuperseded)
	}
	current := &reveal{id: msg.ID, cancel: cancel}
	r.active = current
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		if r.active == current {
			r.active = nil
		}
		r.mu.Unlock()
		cancel(nil)
	}()

	it := NewIterator(msg.Text)
	total := it.Len()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for step := 1; ; step++ {
		if err := context.Cause(ctx); err != nil {
			return err
		}

		text, _ := it.Next()
		emit(Frame{MessageID: msg.ID, Text: text, Done: step == total})
		if step == total {
			return nil
		}

		select {
		case <-ctx.Done():
			return context.Cause(ctx)
		case <-ticker.C:
		}
	}
}

// Stop abandons the current reveal, if any.
func (r *Renderer) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active != nil {
		r.active.cancel(ErrStopped)
		r.active = nil
	}
}

// Registry hands out one renderer per visitor. Idle renderers expire after
// ttl and are stopped on eviction.
type Registry struct {
	interval time.Duration

	mu    sync.Mutex
	cache *cache.Cache
}

// NewRegistry builds a registry; ttl of zero keeps renderers forever.
func NewRegistry(interval, ttl time.Duration) *Registry {
	c := cache.New(ttl, ttl/2)
	c.OnEvicted(func(_ string, v interface{}) {
		if renderer, ok := v.(*Renderer); ok {
			renderer.Stop()
		}
	})
	return &Registry{interval: interval, cache: c}
}

// For returns the visitor's renderer, refreshing its expiry.
func (r *Registry) For(visitor string) *Renderer {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := r.cache.Get(visitor); ok {
		r.cache.SetDefault(visitor, v)
		return v.(*Renderer)
	}
	renderer := NewRenderer(r.interval)
	r.cache.SetDefault(visitor, renderer)
	return renderer
}

// Remove stops and forgets the visitor's renderer.
func (r *Registry) Remove(visitor string) {
	r.cache.Delete(visitor)
}
