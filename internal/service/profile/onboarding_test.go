package profile_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finalyzer/support/backend/internal/logging"
	model "github.com/finalyzer/support/backend/internal/model/profile"
	"github.com/finalyzer/support/backend/internal/service/profile"
	"github.com/finalyzer/support/backend/internal/service/webhook"
	"github.com/finalyzer/support/backend/internal/storage"
)

type registrarFunc func(ctx context.Context, p model.UserProfile) error

func (f registrarFunc) Register(ctx context.Context, p model.UserProfile) error { return f(ctx, p) }

func TestOnboardingSavesNormalizedProfile(t *testing.T) {
	ctx := context.Background()
	store := profile.NewStore(storage.Scoped(storage.NewMemoryStore(), "v1"), logging.Discard())

	var registered model.UserProfile
	onboarding := profile.NewOnboarding(registrarFunc(func(_ context.Context, p model.UserProfile) error {
		registered = p
		return nil
	}), logging.Discard())

	got, err := onboarding.Submit(ctx, store, model.UserProfile{
		Name: "  Ada ", Email: "ada@example.com", Industry: "Finance", Organization: "AE",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Name)
	assert.Equal(t, got, registered)

	stored, ok := store.Load(ctx)
	require.True(t, ok)
	assert.Equal(t, got, stored)
}

func TestOnboardingRejectsIncompleteForm(t *testing.T) {
	store := profile.NewStore(storage.Scoped(storage.NewMemoryStore(), "v1"), logging.Discard())
	called := false
	onboarding := profile.NewOnboarding(registrarFunc(func(context.Context, model.UserProfile) error {
		called = true
		return nil
	}), logging.Discard())

	_, err := onboarding.Submit(context.Background(), store, model.UserProfile{Name: "Ada"})
	assert.ErrorIs(t, err, model.ErrIncomplete)
	assert.False(t, called)
}

func TestOnboardingSignupErrorsKeepStoreEmpty(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{name: "unreachable", err: errors.New("connection refused"), want: profile.ErrSignupFailed},
		{name: "rejected", err: fmt.Errorf("%w: status 500", webhook.ErrSignupRejected), want: profile.ErrSignupRejected},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			store := profile.NewStore(storage.Scoped(storage.NewMemoryStore(), "v1"), logging.Discard())
			onboarding := profile.NewOnboarding(registrarFunc(func(context.Context, model.UserProfile) error {
				return tc.err
			}), logging.Discard())

			_, err := onboarding.Submit(ctx, store, model.UserProfile{
				Name: "Ada", Email: "ada@example.com", Industry: "Finance", Organization: "AE",
			})
			assert.ErrorIs(t, err, tc.want)

			_, ok := store.Load(ctx)
			assert.False(t, ok)
		})
	}
}

func TestOnboardingWithoutRegistrar(t *testing.T) {
	store := profile.NewStore(storage.Scoped(storage.NewMemoryStore(), "v1"), logging.Discard())
	_, err := profile.NewOnboarding(nil, logging.Discard()).Submit(context.Background(), store, model.UserProfile{
		Name: "Ada", Email: "ada@example.com", Industry: "Finance", Organization: "AE",
	})
	assert.NoError(t, err)
}
