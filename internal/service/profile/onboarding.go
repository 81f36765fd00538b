package profile

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/finalyzer/support/backend/internal/model/profile"
	"github.com/finalyzer/support/backend/internal/service/webhook"
)

var (
	ErrSignupRejected = errors.New("signup rejected")
	ErrSignupFailed   = errors.New("signup request failed")
	ErrSaveFailed     = errors.New("failed to save profile")
)

// Registrar forwards a new profile to an external signup system.
type Registrar interface {
	Register(ctx context.Context, p profile.UserProfile) error
}

// Onboarding validates a submitted form, registers it and stores it.
type Onboarding struct {
	registrar Registrar
	logger    logrus.FieldLogger
}

// NewOnboarding builds the form flow. A nil registrar skips registration.
func NewOnboarding(registrar Registrar, logger logrus.FieldLogger) *Onboarding {
	return &Onboarding{registrar: registrar, logger: logger}
}

// Submit returns the stored profile. Validation failures return
// profile.ErrIncomplete. A non-2xx answer from the registrar is
// ErrSignupRejected and any other registration error is ErrSignupFailed;
// both leave the store untouched.
func (o *Onboarding) Submit(ctx context.Context, store *Store, p profile.UserProfile) (profile.UserProfile, error) {
	p = p.Normalize()
	if err := p.Validate(); err != nil {
		return profile.UserProfile{}, err
	}

	if o.registrar != nil {
		if err := o.registrar.Register(ctx, p); err != nil {
			o.logger.WithError(err).Warn("signup webhook failed")
			if errors.Is(err, webhook.ErrSignupRejected) {
				return profile.UserProfile{}, ErrSignupRejected
			}
			return profile.UserProfile{}, ErrSignupFailed
		}
	}

	if err := store.Save(ctx, p); err != nil {
		o.logger.WithError(err).Error("failed to store user profile")
		return profile.UserProfile{}, ErrSaveFailed
	}
	return p, nil
}
