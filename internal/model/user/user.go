package user

import (
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/finalyzer/support/backend/internal/model/profile"
)

// Account is a demo sign-in identity. The list is fixed at startup; there is
// no registration, lockout or rate limiting behind it.
type Account struct {
	Email        string
	PasswordHash []byte
	Profile      profile.UserProfile
}

type seedAccount struct {
	password string
	profile  profile.UserProfile
}

var demoAccounts = []seedAccount{
	{
		password: "finalyzer123",
		profile: profile.UserProfile{
			Name:         "Demo User",
			Email:        "demo@finalyzer.com",
			Industry:     "Finance",
			Organization: "FinAlyzer",
		},
	},
	{
		password: "support123",
		profile: profile.UserProfile{
			Name:         "Support Agent",
			Email:        "support@finalyzer.com",
			Industry:     "Technology",
			Organization: "FinAlyzer",
		},
	},
}

// Seed hashes the demo accounts with the given bcrypt cost.
func Seed(cost int) ([]Account, error) {
	accounts := make([]Account, 0, len(demoAccounts))
	for _, seed := range demoAccounts {
		hash, err := bcrypt.GenerateFromPassword([]byte(seed.password), cost)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, Account{
			Email:        seed.profile.Email,
			PasswordHash: hash,
			Profile:      seed.profile,
		})
	}
	return accounts, nil
}

// Store exposes account lookup for the sign-in handler.
type Store interface {
	Authenticate(email, password string) (profile.UserProfile, bool)
}

// MemoryStore implements Store with an in-memory slice.
type MemoryStore struct {
	items []Account
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied accounts.
func NewMemoryStore(items []Account) *MemoryStore {
	return &MemoryStore{items: append([]Account(nil), items...)}
}

// Authenticate matches email case-insensitively and checks the password hash.
func (s *MemoryStore) Authenticate(email, password string) (profile.UserProfile, bool) {
	email = strings.TrimSpace(email)
	for _, item := range s.items {
		if !strings.EqualFold(item.Email, email) {
			continue
		}
		if err := bcrypt.CompareHashAndPassword(item.PasswordHash, []byte(password)); err != nil {
			return profile.UserProfile{}, false
		}
		return item.Profile, true
	}
	return profile.UserProfile{}, false
}
