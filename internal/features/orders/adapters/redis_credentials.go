package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"order-history/internal/core/cache"
	"order-history/internal/features/orders/domain"
	"order-history/internal/features/orders/ports"
)

// Credential store keys. The session writer (outside this service) persists
// the bearer token and the serialized user profile under these keys.
const (
	tokenKey   = "token"
	profileKey = "user"
)

// RedisCredentialStore implements ports.CredentialStore on top of the cache
// port. It is strictly read-only: this service never writes credentials.
type RedisCredentialStore struct {
	cache cache.Cache
}

// NewRedisCredentialStore creates a new RedisCredentialStore.
func NewRedisCredentialStore(c cache.Cache) *RedisCredentialStore {
	return &RedisCredentialStore{
		cache: c,
	}
}

// userProfile is the subset of the serialized profile this service reads.
type userProfile struct {
	// ID is the customer identifier, stored as "_id" by the session writer.
	ID string `json:"_id"`
	// AltID covers profiles serialized with a plain "id" field instead.
	AltID string `json:"id"`
}

// customerID returns whichever identifier field the profile carries.
func (p userProfile) customerID() string {
	if p.ID != "" {
		return p.ID
	}
	return p.AltID
}

// Credentials reads the stored token and user profile. A missing or blank
// token, a missing profile, or a profile without an identifier all yield
// domain.ErrUnauthenticated so the fetch path can fail before any network
// call is attempted.
func (s *RedisCredentialStore) Credentials(ctx context.Context) (ports.Credentials, error) {
	token, err := s.cache.Get(ctx, tokenKey)
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return ports.Credentials{}, fmt.Errorf("%w: no token stored", domain.ErrUnauthenticated)
		}
		return ports.Credentials{}, fmt.Errorf("failed to read token: %w", err)
	}
	if len(token) == 0 {
		return ports.Credentials{}, fmt.Errorf("%w: empty token", domain.ErrUnauthenticated)
	}

	rawProfile, err := s.cache.Get(ctx, profileKey)
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return ports.Credentials{}, fmt.Errorf("%w: no user profile stored", domain.ErrUnauthenticated)
		}
		return ports.Credentials{}, fmt.Errorf("failed to read user profile: %w", err)
	}

	var profile userProfile
	if err := json.Unmarshal(rawProfile, &profile); err != nil {
		return ports.Credentials{}, fmt.Errorf("%w: unreadable user profile", domain.ErrUnauthenticated)
	}
	if profile.customerID() == "" {
		return ports.Credentials{}, fmt.Errorf("%w: user profile has no identifier", domain.ErrUnauthenticated)
	}

	return ports.Credentials{
		Token:      string(token),
		CustomerID: profile.customerID(),
	}, nil
}
