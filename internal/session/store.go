// Package session persists the console's API credentials between calls.
//
// Every gateway request reads the store fresh instead of caching a session
// in memory, so a login or logout in one code path is visible to the next
// request immediately.
package session

import (
	"context"
	"sync"

	"mesagoo-console/internal/models"
)

// DefaultBaseURL is used when no base URL override has been stored.
const DefaultBaseURL = "https://mesagoo-api.onrender.com/api/v1"

// Storage keys, kept stable across console versions.
const (
	keyBaseURL     = "sms_gateway_base_url"
	keyBearerToken = "sms_gateway_bearer_token"
	keyUser        = "sms_gateway_user"
)

// Settings is what the HTTP client needs to build one request.
type Settings struct {
	BaseURL     string
	BearerToken string
}

// Store holds the mutable session state: base URL override, bearer token
// and the cached user profile. Absence of a token means unauthenticated;
// there is no client-side expiry tracking.
type Store interface {
	// Settings returns the base URL (falling back to DefaultBaseURL) and
	// the bearer token (empty string when unauthenticated).
	Settings(ctx context.Context) (Settings, error)

	// SetBaseURL persists a base URL override. Logout does not remove it.
	SetBaseURL(ctx context.Context, baseURL string) error

	// SetCredentials stores the token and cached profile after a login.
	SetCredentials(ctx context.Context, token string, user *models.User) error

	// CurrentUser returns the cached profile, or nil when none is stored
	// or the stored value cannot be decoded. Decode failures are swallowed.
	CurrentUser(ctx context.Context) *models.User

	// Logout removes the token and cached profile, keeping the base URL.
	Logout(ctx context.Context) error

	// IsAuthenticated reports whether a non-empty token is present.
	IsAuthenticated(ctx context.Context) bool
}

// MemoryStore keeps the session in process memory. It backs tests and the
// "memory" session backend, where credentials live only for one run.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
	user   *models.User
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) Settings(ctx context.Context) (Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	baseURL := s.values[keyBaseURL]
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return Settings{
		BaseURL:     baseURL,
		BearerToken: s.values[keyBearerToken],
	}, nil
}

func (s *MemoryStore) SetBaseURL(ctx context.Context, baseURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[keyBaseURL] = baseURL
	return nil
}

func (s *MemoryStore) SetCredentials(ctx context.Context, token string, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[keyBearerToken] = token
	s.user = user
	return nil
}

func (s *MemoryStore) CurrentUser(ctx context.Context) *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *MemoryStore) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, keyBearerToken)
	s.user = nil
	return nil
}

func (s *MemoryStore) IsAuthenticated(ctx context.Context) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[keyBearerToken] != ""
}
