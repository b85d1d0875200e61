package sessions

import (
	"encoding/json"
	"sync"

	"github.com/pkg/errors"
	"github.com/sgdl/go-sgdl-client/users"
)

// Session is the authentication state of one client: the token pair, a
// cached copy of the backend's user profile, and a loading flag for the
// initial hydration phase. It is constructed explicitly and injected into
// the gateway, the auth service and the navigation guard; there is no
// package-level singleton.
//
// Tokens are written through to the Store on every mutation and hydrated
// from it at construction, so a durable Store makes the session survive a
// process restart. All methods are safe for concurrent use; the access
// token swap during a renewal is atomic with respect to readers.
type Session struct {
	mu      sync.RWMutex
	store   Store
	access  string
	refresh string
	user    *users.User
	loading bool
}

// New hydrates a Session from the store. A missing or unreadable cached
// user is treated as absent; the tokens alone decide authentication.
func New(store Store) *Session {
	s := &Session{store: store, loading: true}
	s.access, _ = store.Get(KeyAccessToken)
	s.refresh, _ = store.Get(KeyRefreshToken)
	if raw, ok := store.Get(KeyCurrentUser); ok && raw != "" {
		var u users.User
		if err := json.Unmarshal([]byte(raw), &u); err == nil {
			s.user = &u
		}
	}
	return s
}

// IsAuthenticated reports whether an access token is present. This is a
// presence check, not a validity check: an expired token still reports true
// until a request proves otherwise.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access != ""
}

func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access
}

func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh
}

// CurrentUser returns a copy of the cached profile, or nil when no profile
// has been fetched yet.
func (s *Session) CurrentUser() *users.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Loading reports whether the initial hydration phase is still in progress.
func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// FinishLoading marks hydration as complete.
func (s *Session) FinishLoading() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
}

// SetTokens stores a freshly issued token pair.
func (s *Session) SetTokens(access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = access
	s.refresh = refresh
	if err := s.store.Set(KeyAccessToken, access); err != nil {
		return errors.Wrap(err, "[Session.SetTokens] store access token")
	}
	if err := s.store.Set(KeyRefreshToken, refresh); err != nil {
		return errors.Wrap(err, "[Session.SetTokens] store refresh token")
	}
	return nil
}

// SetAccessToken replaces only the access token, leaving the refresh token
// untouched. Used by the gateway after a successful renewal.
func (s *Session) SetAccessToken(access string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = access
	return errors.Wrap(s.store.Set(KeyAccessToken, access), "[Session.SetAccessToken] store access token")
}

// SetCurrentUser replaces the cached profile and persists it.
func (s *Session) SetCurrentUser(u *users.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = u
	if u == nil {
		return errors.Wrap(s.store.Delete(KeyCurrentUser), "[Session.SetCurrentUser] delete cached user")
	}
	raw, err := json.Marshal(u)
	if err != nil {
		return errors.Wrap(err, "[Session.SetCurrentUser] json.Marshal")
	}
	return errors.Wrap(s.store.Set(KeyCurrentUser, string(raw)), "[Session.SetCurrentUser] store cached user")
}

// UpdateCurrentUser merges a partial edit into the cached profile without a
// round trip. A session with no cached profile is left unchanged.
func (s *Session) UpdateCurrentUser(update users.ProfileUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	merged := update.Apply(*s.user)
	s.user = &merged
	raw, err := json.Marshal(s.user)
	if err != nil {
		return errors.Wrap(err, "[Session.UpdateCurrentUser] json.Marshal")
	}
	return errors.Wrap(s.store.Set(KeyCurrentUser, string(raw)), "[Session.UpdateCurrentUser] store cached user")
}

// Clear wipes tokens and the cached profile. It is idempotent: clearing an
// already-empty session leaves the same cleared state.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = ""
	s.refresh = ""
	s.user = nil
	_ = s.store.Delete(KeyAccessToken)
	_ = s.store.Delete(KeyRefreshToken)
	_ = s.store.Delete(KeyCurrentUser)
}
