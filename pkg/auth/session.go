package auth

import (
	"sync"

	"github.com/smartcommhub/commhub/pkg/domain"
)

// Session holds the in-memory authentication state shared by every view and
// every in-flight request: the credential pair, the cached profile, and the
// derived logged-in flag. It is constructed explicitly and passed to the
// request pipeline and the view guard; there is no package-level instance.
//
// Only the Manager mutates a Session (the mutators are unexported), so
// readers can take a Snapshot at any time without coordination beyond the
// internal lock.
type Session struct {
	mu      sync.RWMutex
	access  string
	refresh string
	profile *domain.Profile
}

// Snapshot is a point-in-time copy of the session state.
type Snapshot struct {
	AccessToken  string
	RefreshToken string
	Profile      *domain.Profile
	LoggedIn     bool
}

// NewSession returns an empty (logged-out) session.
func NewSession() *Session {
	return &Session{}
}

// Snapshot returns a consistent copy of the current state. LoggedIn is
// derived from the presence of an access token and is never stored
// independently, so it cannot drift from the credential.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		AccessToken:  s.access,
		RefreshToken: s.refresh,
		Profile:      s.profile,
		LoggedIn:     s.access != "",
	}
}

// AccessToken returns the current access token, or "" when logged out.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access
}

// RefreshToken returns the current refresh token, or "" when absent.
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh
}

// Profile returns the cached profile, or nil when none has been fetched.
func (s *Session) Profile() *domain.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

// LoggedIn reports whether an access token is present.
func (s *Session) LoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access != ""
}

// setTokens atomically replaces the credential pair.
func (s *Session) setTokens(access, refresh string) {
	s.mu.Lock()
	s.access = access
	s.refresh = refresh
	s.mu.Unlock()
}

// setProfile replaces the cached profile.
func (s *Session) setProfile(p *domain.Profile) {
	s.mu.Lock()
	s.profile = p
	s.mu.Unlock()
}

// clear resets to the empty state, the same shape as never having logged
// in. Credential and profile go in one critical section so no reader can
// observe tokens cleared with the profile still set, or the reverse.
func (s *Session) clear() {
	s.mu.Lock()
	s.access = ""
	s.refresh = ""
	s.profile = nil
	s.mu.Unlock()
}
