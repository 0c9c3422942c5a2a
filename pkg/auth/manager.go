package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/smartcommhub/commhub/pkg/domain"
)

// Manager owns the session lifecycle: login, register, logout, profile
// fetch and token refresh. It is the only component that writes the Session
// and the Store, and it always writes them together.
//
// Auth endpoints that run unauthenticated (login, register, refresh) go
// through a bare HTTP client; everything else, including the profile fetch,
// goes through the pipeline client returned by Client, and therefore
// participates in the refresh-on-401 protocol.
type Manager struct {
	baseURL string
	session *Session
	store   *Store
	raw     *http.Client
	authed  *http.Client
	group   singleflight.Group
	log     zerolog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger routes session lifecycle events to l.
func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// WithHTTPClient replaces the underlying HTTP client used for both the bare
// and the pipeline paths. Mostly for tests.
func WithHTTPClient(c *http.Client) Option {
	return func(m *Manager) { m.raw = c }
}

// NewManager builds a manager against baseURL, rehydrating the session from
// store so a previous process's tokens survive into this one (cold start
// may hold a credential but no profile yet).
func NewManager(baseURL string, store *Store, opts ...Option) *Manager {
	m := &Manager{
		baseURL: strings.TrimRight(baseURL, "/"),
		session: NewSession(),
		store:   store,
		raw:     &http.Client{Timeout: 30 * time.Second},
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.authed = &http.Client{
		Transport: &Transport{Base: m.raw.Transport, auth: m},
		Timeout:   m.raw.Timeout,
	}

	access := store.Get(KeyAccessToken)
	refresh := store.Get(KeyRefreshToken)
	if access != "" || refresh != "" {
		m.session.setTokens(access, refresh)
	}
	return m
}

// Session returns the shared session state.
func (m *Manager) Session() *Session { return m.session }

// Guard returns a view guard bound to this manager's session.
func (m *Manager) Guard() Guard { return NewGuard(m.session) }

// Client returns the authenticated HTTP client. Every request it carries
// gets the current access token attached and is retried once through the
// refresh protocol on 401.
func (m *Manager) Client() *http.Client { return m.authed }

// BaseURL returns the API base URL the manager was built with.
func (m *Manager) BaseURL() string { return m.baseURL }

// SetTokens atomically updates the session credential and mirrors both
// values into the store. Empty strings are persisted as empty strings so a
// reader never sees one half of a stale pair.
func (m *Manager) SetTokens(access, refresh string) {
	m.session.setTokens(access, refresh)
	m.store.Set(KeyAccessToken, access)
	m.store.Set(KeyRefreshToken, refresh)
}

// Login exchanges credentials for a token pair and loads the profile. It
// reports success as a bool and never throws transport details at the
// caller; the reasons land in the log.
//
// A true return guarantees a fresh profile: if the profile fetch fails
// after a successful token exchange the session is torn down and Login
// reports false, so no caller observes logged-in-with-no-profile.
func (m *Manager) Login(ctx context.Context, username, password string) bool {
	pair, err := m.postToken(ctx, "/api/auth/login", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		m.log.Warn().Err(err).Str("username", username).Msg("login failed")
		return false
	}
	m.SetTokens(pair.AccessToken, pair.RefreshToken)
	if err := m.FetchProfile(ctx); err != nil {
		m.log.Warn().Err(err).Msg("profile fetch after login failed, session torn down")
		return false
	}
	m.log.Info().Str("username", username).Msg("logged in")
	return true
}

// Register creates an account. It does not touch the session; the caller
// still has to log in. A RoleUnknown role registers as a family member,
// the platform default.
func (m *Manager) Register(ctx context.Context, username, password string, role domain.Role, phone string) bool {
	if role == domain.RoleUnknown {
		role = domain.RoleFamily
	}
	body := map[string]any{
		"username":  username,
		"password":  password,
		"user_type": role.Wire(),
	}
	if phone != "" {
		body["phone"] = phone
	}
	resp, err := m.postJSON(ctx, m.raw, "/api/auth/register", body)
	if err != nil {
		m.log.Warn().Err(err).Str("username", username).Msg("register failed")
		return false
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode >= 400 {
		m.log.Warn().Int("status", resp.StatusCode).Str("username", username).
			Str("detail", readDetail(resp)).Msg("register rejected")
		return false
	}
	return true
}

// FetchProfile loads the profile for the current access token through the
// request pipeline. On any failure, including a 401 that survived the
// refresh protocol, the session is torn down: a stale profile must never be
// shown as authenticated.
func (m *Manager) FetchProfile(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"/api/auth/profile", nil)
	if err != nil {
		return fmt.Errorf("fetch profile: %w", err)
	}
	resp, err := m.authed.Do(req)
	if err != nil {
		m.teardown("profile fetch transport error")
		return fmt.Errorf("fetch profile: %v: %w", err, ErrProfileUnavailable)
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode >= 400 {
		detail := readDetail(resp)
		m.teardown("profile fetch rejected")
		return fmt.Errorf("fetch profile: HTTP %d: %s: %w", resp.StatusCode, detail, ErrProfileUnavailable)
	}
	var p domain.Profile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		m.teardown("profile decode error")
		return fmt.Errorf("fetch profile: decode: %v: %w", err, ErrProfileUnavailable)
	}
	m.session.setProfile(&p)
	return nil
}

// Refresh exchanges the current refresh token for a new pair and returns
// the new access token. Concurrent callers are coalesced into a single
// in-flight exchange; everyone gets the result of that one call, so N
// requests failing with 401 together cost one refresh, not N.
//
// stale is the access token the caller just saw rejected. If the session
// already holds a different token by the time the caller gets here, that
// token is returned without another exchange.
//
// On failure the session is torn down before the error is returned.
func (m *Manager) Refresh(ctx context.Context, stale string) (string, error) {
	v, err, _ := m.group.Do("refresh", func() (any, error) {
		if cur := m.session.AccessToken(); cur != "" && cur != stale {
			return cur, nil
		}
		refresh := m.session.RefreshToken()
		if refresh == "" {
			return "", ErrNoRefreshToken
		}
		pair, err := m.postToken(ctx, "/api/auth/refresh", map[string]string{
			"refresh_token": refresh,
		})
		if err != nil {
			m.teardown("refresh rejected")
			return "", fmt.Errorf("%v: %w", err, ErrRefreshExhausted)
		}
		m.SetTokens(pair.AccessToken, pair.RefreshToken)
		m.log.Debug().Msg("token pair refreshed")
		return pair.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Logout clears the session and purges the store. Calling it while already
// logged out is a no-op.
func (m *Manager) Logout() {
	m.teardown("logout")
}

// ChangePassword updates the account password through the pipeline.
func (m *Manager) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	resp, err := m.postJSON(ctx, m.authed, "/api/auth/change-password", map[string]string{
		"old_password": oldPassword,
		"new_password": newPassword,
	})
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode >= 400 {
		return fmt.Errorf("change password: HTTP %d: %s: %w",
			resp.StatusCode, readDetail(resp), ErrCredentialsRejected)
	}
	return nil
}

func (m *Manager) teardown(reason string) {
	m.session.clear()
	m.store.Clear()
	m.log.Info().Str("reason", reason).Msg("session cleared")
}

// postToken POSTs body to an auth endpoint and decodes the returned token
// pair. Auth rejections come back as ErrCredentialsRejected.
func (m *Manager) postToken(ctx context.Context, path string, body any) (*domain.TokenPair, error) {
	resp, err := m.postJSON(ctx, m.raw, path, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode >= 400 {
		detail := readDetail(resp)
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusBadRequest ||
			resp.StatusCode == http.StatusForbidden {
			return nil, fmt.Errorf("HTTP %d: %s: %w", resp.StatusCode, detail, ErrCredentialsRejected)
		}
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, detail)
	}
	var pair domain.TokenPair
	if err := json.NewDecoder(resp.Body).Decode(&pair); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if pair.AccessToken == "" {
		return nil, fmt.Errorf("token response missing access_token: %w", ErrCredentialsRejected)
	}
	return &pair, nil
}

func (m *Manager) postJSON(ctx context.Context, c *http.Client, path string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.Do(req)
}

// readDetail pulls the backend's error detail out of a failed response,
// reading at most 1 MB.
func readDetail(resp *http.Response) string {
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return ""
	}
	var apiErr struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(data, &apiErr) == nil && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return strings.TrimSpace(string(data))
}
