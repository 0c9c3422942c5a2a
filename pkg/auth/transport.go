package auth

import (
	"bytes"
	"io"
	"net/http"
)

// Transport is the outbound request pipeline. It attaches the current
// access token as a bearer credential to every request (requests go out
// unauthenticated when no token is held) and drives the recovery protocol
// on 401:
//
//	SENDING -> DONE                          on anything but 401
//	SENDING -> REFRESHING -> RETRYING -> *   on 401 with a refresh token
//	SENDING -> FAILED                        on 401 without one
//
// The retry happens at most once per original request: the retried call's
// response is returned as-is, so a second 401 surfaces instead of looping.
// When the refresh itself fails the session has already been torn down by
// the Manager and the original 401 response is returned, never a fabricated
// success.
type Transport struct {
	// Base performs the actual round trips. nil means
	// http.DefaultTransport.
	Base http.RoundTripper

	auth *Manager
}

// NewTransport wraps base with the refresh protocol driven by m.
func NewTransport(base http.RoundTripper, m *Manager) *Transport {
	return &Transport{Base: base, auth: m}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	first := cloneRequest(req)
	tok := t.auth.session.AccessToken()
	if tok != "" {
		first.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := base.RoundTrip(first)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	// 401 with no refresh token held: nothing to recover with.
	if t.auth.session.RefreshToken() == "" {
		return resp, nil
	}

	// Park the original response so it can be surfaced if recovery fails.
	saved, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max error body
	resp.Body.Close() //nolint:errcheck
	if readErr != nil {
		saved = nil
	}
	resp.Body = io.NopCloser(bytes.NewReader(saved))

	newTok, refreshErr := t.auth.Refresh(req.Context(), tok)
	if refreshErr != nil {
		t.auth.log.Debug().Err(refreshErr).Str("url", req.URL.Path).Msg("401 not recovered")
		return resp, nil
	}

	retry := cloneRequest(req)
	retry.Header.Set("Authorization", "Bearer "+newTok)
	t.auth.log.Debug().Str("url", req.URL.Path).Msg("retrying after refresh")
	return base.RoundTrip(retry)
}

// cloneRequest copies req including a replayable body. RoundTrippers must
// not mutate the caller's request.
func cloneRequest(req *http.Request) *http.Request {
	clone := req.Clone(req.Context())
	if req.Body != nil && req.GetBody != nil {
		body, err := req.GetBody()
		if err == nil {
			clone.Body = body
		}
	}
	return clone
}
