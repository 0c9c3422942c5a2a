package domain

// Profile is the authenticated user's account record as returned by the
// profile endpoint. It is a cache: views treat it as possibly stale and the
// session manager refetches it on demand.
type Profile struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"user_type"`
	Active   bool   `json:"is_active"`
	Phone    string `json:"phone,omitempty"`
}

// TokenPair is what the login and refresh endpoints return: a short-lived
// access token and the longer-lived refresh token exchanged for the next
// pair. Both are opaque bearer strings on this side.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
}
