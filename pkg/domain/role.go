package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Role is the permission class derived from a user's profile. It is the
// single place in the codebase that knows about the platform's numeric
// user_type encoding.
type Role int

const (
	RoleUnknown Role = iota
	RoleAdmin
	RoleElderly
	RoleFamily
	RoleProvider
)

// Wire values for user_type. The platform has used both 0 and 4 for
// administrators across revisions; we accept both and always emit 0.
const (
	wireAdmin    = 0
	wireElderly  = 1
	wireFamily   = 2
	wireProvider = 3
	wireAdminAlt = 4
)

// ParseRole maps a numeric user_type to a Role. Unrecognised values map to
// RoleUnknown rather than failing, since a profile with an odd user_type
// should still render (it just passes no role gate).
func ParseRole(userType int) Role {
	switch userType {
	case wireAdmin, wireAdminAlt:
		return RoleAdmin
	case wireElderly:
		return RoleElderly
	case wireFamily:
		return RoleFamily
	case wireProvider:
		return RoleProvider
	default:
		return RoleUnknown
	}
}

// Wire returns the user_type integer sent to the backend.
func (r Role) Wire() int {
	switch r {
	case RoleAdmin:
		return wireAdmin
	case RoleElderly:
		return wireElderly
	case RoleFamily:
		return wireFamily
	case RoleProvider:
		return wireProvider
	default:
		return -1
	}
}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleElderly:
		return "elderly"
	case RoleFamily:
		return "family"
	case RoleProvider:
		return "provider"
	default:
		return "unknown"
	}
}

// RoleFromName parses the lowercase role names used in config and the
// register flow. Returns RoleUnknown for anything it does not recognise.
func RoleFromName(name string) Role {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "admin":
		return RoleAdmin
	case "elderly", "elder", "resident":
		return RoleElderly
	case "family":
		return RoleFamily
	case "provider", "merchant":
		return RoleProvider
	default:
		return RoleUnknown
	}
}

// UnmarshalJSON accepts either the numeric user_type or a role name, since
// older API revisions returned strings for some accounts.
func (r *Role) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*r = RoleUnknown
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return fmt.Errorf("role: %w", err)
		}
		if n, err := strconv.Atoi(name); err == nil {
			*r = ParseRole(n)
			return nil
		}
		*r = RoleFromName(name)
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("role: unexpected value %s", s)
	}
	*r = ParseRole(n)
	return nil
}

// MarshalJSON always emits the numeric encoding.
func (r Role) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Itoa(r.Wire())), nil
}
