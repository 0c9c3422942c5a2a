package auth

import "github.com/smartcommhub/commhub/pkg/domain"

// Capability is what a view demands before it may render.
type Capability struct {
	authenticated bool
	role          domain.Role
}

// Public allows anyone, logged in or not.
var Public = Capability{}

// Authenticated allows any logged-in user regardless of role.
var Authenticated = Capability{authenticated: true}

// RequireRole allows logged-in users whose profile role satisfies r per the
// grant table below.
func RequireRole(r domain.Role) Capability {
	return Capability{authenticated: true, role: r}
}

// roleGrants maps a gated role to the profile roles that satisfy it. The
// administrator's access to provider and resident views is a deliberate
// super-role relationship encoded here and nowhere else; no view re-derives
// role semantics locally.
var roleGrants = map[domain.Role][]domain.Role{
	domain.RoleAdmin:    {domain.RoleAdmin},
	domain.RoleElderly:  {domain.RoleElderly, domain.RoleAdmin},
	domain.RoleFamily:   {domain.RoleFamily},
	domain.RoleProvider: {domain.RoleProvider, domain.RoleAdmin},
}

// Guard decides whether a view may render for the current session. On a
// false answer the caller must route to the public landing view; it must
// not render the requested view, even partially.
type Guard struct {
	session *Session
}

// NewGuard returns a guard bound to session.
func NewGuard(session *Session) Guard {
	return Guard{session: session}
}

// CanEnter reports whether the current session satisfies c.
func (g Guard) CanEnter(c Capability) bool {
	return canEnter(c, g.session.Snapshot())
}

// canEnter is the full decision table, pure over a snapshot.
func canEnter(c Capability, s Snapshot) bool {
	if !c.authenticated {
		return true
	}
	if !s.LoggedIn {
		return false
	}
	if c.role == domain.RoleUnknown {
		return true
	}
	if s.Profile == nil {
		return false
	}
	for _, granted := range roleGrants[c.role] {
		if s.Profile.Role == granted {
			return true
		}
	}
	return false
}
