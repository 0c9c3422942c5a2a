package domain

import (
	"encoding/json"
	"testing"
)

func TestParseRoleAcceptsBothAdminConventions(t *testing.T) {
	tests := []struct {
		wire int
		want Role
	}{
		{0, RoleAdmin},
		{4, RoleAdmin},
		{1, RoleElderly},
		{2, RoleFamily},
		{3, RoleProvider},
		{9, RoleUnknown},
		{-1, RoleUnknown},
	}
	for _, tt := range tests {
		if got := ParseRole(tt.wire); got != tt.want {
			t.Errorf("ParseRole(%d) = %v, want %v", tt.wire, got, tt.want)
		}
	}
}

func TestRoleWireRoundTrip(t *testing.T) {
	for _, r := range []Role{RoleAdmin, RoleElderly, RoleFamily, RoleProvider} {
		if got := ParseRole(r.Wire()); got != r {
			t.Errorf("ParseRole(%v.Wire()) = %v", r, got)
		}
	}
	if RoleAdmin.Wire() != 0 {
		t.Errorf("admin must encode as 0, got %d", RoleAdmin.Wire())
	}
}

func TestProfileDecodesNumericUserType(t *testing.T) {
	var p Profile
	raw := `{"id": 42, "username": "elder01", "user_type": 1, "is_active": true}`
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Role != RoleElderly {
		t.Errorf("Role = %v, want elderly", p.Role)
	}
	if p.Username != "elder01" || !p.Active {
		t.Errorf("profile = %+v", p)
	}
}

func TestProfileDecodesStringUserType(t *testing.T) {
	tests := []struct {
		raw  string
		want Role
	}{
		{`{"user_type": "provider"}`, RoleProvider},
		{`{"user_type": "admin"}`, RoleAdmin},
		{`{"user_type": "4"}`, RoleAdmin},
		{`{"user_type": null}`, RoleUnknown},
		{`{"user_type": "whatever"}`, RoleUnknown},
	}
	for _, tt := range tests {
		var p Profile
		if err := json.Unmarshal([]byte(tt.raw), &p); err != nil {
			t.Fatalf("unmarshal %s: %v", tt.raw, err)
		}
		if p.Role != tt.want {
			t.Errorf("%s -> %v, want %v", tt.raw, p.Role, tt.want)
		}
	}
}

func TestRoleFromName(t *testing.T) {
	if got := RoleFromName(" Elderly "); got != RoleElderly {
		t.Errorf("RoleFromName = %v, want elderly", got)
	}
	if got := RoleFromName("merchant"); got != RoleProvider {
		t.Errorf("RoleFromName(merchant) = %v, want provider", got)
	}
	if got := RoleFromName(""); got != RoleUnknown {
		t.Errorf("RoleFromName(\"\") = %v, want unknown", got)
	}
}
