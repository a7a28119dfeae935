package auth

import (
	"errors"
	"testing"
)

func TestCheckRole(t *testing.T) {
	tests := []struct {
		name    string
		role    Role
		req     Requirement
		wantErr bool
	}{
		{"admin passes admin gate", RoleAdmin, RequireAdmin, false},
		{"agent fails admin gate", RoleAgent, RequireAdmin, true},
		{"agent passes agent gate", RoleAgent, RequireAgent, false},
		{"admin fails agent gate", RoleAdmin, RequireAgent, true},
		{"admin passes any gate", RoleAdmin, RequireAny, false},
		{"agent passes any gate", RoleAgent, RequireAny, false},
		{"unknown role fails any gate", Role("ghost"), RequireAny, true},
		{"unknown role fails admin gate", Role("ghost"), RequireAdmin, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckRole(tt.role, tt.req)
			if tt.wantErr {
				if !errors.Is(err, ErrForbidden) {
					t.Errorf("CheckRole() = %v, want ErrForbidden", err)
				}
			} else if err != nil {
				t.Errorf("CheckRole() = %v, want nil", err)
			}
		})
	}
}

func TestCheckRole_GenericMessage(t *testing.T) {
	// The rejection must not leak which role would have been accepted.
	err := CheckRole(RoleAgent, RequireAdmin)
	if err == nil {
		t.Fatal("expected error")
	}
	if got := err.Error(); got != "insufficient permissions" {
		t.Errorf("error message = %q, want generic %q", got, "insufficient permissions")
	}
}

func TestRequirement_String(t *testing.T) {
	tests := []struct {
		req  Requirement
		want string
	}{
		{RequireAny, "any"},
		{RequireAgent, "agent"},
		{RequireAdmin, "admin"},
	}
	for _, tt := range tests {
		if got := tt.req.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestIsValidUsername(t *testing.T) {
	valid := []string{"abc", "agent.one", "a-b_c", "Agent42"}
	for _, u := range valid {
		if !IsValidUsername(u) {
			t.Errorf("IsValidUsername(%q) = false, want true", u)
		}
	}

	invalid := []string{"", "ab", "has space", "uh@oh", string(make([]byte, 65))}
	for _, u := range invalid {
		if IsValidUsername(u) {
			t.Errorf("IsValidUsername(%q) = true, want false", u)
		}
	}
}

func TestIsValidPassword(t *testing.T) {
	if !IsValidPassword("secret") {
		t.Error("6-char password should be valid")
	}
	if IsValidPassword("short") {
		t.Error("5-char password should be invalid")
	}
}
