package types

import "testing"

func TestRoleOrdering(t *testing.T) {
	ordered := []Role{RolePresident, RoleAdmin, RoleMember, Role("")}

	for i, higher := range ordered {
		for j, lower := range ordered {
			got := higher.Outranks(lower)
			want := i < j
			if got != want {
				t.Errorf("%q.Outranks(%q) = %v, want %v", higher, lower, got, want)
			}
		}
	}
}

func TestRoleAtLeast(t *testing.T) {
	if !RoleAdmin.AtLeast(RoleAdmin) {
		t.Error("a role should be at least itself")
	}
	if !RolePresident.AtLeast(RoleMember) {
		t.Error("President should be at least Member")
	}
	if RoleMember.AtLeast(RoleAdmin) {
		t.Error("Member should not be at least Admin")
	}
	if Role("").AtLeast(RoleMember) {
		t.Error("absent role should not be at least Member")
	}
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		raw     string
		want    Role
		wantErr bool
	}{
		{"President", RolePresident, false},
		{"Admin", RoleAdmin, false},
		{"Member", RoleMember, false},
		{"president", "", true},
		{"Owner", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseRole(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseRole(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseRole(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestRoleValid(t *testing.T) {
	for _, role := range []Role{RolePresident, RoleAdmin, RoleMember} {
		if !role.Valid() {
			t.Errorf("%q should be valid", role)
		}
	}
	if Role("").Valid() {
		t.Error("zero role should not be valid")
	}
	if Role("Superuser").Valid() {
		t.Error("unknown role should not be valid")
	}
}
