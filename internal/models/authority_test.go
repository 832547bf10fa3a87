package models

import "testing"

func TestAuthorityOutranks(t *testing.T) {
	if !AuthoritySuperAdmin.Outranks(AuthorityPlacementOfficer) {
		t.Fatal("super admin must outrank placement officer")
	}
	if AuthorityPlacementOfficer.Outranks(AuthoritySuperAdmin) {
		t.Fatal("placement officer must not outrank super admin")
	}
	if AuthoritySuperAdmin.Outranks(AuthoritySuperAdmin) {
		t.Fatal("equal authorities do not outrank each other")
	}
}

func TestAuthorityCanManage(t *testing.T) {
	tests := []struct {
		actor, owner Authority
		want         bool
	}{
		{AuthoritySuperAdmin, AuthoritySuperAdmin, true},
		{AuthoritySuperAdmin, AuthorityPlacementOfficer, true},
		{AuthorityPlacementOfficer, AuthorityPlacementOfficer, true},
		{AuthorityPlacementOfficer, AuthoritySuperAdmin, false},
	}
	for _, tt := range tests {
		if got := tt.actor.CanManage(tt.owner); got != tt.want {
			t.Fatalf("CanManage(%s, %s) = %v, want %v", tt.actor, tt.owner, got, tt.want)
		}
	}
}

func TestAuthorityForRole(t *testing.T) {
	if a, ok := AuthorityForRole(RoleSuperAdmin); !ok || a != AuthoritySuperAdmin {
		t.Fatalf("unexpected mapping for superadmin: %s %v", a, ok)
	}
	if a, ok := AuthorityForRole(RolePlacementOfficer); !ok || a != AuthorityPlacementOfficer {
		t.Fatalf("unexpected mapping for officer: %s %v", a, ok)
	}
	if _, ok := AuthorityForRole(RoleStudent); ok {
		t.Fatal("students carry no range authority")
	}
}
