package types

import "testing"

func TestActorCan_RoleCapabilityMatrix(t *testing.T) {
	cases := []struct {
		role       Role
		capability Capability
		want       bool
	}{
		{RoleAdmin, CapabilityView, true},
		{RoleAdmin, CapabilityEditMaterial, true},
		{RoleAdmin, CapabilityApprove, true},
		{RoleAdmin, CapabilityAdminUsers, true},
		{RoleBackOffice, CapabilityView, true},
		{RoleBackOffice, CapabilityEditMaterial, true},
		{RoleBackOffice, CapabilityApprove, true},
		{RoleBackOffice, CapabilityAdminUsers, false},
		{RoleFieldWorker, CapabilityView, true},
		{RoleFieldWorker, CapabilityEditMaterial, false},
		{RoleFieldWorker, CapabilityApprove, false},
		{RoleFieldWorker, CapabilityAdminUsers, false},
		{Role("intern"), CapabilityView, false},
	}
	for _, tc := range cases {
		actor := Actor{Role: tc.role}
		if got := actor.Can(tc.capability); got != tc.want {
			t.Errorf("%s can %s = %v, want %v", tc.role, tc.capability, got, tc.want)
		}
	}
}

func TestParseRole(t *testing.T) {
	if _, ok := ParseRole("back_office"); !ok {
		t.Fatalf("back_office must parse")
	}
	if _, ok := ParseRole("superuser"); ok {
		t.Fatalf("superuser must not parse")
	}
}
