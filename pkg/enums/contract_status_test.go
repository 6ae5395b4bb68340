package enums

import "testing"

func TestContractStatusCanAdvanceTo(t *testing.T) {
	cases := []struct {
		from ContractStatus
		to   ContractStatus
		want bool
	}{
		{ContractStatusOpen, ContractStatusOpen, true},
		{ContractStatusOpen, ContractStatusApplied, true},
		{ContractStatusOpen, ContractStatusApproved, true},
		{ContractStatusApplied, ContractStatusApproved, true},
		{ContractStatusApplied, ContractStatusOpen, false},
		{ContractStatusApproved, ContractStatusApplied, false},
		{ContractStatusApproved, ContractStatusOpen, false},
		{ContractStatus("CLOSED"), ContractStatusApproved, false},
		{ContractStatusOpen, ContractStatus("CLOSED"), false},
	}

	for _, tc := range cases {
		if got := tc.from.CanAdvanceTo(tc.to); got != tc.want {
			t.Fatalf("%s -> %s: expected %v got %v", tc.from, tc.to, tc.want, got)
		}
	}
}

func TestParseRole(t *testing.T) {
	if role, err := ParseRole("farmer"); err != nil || role != RoleFarmer {
		t.Fatalf("expected farmer, got %q err=%v", role, err)
	}
	if _, err := ParseRole("admin"); err == nil {
		t.Fatalf("expected admin to be rejected")
	}
	if RoleFactory.DisplayName() != "Factory Admin" {
		t.Fatalf("unexpected display name %q", RoleFactory.DisplayName())
	}
}

func TestParseApplicationStatusIsCaseSensitive(t *testing.T) {
	if _, err := ParseApplicationStatus("approved"); err == nil {
		t.Fatalf("expected lowercase status to be rejected")
	}
	if s, err := ParseApplicationStatus("Approved"); err != nil || s != ApplicationStatusApproved {
		t.Fatalf("expected Approved, got %q err=%v", s, err)
	}
}
