package marketplace

import (
	"testing"
	"time"

	"github.com/angelmondragon/agricontract-backend/pkg/db/models"
	"github.com/angelmondragon/agricontract-backend/pkg/enums"
)

func sampleState() State {
	return State{
		Contracts: []models.Contract{
			{ID: 7, Crop: "Rice", Quantity: 10, PricePerUnit: 100, CreatedByID: "user_f", Status: enums.ContractStatusApplied},
		},
		Applications: []models.Application{
			{ID: 1, ContractID: 7, FarmerID: "a", Status: enums.ApplicationStatusApplied},
			{ID: 2, ContractID: 7, FarmerID: "b", Status: enums.ApplicationStatusApplied},
		},
	}
}

func TestTransitionsWorkOnCopies(t *testing.T) {
	original := sampleState()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	next, decision, err := approveApplication(original.clone(), 1, now)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if !decision.Changed || len(decision.AutoRejected) != 1 || decision.AutoRejected[0] != 2 {
		t.Fatalf("unexpected decision %+v", decision)
	}
	if next.Applications[1].Status != enums.ApplicationStatusRejected {
		t.Fatalf("expected sibling rejected in the new state")
	}
	if original.Applications[1].Status != enums.ApplicationStatusApplied || original.Contracts[0].Status != enums.ContractStatusApplied {
		t.Fatalf("original state must not change: %+v", original)
	}
}

func TestNextIDs(t *testing.T) {
	st := sampleState()
	if got := st.nextContractID(); got != 8 {
		t.Fatalf("expected next contract id 8, got %d", got)
	}
	if got := st.nextApplicationID(); got != 3 {
		t.Fatalf("expected next application id 3, got %d", got)
	}
	if got := (State{}).nextContractID(); got != 1 {
		t.Fatalf("expected 1 for empty state, got %d", got)
	}
}

func TestAdvanceRejectsBackwardMoves(t *testing.T) {
	c := models.Contract{Status: enums.ContractStatusApproved}
	if err := advance(&c, enums.ContractStatusApplied); err == nil {
		t.Fatal("expected error moving APPROVED back to APPLIED")
	}
	if c.Status != enums.ContractStatusApproved {
		t.Fatalf("status must be unchanged, got %s", c.Status)
	}
}

func TestGuardChecksRoleBeforeOwnership(t *testing.T) {
	st := sampleState()
	cmd := approveCommand(1)
	farmer := &models.Session{ID: "a", Role: enums.RoleFarmer}
	if err := guard(cmd, farmer, st); err == nil || err.Error() != "UNAUTHORIZED: Only factory users can approve applications." {
		t.Fatalf("unexpected guard result %v", err)
	}
	owner := &models.Session{ID: "user_f", Role: enums.RoleFactory}
	if err := guard(cmd, owner, st); err != nil {
		t.Fatalf("owner should pass: %v", err)
	}
}
