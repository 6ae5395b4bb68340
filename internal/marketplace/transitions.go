package marketplace

import (
	"fmt"
	"time"

	"github.com/angelmondragon/agricontract-backend/pkg/db/models"
	"github.com/angelmondragon/agricontract-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/agricontract-backend/pkg/errors"
)

// The functions below are pure: they receive a private copy of the state and
// return it modified. Nothing is persisted here.

func createContract(st State, actor models.Session, req CreateContractRequest, now time.Time) (State, models.Contract) {
	created := models.Contract{
		ID:           st.nextContractID(),
		Crop:         req.Crop,
		Quantity:     req.Quantity,
		PricePerUnit: req.PricePerUnit,
		Duration:     req.Duration,
		DeliveryDate: req.DeliveryDate,
		Description:  req.Description,
		CreatedBy:    actor.Name,
		CreatedByID:  actor.ID,
		Status:       enums.ContractStatusOpen,
		CreatedAt:    &now,
	}
	st.Contracts = append(st.Contracts, created)
	return st, created
}

// applyToContract returns the new application and whether it was the first
// one, i.e. whether it moved the contract out of OPEN.
func applyToContract(st State, actor models.Session, contractID int64, now time.Time) (State, models.Application, bool, error) {
	idx := st.contractIndex(contractID)
	if idx < 0 {
		return st, models.Application{}, false, pkgerrors.New(pkgerrors.CodeNotFound, "contract not found")
	}
	if st.hasApplication(contractID, actor.ID) {
		return st, models.Application{}, false, pkgerrors.New(pkgerrors.CodeDuplicateApplication, "you have already applied to this contract")
	}
	contract := st.Contracts[idx]
	if contract.Status == enums.ContractStatusApproved {
		return st, models.Application{}, false, pkgerrors.New(pkgerrors.CodeConflict, "contract has already been awarded").
			WithDetails(map[string]any{"contractId": contractID, "status": contract.Status})
	}

	app := models.Application{
		ID:         st.nextApplicationID(),
		ContractID: contractID,
		FarmerID:   actor.ID,
		FarmerName: actor.Name,
		Status:     enums.ApplicationStatusApplied,
		AppliedAt:  &now,
	}
	st.Applications = append(st.Applications, app)

	first := contract.Status == enums.ContractStatusOpen
	if first {
		if err := advance(&st.Contracts[idx], enums.ContractStatusApplied); err != nil {
			return st, models.Application{}, false, err
		}
	}
	return st, app, first, nil
}

func approveApplication(st State, applicationID int64, now time.Time) (State, Decision, error) {
	appIdx, contractIdx, err := locate(st, applicationID)
	if err != nil {
		return st, Decision{}, err
	}
	target := st.Applications[appIdx]
	contract := st.Contracts[contractIdx]

	if target.Status == enums.ApplicationStatusApproved {
		return st, Decision{Application: target, Contract: contract, AutoRejected: []int64{}}, nil
	}
	if contract.Status == enums.ContractStatusApproved {
		return st, Decision{}, pkgerrors.New(pkgerrors.CodeConflict, "contract already has an approved application").
			WithDetails(map[string]any{"contractId": contract.ID, "applicationId": applicationID})
	}

	st.Applications[appIdx].Status = enums.ApplicationStatusApproved
	st.Applications[appIdx].DecidedAt = &now
	if err := advance(&st.Contracts[contractIdx], enums.ContractStatusApproved); err != nil {
		return st, Decision{}, err
	}

	rejected := []int64{}
	for i := range st.Applications {
		sibling := &st.Applications[i]
		if sibling.ContractID != contract.ID || sibling.ID == applicationID {
			continue
		}
		if sibling.Status != enums.ApplicationStatusApplied {
			continue
		}
		sibling.Status = enums.ApplicationStatusRejected
		sibling.DecidedAt = &now
		rejected = append(rejected, sibling.ID)
	}

	return st, Decision{
		Application:  st.Applications[appIdx],
		Contract:     st.Contracts[contractIdx],
		AutoRejected: rejected,
		Changed:      true,
	}, nil
}

func rejectApplication(st State, applicationID int64, now time.Time) (State, Decision, error) {
	appIdx, contractIdx, err := locate(st, applicationID)
	if err != nil {
		return st, Decision{}, err
	}
	target := st.Applications[appIdx]
	contract := st.Contracts[contractIdx]

	switch target.Status {
	case enums.ApplicationStatusRejected:
		return st, Decision{Application: target, Contract: contract, AutoRejected: []int64{}}, nil
	case enums.ApplicationStatusApproved:
		return st, Decision{}, pkgerrors.New(pkgerrors.CodeConflict, "approved applications cannot be rejected").
			WithDetails(map[string]any{"contractId": contract.ID, "applicationId": applicationID})
	}

	st.Applications[appIdx].Status = enums.ApplicationStatusRejected
	st.Applications[appIdx].DecidedAt = &now
	return st, Decision{
		Application:  st.Applications[appIdx],
		Contract:     contract,
		AutoRejected: []int64{},
		Changed:      true,
	}, nil
}

func locate(st State, applicationID int64) (int, int, error) {
	appIdx := st.applicationIndex(applicationID)
	if appIdx < 0 {
		return -1, -1, pkgerrors.New(pkgerrors.CodeNotFound, "application not found")
	}
	contractIdx := st.contractIndex(st.Applications[appIdx].ContractID)
	if contractIdx < 0 {
		return -1, -1, pkgerrors.New(pkgerrors.CodeNotFound, "contract not found")
	}
	return appIdx, contractIdx, nil
}

func advance(c *models.Contract, next enums.ContractStatus) error {
	if !c.Status.CanAdvanceTo(next) {
		return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("contract cannot move from %s to %s", c.Status, next))
	}
	c.Status = next
	return nil
}
