package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/agricontract-backend/api/responses"
	"github.com/angelmondragon/agricontract-backend/api/validators"
	"github.com/angelmondragon/agricontract-backend/internal/marketplace"
	"github.com/angelmondragon/agricontract-backend/pkg/db/models"
	"github.com/angelmondragon/agricontract-backend/pkg/logger"
)

// Marketplace is the contract engine surface used by the HTTP layer.
type Marketplace interface {
	CreateContract(ctx context.Context, actor *models.Session, req marketplace.CreateContractRequest) (*models.Contract, error)
	ApplyToContract(ctx context.Context, actor *models.Session, contractID int64) (*models.Application, error)
	ApproveApplication(ctx context.Context, actor *models.Session, applicationID int64) (*marketplace.Decision, error)
	RejectApplication(ctx context.Context, actor *models.Session, applicationID int64) (*marketplace.Decision, error)
	ListContracts(ctx context.Context) ([]models.Contract, error)
	GetContract(ctx context.Context, id int64) (*models.Contract, error)
	Snapshot(ctx context.Context) (marketplace.State, error)
}

func ContractList(engine Marketplace, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		contracts, err := engine.ListContracts(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, contracts)
	}
}

func ContractDetail(engine Marketplace, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "contractId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		contract, err := engine.GetContract(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, contract)
	}
}
