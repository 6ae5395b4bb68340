package controllers

import (
	"net/http"

	"github.com/angelmondragon/agricontract-backend/api/middleware"
	"github.com/angelmondragon/agricontract-backend/api/responses"
	"github.com/angelmondragon/agricontract-backend/api/validators"
	"github.com/angelmondragon/agricontract-backend/internal/marketplace"
	"github.com/angelmondragon/agricontract-backend/internal/views"
	"github.com/angelmondragon/agricontract-backend/pkg/db/models"
	"github.com/angelmondragon/agricontract-backend/pkg/logger"
)

func FactoryDashboard(engine Marketplace, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := actor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		state, err := engine.Snapshot(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, views.BuildFactoryDashboard(*sess, state.Contracts, state.Applications))
	}
}

func FactoryContracts(engine Marketplace, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := actor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		state, err := engine.Snapshot(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, views.FactoryContracts(*sess, state.Contracts, state.Applications))
	}
}

func FactoryCreateContract(engine Marketplace, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body marketplace.CreateContractRequest
		if err := validators.DecodeJSONBody(w, r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		contract, err := engine.CreateContract(r.Context(), sessionOrNil(r), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, contract)
	}
}

func FactoryApplications(engine Marketplace, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := actor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		state, err := engine.Snapshot(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, views.FactoryApplications(*sess, state.Contracts, state.Applications))
	}
}

func FactoryApprove(engine Marketplace, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		applicationID, err := validators.ParseIDParam(r, "applicationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		decision, err := engine.ApproveApplication(r.Context(), sessionOrNil(r), applicationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, decision)
	}
}

func FactoryReject(engine Marketplace, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		applicationID, err := validators.ParseIDParam(r, "applicationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		decision, err := engine.RejectApplication(r.Context(), sessionOrNil(r), applicationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, decision)
	}
}

// sessionOrNil hands the raw actor to the engine, which runs its own guard.
func sessionOrNil(r *http.Request) *models.Session {
	return middleware.SessionFromContext(r.Context())
}
