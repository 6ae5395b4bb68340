package controllers

import (
	"net/http"

	"github.com/angelmondragon/agricontract-backend/api/responses"
	"github.com/angelmondragon/agricontract-backend/api/validators"
	"github.com/angelmondragon/agricontract-backend/internal/views"
	"github.com/angelmondragon/agricontract-backend/pkg/logger"
)

func FarmerDashboard(engine Marketplace, logg *logger.Logger) http.HandlerFunc {
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
		responses.WriteSuccess(w, views.BuildFarmerDashboard(*sess, state.Contracts, state.Applications))
	}
}

func FarmerAvailableContracts(engine Marketplace, logg *logger.Logger) http.HandlerFunc {
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
		responses.WriteSuccess(w, views.FarmerAvailableContracts(*sess, state.Contracts, state.Applications))
	}
}

func FarmerApplications(engine Marketplace, logg *logger.Logger) http.HandlerFunc {
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
		responses.WriteSuccess(w, views.FarmerApplications(*sess, state.Contracts, state.Applications))
	}
}

func FarmerApply(engine Marketplace, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		contractID, err := validators.ParseIDParam(r, "contractId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		app, err := engine.ApplyToContract(r.Context(), sessionOrNil(r), contractID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, app)
	}
}
