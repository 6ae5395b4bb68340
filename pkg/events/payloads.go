package events

import (
	"github.com/angelmondragon/agricontract-backend/pkg/db/models"
	"github.com/angelmondragon/agricontract-backend/pkg/enums"
)

type UserRegisteredPayload struct {
	UserID string     `json:"userId"`
	Name   string     `json:"name"`
	Email  string     `json:"email"`
	Role   enums.Role `json:"role"`
}

type SessionPayload struct {
	Session models.Session `json:"session"`
}

type ContractCreatedPayload struct {
	Contract models.Contract `json:"contract"`
}

type ApplicationSubmittedPayload struct {
	Application models.Application `json:"application"`
	Contract    models.Contract    `json:"contract"`
	// FirstApplicant is set when this application moved the contract out of OPEN.
	FirstApplicant bool `json:"firstApplicant"`
}

type ApplicationApprovedPayload struct {
	Application  models.Application `json:"application"`
	Contract     models.Contract    `json:"contract"`
	AutoRejected []int64            `json:"autoRejectedIds"`
}

type ApplicationRejectedPayload struct {
	Application models.Application `json:"application"`
	Contract    models.Contract    `json:"contract"`
}
