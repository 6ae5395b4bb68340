package models

import (
	"time"

	"github.com/angelmondragon/agricontract-backend/pkg/enums"
)

// Application is one farmer's bid on one contract.
type Application struct {
	ID         int64                   `json:"id"`
	ContractID int64                   `json:"contractId"`
	FarmerID   string                  `json:"farmerId"`
	FarmerName string                  `json:"farmerName"`
	Status     enums.ApplicationStatus `json:"status"`
	AppliedAt  *time.Time              `json:"appliedAt,omitempty"`
	DecidedAt  *time.Time              `json:"decidedAt,omitempty"`
}
