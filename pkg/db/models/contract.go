package models

import (
	"time"

	"github.com/angelmondragon/agricontract-backend/pkg/enums"
)

// Contract is a crop purchase offer posted by a factory.
type Contract struct {
	ID           int64                `json:"id"`
	Crop         string               `json:"crop"`
	Quantity     int64                `json:"quantity"`
	PricePerUnit int64                `json:"pricePerUnit"`
	Duration     int                  `json:"duration"`
	DeliveryDate string               `json:"deliveryDate,omitempty"`
	Description  string               `json:"description"`
	CreatedBy    string               `json:"createdBy"`
	CreatedByID  string               `json:"createdById"`
	Status       enums.ContractStatus `json:"status"`
	CreatedAt    *time.Time           `json:"createdAt,omitempty"`
}

// Value is quantity times unit price.
func (c Contract) Value() int64 {
	return c.Quantity * c.PricePerUnit
}
