package marketplace

import (
	"strings"

	"github.com/angelmondragon/agricontract-backend/pkg/db/models"
)

// placeholderCrop is what an untouched crop picker submits.
const placeholderCrop = "Select Crop"

// CreateContractRequest carries the factory contract form.
type CreateContractRequest struct {
	Crop         string `json:"crop" validate:"required"`
	Quantity     int64  `json:"quantity" validate:"gt=0"`
	PricePerUnit int64  `json:"pricePerUnit" validate:"gt=0"`
	Duration     int    `json:"duration" validate:"gte=0"`
	DeliveryDate string `json:"deliveryDate" validate:"omitempty,ymd"`
	Description  string `json:"description" validate:"max=2000"`
}

func (r CreateContractRequest) normalized() CreateContractRequest {
	out := r
	out.Crop = strings.TrimSpace(r.Crop)
	if strings.EqualFold(out.Crop, placeholderCrop) {
		out.Crop = ""
	}
	out.DeliveryDate = strings.TrimSpace(r.DeliveryDate)
	out.Description = strings.TrimSpace(r.Description)
	return out
}

// Decision is the result of approving or rejecting an application.
type Decision struct {
	Application  models.Application `json:"application"`
	Contract     models.Contract    `json:"contract"`
	AutoRejected []int64            `json:"autoRejectedIds"`
	// Changed is false when the call was an idempotent repeat.
	Changed bool `json:"changed"`
}
