package storage

import (
	"github.com/angelmondragon/agricontract-backend/pkg/db/models"
	"github.com/angelmondragon/agricontract-backend/pkg/enums"
)

// SystemOwnerID owns the seed contracts. No registered user can have this id.
const SystemOwnerID = "system"

// DefaultContracts returns a fresh copy of the demonstration contracts used
// when a namespace has no contracts collection yet.
func DefaultContracts() []models.Contract {
	return []models.Contract{
		{
			ID:           1,
			Crop:         "Wheat",
			Quantity:     50,
			PricePerUnit: 2500,
			Duration:     6,
			Description:  "Looking for quality wheat suppliers for our flour mill. Must meet organic standards.",
			CreatedBy:    "Sunrise Foods Pvt. Ltd.",
			CreatedByID:  SystemOwnerID,
			Status:       enums.ContractStatusOpen,
		},
		{
			ID:           2,
			Crop:         "Rice",
			Quantity:     100,
			PricePerUnit: 3200,
			Duration:     8,
			Description:  "Basmati rice required for export. Premium grade only.",
			CreatedBy:    "Golden Grain Exports",
			CreatedByID:  SystemOwnerID,
			Status:       enums.ContractStatusOpen,
		},
		{
			ID:           3,
			Crop:         "Sugarcane",
			Quantity:     200,
			PricePerUnit: 350,
			Duration:     12,
			Description:  "Year-long supply contract for our sugar refinery.",
			CreatedBy:    "SweetLife Sugar Mills",
			CreatedByID:  SystemOwnerID,
			Status:       enums.ContractStatusOpen,
		},
		{
			ID:           4,
			Crop:         "Cotton",
			Quantity:     75,
			PricePerUnit: 6500,
			Duration:     10,
			Description:  "High-quality cotton for textile manufacturing. Competitive pricing guaranteed.",
			CreatedBy:    "FabriCo Textiles",
			CreatedByID:  SystemOwnerID,
			Status:       enums.ContractStatusOpen,
		},
	}
}
