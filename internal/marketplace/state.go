package marketplace

import (
	"github.com/angelmondragon/agricontract-backend/pkg/db/models"
)

// State is the working copy a command transition operates on.
type State struct {
	Contracts    []models.Contract
	Applications []models.Application
}

func (s State) clone() State {
	out := State{
		Contracts:    make([]models.Contract, len(s.Contracts)),
		Applications: make([]models.Application, len(s.Applications)),
	}
	copy(out.Contracts, s.Contracts)
	copy(out.Applications, s.Applications)
	return out
}

func (s State) contractIndex(id int64) int {
	for i, c := range s.Contracts {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (s State) applicationIndex(id int64) int {
	for i, a := range s.Applications {
		if a.ID == id {
			return i
		}
	}
	return -1
}

func (s State) hasApplication(contractID int64, farmerID string) bool {
	for _, a := range s.Applications {
		if a.ContractID == contractID && a.FarmerID == farmerID {
			return true
		}
	}
	return false
}

// nextContractID is strictly greater than every existing contract id.
func (s State) nextContractID() int64 {
	var max int64
	for _, c := range s.Contracts {
		if c.ID > max {
			max = c.ID
		}
	}
	return max + 1
}

func (s State) nextApplicationID() int64 {
	var max int64
	for _, a := range s.Applications {
		if a.ID > max {
			max = a.ID
		}
	}
	return max + 1
}
