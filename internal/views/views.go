// Package views derives the per-role lists, stats and dashboards from the
// current contracts and applications. Every function is pure.
package views

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/angelmondragon/agricontract-backend/pkg/db/models"
	"github.com/angelmondragon/agricontract-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

var (
	thousand = decimal.NewFromInt(1_000)
	million  = decimal.NewFromInt(1_000_000)
)

type FarmerApplicationRow struct {
	Application models.Application `json:"application"`
	Contract    models.Contract    `json:"contract"`
	StatusLabel string             `json:"statusLabel"`
}

type FarmerStats struct {
	Available int `json:"available"`
	Pending   int `json:"pending"`
	Active    int `json:"active"`
}

type FactoryContractRow struct {
	Contract   models.Contract `json:"contract"`
	Applicants int             `json:"applicants"`
	Approved   int             `json:"approved"`
}

type FactoryApplicationRow struct {
	Application    models.Application `json:"application"`
	Contract       models.Contract    `json:"contract"`
	FarmerInitials string             `json:"farmerInitials"`
	StatusLabel    string             `json:"statusLabel"`
	// Actionable is true while the application still awaits a decision.
	Actionable bool `json:"actionable"`
}

type FactoryStats struct {
	TotalContracts   int             `json:"totalContracts"`
	ActiveHarvests   int             `json:"activeHarvests"`
	PendingApprovals int             `json:"pendingApprovals"`
	TotalValue       decimal.Decimal `json:"totalValue"`
	TotalValueLabel  string          `json:"totalValueLabel"`
}

type FarmerDashboard struct {
	Session      models.Session         `json:"session"`
	FirstName    string                 `json:"firstName"`
	RoleLabel    string                 `json:"roleLabel"`
	Stats        FarmerStats            `json:"stats"`
	Available    []AvailableContractRow `json:"availableContracts"`
	Applications []FarmerApplicationRow `json:"applications"`
}

type FactoryDashboard struct {
	Session      models.Session          `json:"session"`
	FirstName    string                  `json:"firstName"`
	RoleLabel    string                  `json:"roleLabel"`
	Stats        FactoryStats            `json:"stats"`
	Contracts    []FactoryContractRow    `json:"contracts"`
	Applications []FactoryApplicationRow `json:"applications"`
	PendingBadge string                  `json:"pendingBadge"`
}

// AvailableContractRow is a contract the farmer has not applied to. CanApply
// is false once the contract has been awarded to someone else.
type AvailableContractRow struct {
	models.Contract
	CanApply bool `json:"canApply"`
}

// FarmerAvailableContracts lists every contract the farmer has not applied to.
func FarmerAvailableContracts(sess models.Session, contracts []models.Contract, apps []models.Application) []AvailableContractRow {
	applied := appliedContractIDs(sess.ID, apps)
	out := []AvailableContractRow{}
	for _, c := range contracts {
		if _, ok := applied[c.ID]; !ok {
			out = append(out, AvailableContractRow{
				Contract: c,
				CanApply: c.Status != enums.ContractStatusApproved,
			})
		}
	}
	return out
}

// FarmerApplications joins the farmer's applications with their contracts.
// Applications whose contract is missing are skipped.
func FarmerApplications(sess models.Session, contracts []models.Contract, apps []models.Application) []FarmerApplicationRow {
	byID := indexContracts(contracts)
	out := []FarmerApplicationRow{}
	for _, a := range apps {
		if a.FarmerID != sess.ID {
			continue
		}
		c, ok := byID[a.ContractID]
		if !ok {
			continue
		}
		out = append(out, FarmerApplicationRow{Application: a, Contract: c, StatusLabel: StatusLabel(a.Status)})
	}
	return out
}

func FarmerStatsFor(sess models.Session, contracts []models.Contract, apps []models.Application) FarmerStats {
	stats := FarmerStats{Available: len(FarmerAvailableContracts(sess, contracts, apps))}
	for _, a := range apps {
		if a.FarmerID != sess.ID {
			continue
		}
		switch a.Status {
		case enums.ApplicationStatusApplied:
			stats.Pending++
		case enums.ApplicationStatusApproved:
			stats.Active++
		}
	}
	return stats
}

// FactoryContracts lists only the contracts created by the factory.
func FactoryContracts(sess models.Session, contracts []models.Contract, apps []models.Application) []FactoryContractRow {
	out := []FactoryContractRow{}
	for _, c := range contracts {
		if c.CreatedByID != sess.ID {
			continue
		}
		row := FactoryContractRow{Contract: c}
		for _, a := range apps {
			if a.ContractID != c.ID {
				continue
			}
			row.Applicants++
			if a.Status == enums.ApplicationStatusApproved {
				row.Approved++
			}
		}
		out = append(out, row)
	}
	return out
}

// FactoryApplications lists applications received on the factory's contracts.
func FactoryApplications(sess models.Session, contracts []models.Contract, apps []models.Application) []FactoryApplicationRow {
	own := ownContracts(sess.ID, contracts)
	out := []FactoryApplicationRow{}
	for _, a := range apps {
		c, ok := own[a.ContractID]
		if !ok {
			continue
		}
		out = append(out, FactoryApplicationRow{
			Application:    a,
			Contract:       c,
			FarmerInitials: Initials(a.FarmerName),
			StatusLabel:    StatusLabel(a.Status),
			Actionable:     a.Status == enums.ApplicationStatusApplied,
		})
	}
	return out
}

func FactoryStatsFor(sess models.Session, contracts []models.Contract, apps []models.Application) FactoryStats {
	own := ownContracts(sess.ID, contracts)
	stats := FactoryStats{TotalContracts: len(own), TotalValue: decimal.Zero}
	for _, c := range contracts {
		if c.CreatedByID != sess.ID {
			continue
		}
		stats.TotalValue = stats.TotalValue.Add(decimal.NewFromInt(c.Quantity).Mul(decimal.NewFromInt(c.PricePerUnit)))
	}
	for _, a := range apps {
		if _, ok := own[a.ContractID]; !ok {
			continue
		}
		switch a.Status {
		case enums.ApplicationStatusApproved:
			stats.ActiveHarvests++
		case enums.ApplicationStatusApplied:
			stats.PendingApprovals++
		}
	}
	stats.TotalValueLabel = FormatRupees(stats.TotalValue)
	return stats
}

func BuildFarmerDashboard(sess models.Session, contracts []models.Contract, apps []models.Application) FarmerDashboard {
	return FarmerDashboard{
		Session:      sess,
		FirstName:    FirstName(sess.Name),
		RoleLabel:    sess.Role.DisplayName(),
		Stats:        FarmerStatsFor(sess, contracts, apps),
		Available:    FarmerAvailableContracts(sess, contracts, apps),
		Applications: FarmerApplications(sess, contracts, apps),
	}
}

func BuildFactoryDashboard(sess models.Session, contracts []models.Contract, apps []models.Application) FactoryDashboard {
	stats := FactoryStatsFor(sess, contracts, apps)
	return FactoryDashboard{
		Session:      sess,
		FirstName:    FirstName(sess.Name),
		RoleLabel:    sess.Role.DisplayName(),
		Stats:        stats,
		Contracts:    FactoryContracts(sess, contracts, apps),
		Applications: FactoryApplications(sess, contracts, apps),
		PendingBadge: pendingBadge(stats.PendingApprovals),
	}
}

// FormatRupees renders Rs. X.XM, Rs. Xk or Rs. X.
func FormatRupees(value decimal.Decimal) string {
	switch {
	case value.GreaterThanOrEqual(million):
		return "Rs. " + value.Div(million).StringFixed(1) + "M"
	case value.GreaterThanOrEqual(thousand):
		return "Rs. " + value.Div(thousand).StringFixed(0) + "k"
	default:
		return "Rs. " + value.String()
	}
}

// StatusLabel is the badge text shown for an application.
func StatusLabel(status enums.ApplicationStatus) string {
	switch status {
	case enums.ApplicationStatusApproved:
		return "Approved"
	case enums.ApplicationStatusRejected:
		return "Rejected"
	default:
		return "Pending"
	}
}

// Initials takes the first letter of every word, upper-cased.
func Initials(name string) string {
	var b strings.Builder
	for _, word := range strings.Fields(name) {
		r, _ := utf8.DecodeRuneInString(word)
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

func FirstName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func pendingBadge(n int) string {
	return strconv.Itoa(n) + " Pending"
}

func appliedContractIDs(farmerID string, apps []models.Application) map[int64]struct{} {
	out := map[int64]struct{}{}
	for _, a := range apps {
		if a.FarmerID == farmerID {
			out[a.ContractID] = struct{}{}
		}
	}
	return out
}

func indexContracts(contracts []models.Contract) map[int64]models.Contract {
	out := make(map[int64]models.Contract, len(contracts))
	for _, c := range contracts {
		out[c.ID] = c
	}
	return out
}

func ownContracts(factoryID string, contracts []models.Contract) map[int64]models.Contract {
	out := map[int64]models.Contract{}
	for _, c := range contracts {
		if c.CreatedByID == factoryID {
			out[c.ID] = c
		}
	}
	return out
}
