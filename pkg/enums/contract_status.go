package enums

import "fmt"

// ContractStatus tracks a contract through OPEN -> APPLIED -> APPROVED.
type ContractStatus string

const (
	ContractStatusOpen     ContractStatus = "OPEN"
	ContractStatusApplied  ContractStatus = "APPLIED"
	ContractStatusApproved ContractStatus = "APPROVED"
)

var validContractStatuses = []ContractStatus{
	ContractStatusOpen,
	ContractStatusApplied,
	ContractStatusApproved,
}

func (s ContractStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ContractStatus.
func (s ContractStatus) IsValid() bool {
	return s.rank() >= 0
}

// CanAdvanceTo reports whether moving to next keeps the status monotonic.
// Staying in place is allowed; going backwards never is.
func (s ContractStatus) CanAdvanceTo(next ContractStatus) bool {
	from, to := s.rank(), next.rank()
	if from < 0 || to < 0 {
		return false
	}
	return to >= from
}

func (s ContractStatus) rank() int {
	for i, candidate := range validContractStatuses {
		if candidate == s {
			return i
		}
	}
	return -1
}

// ParseContractStatus converts raw input into a ContractStatus.
func ParseContractStatus(value string) (ContractStatus, error) {
	for _, candidate := range validContractStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid contract status %q", value)
}
