package enums

import "fmt"

// ApplicationStatus is the per-farmer record of a bid.
type ApplicationStatus string

const (
	ApplicationStatusApplied  ApplicationStatus = "Applied"
	ApplicationStatusApproved ApplicationStatus = "Approved"
	ApplicationStatusRejected ApplicationStatus = "Rejected"
)

var validApplicationStatuses = []ApplicationStatus{
	ApplicationStatusApplied,
	ApplicationStatusApproved,
	ApplicationStatusRejected,
}

func (s ApplicationStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ApplicationStatus.
func (s ApplicationStatus) IsValid() bool {
	for _, candidate := range validApplicationStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseApplicationStatus converts raw input into an ApplicationStatus.
func ParseApplicationStatus(value string) (ApplicationStatus, error) {
	for _, candidate := range validApplicationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid application status %q", value)
}
