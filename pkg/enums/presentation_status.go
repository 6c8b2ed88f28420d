package enums

import "fmt"

// PresentationStatus is the order state rendered to consumers. Unlike
// OrderStatus it distinguishes orders whose event time has already passed.
type PresentationStatus string

const (
	PresentationStatusAccepted  PresentationStatus = "accepted"
	PresentationStatusPending   PresentationStatus = "pending"
	PresentationStatusCancelled PresentationStatus = "cancelled"
	PresentationStatusArchived  PresentationStatus = "archived"
)

var validPresentationStatuses = []PresentationStatus{
	PresentationStatusAccepted,
	PresentationStatusPending,
	PresentationStatusCancelled,
	PresentationStatusArchived,
}

// String implements fmt.Stringer.
func (p PresentationStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PresentationStatus.
func (p PresentationStatus) IsValid() bool {
	for _, candidate := range validPresentationStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePresentationStatus converts raw input into a PresentationStatus.
func ParsePresentationStatus(value string) (PresentationStatus, error) {
	for _, candidate := range validPresentationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid presentation status %q", value)
}
