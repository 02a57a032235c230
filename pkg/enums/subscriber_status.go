package enums

import "fmt"

// SubscriberStatus tracks a subscriber's entitlement state. Provider-reported
// statuses (past_due, unpaid, ...) are stored verbatim on update events, so
// the column also carries values outside the canonical set.
type SubscriberStatus string

const (
	SubscriberStatusInactive  SubscriberStatus = "inactive"
	SubscriberStatusActive    SubscriberStatus = "active"
	SubscriberStatusCancelled SubscriberStatus = "cancelled"
)

var canonicalSubscriberStatuses = []SubscriberStatus{
	SubscriberStatusInactive,
	SubscriberStatusActive,
	SubscriberStatusCancelled,
}

// String implements fmt.Stringer.
func (s SubscriberStatus) String() string {
	return string(s)
}

// IsCanonical reports whether the value belongs to the locally owned set.
func (s SubscriberStatus) IsCanonical() bool {
	for _, candidate := range canonicalSubscriberStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSubscriberStatus converts raw input into a canonical SubscriberStatus.
func ParseSubscriberStatus(value string) (SubscriberStatus, error) {
	for _, candidate := range canonicalSubscriberStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid subscriber status %q", value)
}
