package enums

import "fmt"

// SettlementEventType is the normalized lifecycle event derived from a raw
// gateway status. It is the only status-like value that takes part in
// deduplication.
type SettlementEventType string

const (
	SettlementEventPaid        SettlementEventType = "paid"
	SettlementEventRefunded    SettlementEventType = "refunded"
	SettlementEventChargedback SettlementEventType = "chargedback"
	SettlementEventOther       SettlementEventType = "other"
)

var validSettlementEventTypes = []SettlementEventType{
	SettlementEventPaid,
	SettlementEventRefunded,
	SettlementEventChargedback,
	SettlementEventOther,
}

// String implements fmt.Stringer.
func (e SettlementEventType) String() string {
	return string(e)
}

// IsValid reports whether the value is a known SettlementEventType.
func (e SettlementEventType) IsValid() bool {
	for _, candidate := range validSettlementEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// IsReversal reports whether the event debits liable parties.
func (e SettlementEventType) IsReversal() bool {
	return e == SettlementEventRefunded || e == SettlementEventChargedback
}

// MovesMoney reports whether the split engine acts on the event.
func (e SettlementEventType) MovesMoney() bool {
	return e == SettlementEventPaid || e.IsReversal()
}

// ParseSettlementEventType converts raw input into a SettlementEventType.
func ParseSettlementEventType(value string) (SettlementEventType, error) {
	for _, candidate := range validSettlementEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid settlement event type %q", value)
}
