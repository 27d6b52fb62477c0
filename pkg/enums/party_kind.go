package enums

import "fmt"

// PartyKind classifies a split stakeholder.
type PartyKind string

const (
	PartyKindPlatform  PartyKind = "platform"
	PartyKindIndustry  PartyKind = "industry"
	PartyKindTenant    PartyKind = "tenant"
	PartyKindAffiliate PartyKind = "affiliate"
)

var validPartyKinds = []PartyKind{
	PartyKindPlatform,
	PartyKindIndustry,
	PartyKindTenant,
	PartyKindAffiliate,
}

// String implements fmt.Stringer.
func (k PartyKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known PartyKind.
func (k PartyKind) IsValid() bool {
	for _, candidate := range validPartyKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// LiableForReversal reports whether the party absorbs refunds and
// chargebacks. Platform and industry credits are never debited.
func (k PartyKind) LiableForReversal() bool {
	return k == PartyKindTenant || k == PartyKindAffiliate
}

// ParsePartyKind converts raw input into a PartyKind.
func ParsePartyKind(value string) (PartyKind, error) {
	for _, candidate := range validPartyKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid party kind %q", value)
}
