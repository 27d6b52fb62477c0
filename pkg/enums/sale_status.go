package enums

import "fmt"

// SaleStatus tracks the commercial lifecycle of a sale.
type SaleStatus string

const (
	SaleStatusDraft       SaleStatus = "draft"
	SaleStatusPending     SaleStatus = "pending"
	SaleStatusPaid        SaleStatus = "paid"
	SaleStatusDelivered   SaleStatus = "delivered"
	SaleStatusCancelled   SaleStatus = "cancelled"
	SaleStatusRefunded    SaleStatus = "refunded"
	SaleStatusChargedback SaleStatus = "chargedback"
)

var validSaleStatuses = []SaleStatus{
	SaleStatusDraft,
	SaleStatusPending,
	SaleStatusPaid,
	SaleStatusDelivered,
	SaleStatusCancelled,
	SaleStatusRefunded,
	SaleStatusChargedback,
}

// saleStatusRank orders statuses so webhook replays cannot move a sale
// backwards. Terminal reversal states share the top rank.
var saleStatusRank = map[SaleStatus]int{
	SaleStatusDraft:       0,
	SaleStatusPending:     1,
	SaleStatusCancelled:   1,
	SaleStatusPaid:        2,
	SaleStatusDelivered:   3,
	SaleStatusRefunded:    4,
	SaleStatusChargedback: 4,
}

// String implements fmt.Stringer.
func (s SaleStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SaleStatus.
func (s SaleStatus) IsValid() bool {
	for _, candidate := range validSaleStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// CanAdvanceTo reports whether moving from s to next keeps the lifecycle
// monotonic. Unknown current statuses accept any valid target.
func (s SaleStatus) CanAdvanceTo(next SaleStatus) bool {
	if !next.IsValid() || s == next {
		return false
	}
	current, ok := saleStatusRank[s]
	if !ok {
		return true
	}
	return saleStatusRank[next] > current
}

// ParseSaleStatus converts raw input into a SaleStatus.
func ParseSaleStatus(value string) (SaleStatus, error) {
	for _, candidate := range validSaleStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sale status %q", value)
}
