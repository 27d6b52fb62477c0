package gateways

import (
	"strings"

	"github.com/paclead/splitsettle/pkg/enums"
)

// Mapping is the outcome of reducing a raw gateway status. SaleStatus is nil
// when the event must not touch the sale lifecycle.
type Mapping struct {
	SaleStatus    *enums.SaleStatus
	PaymentStatus enums.PaymentStatus
	EventType     enums.SettlementEventType
}

type statusOutcome struct {
	payment enums.PaymentStatus
	event   enums.SettlementEventType
}

var (
	outcomePaid        = statusOutcome{enums.PaymentStatusPaid, enums.SettlementEventPaid}
	outcomeRefunded    = statusOutcome{enums.PaymentStatusRefunded, enums.SettlementEventRefunded}
	outcomeChargedback = statusOutcome{enums.PaymentStatusChargedback, enums.SettlementEventChargedback}
	outcomePending     = statusOutcome{enums.PaymentStatusPending, enums.SettlementEventOther}
	outcomeFailed      = statusOutcome{enums.PaymentStatusFailed, enums.SettlementEventOther}
	outcomeCancelled   = statusOutcome{enums.PaymentStatusCancelled, enums.SettlementEventOther}
)

// Raw statuses are matched case-insensitively.
var statusTables = map[enums.Gateway]map[string]statusOutcome{
	enums.GatewayStripe: {
		"payment_intent.succeeded":                 outcomePaid,
		"charge.succeeded":                         outcomePaid,
		"checkout.session.completed":               outcomePaid,
		"checkout.session.async_payment_succeeded": outcomePaid,
		"charge.refunded":                          outcomeRefunded,
		"charge.dispute.created":                   outcomeChargedback,
		"charge.dispute.funds_withdrawn":           outcomeChargedback,
		"payment_intent.created":                   outcomePending,
		"payment_intent.processing":                outcomePending,
		"payment_intent.requires_action":           outcomePending,
		"charge.pending":                           outcomePending,
		"payment_intent.payment_failed":            outcomeFailed,
		"charge.failed":                            outcomeFailed,
		"checkout.session.async_payment_failed":    outcomeFailed,
		"payment_intent.canceled":                  outcomeCancelled,
		"checkout.session.expired":                 outcomeCancelled,
	},
	enums.GatewaySquare: {
		"completed":                         outcomePaid,
		"refunded":                          outcomeRefunded,
		"dispute_evidence_required":         outcomeChargedback,
		"dispute_processing":                outcomeChargedback,
		"dispute_lost":                      outcomeChargedback,
		"dispute_accepted":                  outcomeChargedback,
		"dispute_won":                       {enums.PaymentStatusPaid, enums.SettlementEventOther},
		"dispute_inquiry_evidence_required": outcomePending,
		"dispute_inquiry_processing":        outcomePending,
		"approved":                          outcomePending,
		"pending":                           outcomePending,
		"failed":                            outcomeFailed,
		"canceled":                          outcomeCancelled,
	},
	enums.GatewayAsaas: {
		"payment_confirmed":                    outcomePaid,
		"payment_received":                     outcomePaid,
		"payment_received_in_cash":             outcomePaid,
		"payment_refunded":                     outcomeRefunded,
		"payment_chargeback_requested":         outcomeChargedback,
		"payment_chargeback_dispute":           outcomeChargedback,
		"payment_awaiting_chargeback_reversal": outcomeChargedback,
		"payment_created":                      outcomePending,
		"payment_updated":                      outcomePending,
		"payment_awaiting_risk_analysis":       outcomePending,
		"payment_approved_by_risk_analysis":    outcomePending,
		"payment_refund_in_progress":           outcomePending,
		"payment_overdue":                      outcomeFailed,
		"payment_reproved_by_risk_analysis":    outcomeFailed,
		"payment_credit_card_capture_refused":  outcomeFailed,
		"payment_deleted":                      outcomeCancelled,
	},
	enums.GatewayPagarme: {
		"order.paid":            outcomePaid,
		"charge.paid":           outcomePaid,
		"charge.refunded":       outcomeRefunded,
		"charge.chargedback":    outcomeChargedback,
		"order.created":         outcomePending,
		"charge.pending":        outcomePending,
		"charge.processing":     outcomePending,
		"charge.underpaid":      outcomePending,
		"order.payment_failed":  outcomeFailed,
		"charge.payment_failed": outcomeFailed,
		"order.canceled":        outcomeCancelled,
		"order.closed":          outcomePending,
	},
}

var saleStatusByEvent = map[enums.SettlementEventType]enums.SaleStatus{
	enums.SettlementEventPaid:        enums.SaleStatusPaid,
	enums.SettlementEventRefunded:    enums.SaleStatusRefunded,
	enums.SettlementEventChargedback: enums.SaleStatusChargedback,
}

// MapStatus reduces a raw gateway status. Unknown gateways or statuses map to
// EventType other with no sale status and an unknown payment status.
func MapStatus(gateway enums.Gateway, rawStatus string) Mapping {
	outcome, ok := statusTables[gateway][strings.ToLower(strings.TrimSpace(rawStatus))]
	if !ok {
		return Mapping{
			PaymentStatus: enums.PaymentStatusUnknown,
			EventType:     enums.SettlementEventOther,
		}
	}
	mapping := Mapping{
		PaymentStatus: outcome.payment,
		EventType:     outcome.event,
	}
	if status, ok := saleStatusByEvent[outcome.event]; ok {
		mapping.SaleStatus = &status
	}
	return mapping
}
