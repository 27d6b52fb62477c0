package config

import (
	"strings"
	"time"
)

// DelayFor returns the settlement delay for a normalized payment method
// (pix, boleto, credit_card). Unknown methods fall back to DefaultDelay.
func (s SettlementConfig) DelayFor(method string) time.Duration {
	switch strings.ToLower(strings.TrimSpace(method)) {
	case "pix":
		return s.PixDelay
	case "boleto", "bank_slip":
		return s.BoletoDelay
	case "credit_card", "card":
		return s.CreditCardDelay
	default:
		return s.DefaultDelay
	}
}
