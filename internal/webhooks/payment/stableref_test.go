package payment

import (
	"testing"

	"github.com/paclead/splitsettle/internal/gateways"
	"github.com/paclead/splitsettle/pkg/enums"
)

func TestBuildStableRef(t *testing.T) {
	cases := []struct {
		name    string
		txID    string
		saleID  string
		event   enums.SettlementEventType
		wantRef string
	}{
		{"transaction id wins", "pay_1", "sale-1", enums.SettlementEventPaid, "asaas:pay_1:paid"},
		{"falls back to sale", "", "sale-1", enums.SettlementEventRefunded, "asaas:sale-1:refunded"},
		{"unknown subject", " ", "", enums.SettlementEventOther, "asaas:unknown:other"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := BuildStableRef(enums.GatewayAsaas, tc.txID, tc.saleID, tc.event); got != tc.wantRef {
				t.Fatalf("expected %q got %q", tc.wantRef, got)
			}
		})
	}
}

func TestStableRefIgnoresRawSpelling(t *testing.T) {
	received := gateways.MapStatus(enums.GatewayAsaas, "PAYMENT_RECEIVED")
	confirmed := gateways.MapStatus(enums.GatewayAsaas, "payment_confirmed")

	a := BuildStableRef(enums.GatewayAsaas, "pay_1", "", received.EventType)
	b := BuildStableRef(enums.GatewayAsaas, "pay_1", "", confirmed.EventType)
	if a != b {
		t.Fatalf("expected identical refs, got %q and %q", a, b)
	}
}
