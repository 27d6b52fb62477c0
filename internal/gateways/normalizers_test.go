package gateways

import (
	"testing"
	"time"

	"github.com/paclead/splitsettle/pkg/enums"
)

func mustRecognize(t *testing.T, r Result) Event {
	t.Helper()
	event, ok := r.Event()
	if !ok {
		t.Fatalf("expected recognized event, got reason %q", r.Reason())
	}
	return event
}

func TestStripeNormalizePaymentIntent(t *testing.T) {
	event := mustRecognize(t, StripeNormalizer{}.Normalize([]byte(stripePaymentIntentSucceeded)))

	if event.SaleID != testSaleID {
		t.Fatalf("unexpected sale id %q", event.SaleID)
	}
	if event.TransactionID != "pi_3PbXyZ" {
		t.Fatalf("unexpected transaction id %q", event.TransactionID)
	}
	if event.RawStatus != "payment_intent.succeeded" {
		t.Fatalf("unexpected raw status %q", event.RawStatus)
	}
	if event.AmountCents != 10000 || event.FeeCents != 500 {
		t.Fatalf("unexpected amounts %d/%d", event.AmountCents, event.FeeCents)
	}
	if event.PaymentMethod != enums.PaymentMethodCreditCard {
		t.Fatalf("unexpected method %q", event.PaymentMethod)
	}
	if !event.OccurredAt.Equal(time.Unix(1718210703, 0)) {
		t.Fatalf("unexpected occurred at %v", event.OccurredAt)
	}
}

func TestStripeChargeAndDisputeShareIntentID(t *testing.T) {
	refund := mustRecognize(t, StripeNormalizer{}.Normalize([]byte(stripeChargeRefunded)))
	dispute := mustRecognize(t, StripeNormalizer{}.Normalize([]byte(stripeDisputeCreated)))

	if refund.TransactionID != "pi_3PbXyZ" || dispute.TransactionID != "pi_3PbXyZ" {
		t.Fatalf("expected payment intent ids, got %q and %q", refund.TransactionID, dispute.TransactionID)
	}
	if refund.AmountCents != 10000 {
		t.Fatalf("expected refunded amount, got %d", refund.AmountCents)
	}
	if dispute.SaleID != "" {
		t.Fatalf("dispute without metadata should leave sale id empty, got %q", dispute.SaleID)
	}
}

func TestStripeUnhandledTypeIsUnrecognized(t *testing.T) {
	body := `{"id":"evt_1","object":"event","type":"customer.created","data":{"object":{"id":"cus_1"}}}`
	r := StripeNormalizer{}.Normalize([]byte(body))
	if _, ok := r.Event(); ok {
		t.Fatal("expected customer.created to be unrecognized")
	}
	if r.Reason() == "" {
		t.Fatal("expected a reason")
	}
}

func TestSquareNormalizePayment(t *testing.T) {
	event := mustRecognize(t, SquareNormalizer{}.Normalize([]byte(squarePaymentCompleted)))

	if event.SaleID != testSaleID || event.TransactionID != "R2Z9Gm" {
		t.Fatalf("unexpected ids sale=%q tx=%q", event.SaleID, event.TransactionID)
	}
	if event.RawStatus != "COMPLETED" {
		t.Fatalf("unexpected raw status %q", event.RawStatus)
	}
	if event.FeeCents != 500 {
		t.Fatalf("expected summed processing fee 500, got %d", event.FeeCents)
	}
	if event.PaymentMethod != enums.PaymentMethodCreditCard {
		t.Fatalf("expected CARD to map to credit card, got %q", event.PaymentMethod)
	}
}

func TestSquareRefundAndDispute(t *testing.T) {
	refund := mustRecognize(t, SquareNormalizer{}.Normalize([]byte(squareRefundCompleted)))
	if refund.RawStatus != "refunded" || refund.TransactionID != "R2Z9Gm" {
		t.Fatalf("unexpected refund event %+v", refund)
	}
	if got := MapStatus(enums.GatewaySquare, refund.RawStatus).EventType; got != enums.SettlementEventRefunded {
		t.Fatalf("expected refunded event type, got %q", got)
	}

	dispute := mustRecognize(t, SquareNormalizer{}.Normalize([]byte(squareDisputeCreated)))
	if dispute.RawStatus != "dispute_evidence_required" {
		t.Fatalf("unexpected dispute status %q", dispute.RawStatus)
	}
	if got := MapStatus(enums.GatewaySquare, dispute.RawStatus).EventType; got != enums.SettlementEventChargedback {
		t.Fatalf("expected chargedback event type, got %q", got)
	}
}

func TestSquareMissingObjectFailsClosed(t *testing.T) {
	body := `{"merchant_id":"M","type":"payment.updated","data":{"type":"payment","object":{}}}`
	if _, ok := (SquareNormalizer{}).Normalize([]byte(body)).Event(); ok {
		t.Fatal("expected missing payment object to be unrecognized")
	}
}

func TestAsaasNormalizeConvertsReais(t *testing.T) {
	event := mustRecognize(t, AsaasNormalizer{}.Normalize([]byte(asaasPaymentReceived)))

	if event.AmountCents != 10000 || event.FeeCents != 500 {
		t.Fatalf("unexpected amounts %d/%d", event.AmountCents, event.FeeCents)
	}
	if event.PaymentMethod != enums.PaymentMethodPix {
		t.Fatalf("unexpected method %q", event.PaymentMethod)
	}
	if event.TransactionID != "pay_080225913252" || event.SaleID != testSaleID {
		t.Fatalf("unexpected ids tx=%q sale=%q", event.TransactionID, event.SaleID)
	}
	want := time.Date(2024, 6, 12, 16, 45, 3, 0, time.UTC)
	if !event.OccurredAt.Equal(want) {
		t.Fatalf("expected %v, got %v", want, event.OccurredAt)
	}
}

func TestAsaasMissingPaymentIDFailsClosed(t *testing.T) {
	body := `{"event":"PAYMENT_RECEIVED","payment":{"value":10}}`
	r := AsaasNormalizer{}.Normalize([]byte(body))
	if _, ok := r.Event(); ok {
		t.Fatal("expected validation failure")
	}
	if r.Reason() != "asaas payload invalid: asaasWebhook.payment.id required" {
		t.Fatalf("unexpected reason %q", r.Reason())
	}
}

func TestPagarmeOrderUsesChargeID(t *testing.T) {
	event := mustRecognize(t, PagarmeNormalizer{}.Normalize([]byte(pagarmeOrderPaid)))

	if event.TransactionID != "ch_K6Wd8" {
		t.Fatalf("expected first charge id, got %q", event.TransactionID)
	}
	if event.SaleID != testSaleID {
		t.Fatalf("expected sale id from code, got %q", event.SaleID)
	}
	if event.FeeCents != 500 || event.InterestCents != 120 {
		t.Fatalf("unexpected metadata amounts %d/%d", event.FeeCents, event.InterestCents)
	}
	if event.PaymentMethod != enums.PaymentMethodCreditCard {
		t.Fatalf("unexpected method %q", event.PaymentMethod)
	}
}

func TestPagarmeChargeResolvesOrderCode(t *testing.T) {
	event := mustRecognize(t, PagarmeNormalizer{}.Normalize([]byte(pagarmeChargeChargedback)))

	if event.TransactionID != "ch_K6Wd8" || event.SaleID != testSaleID {
		t.Fatalf("unexpected ids tx=%q sale=%q", event.TransactionID, event.SaleID)
	}
	if got := MapStatus(enums.GatewayPagarme, event.RawStatus).EventType; got != enums.SettlementEventChargedback {
		t.Fatalf("expected chargedback, got %q", got)
	}
}
