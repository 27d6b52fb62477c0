package gateways

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v84"

	"github.com/paclead/splitsettle/pkg/enums"
)

// StripeNormalizer handles Stripe events for payment intents, charges,
// disputes and checkout sessions. The sale id travels in metadata.sale_id.
type StripeNormalizer struct{}

func (StripeNormalizer) Gateway() enums.Gateway { return enums.GatewayStripe }

func (StripeNormalizer) Detect(shape Shape) bool {
	return shape.String("object") == "event" && shape.Has("type") && shape.Has("data")
}

func (StripeNormalizer) Normalize(body []byte) Result {
	var event stripe.Event
	if err := json.Unmarshal(body, &event); err != nil {
		return Unrecognized("stripe payload shape mismatch: " + err.Error())
	}
	if event.ID == "" || event.Type == "" || event.Data == nil || len(event.Data.Raw) == 0 {
		return Unrecognized("stripe payload invalid: id, type and data.object are required")
	}

	kind := string(event.Type)
	var (
		out Event
		err error
	)
	switch {
	case strings.HasPrefix(kind, "payment_intent."):
		out, err = fromPaymentIntent(event.Data.Raw)
	case strings.HasPrefix(kind, "charge.dispute."):
		out, err = fromDispute(event.Data.Raw)
	case strings.HasPrefix(kind, "charge."):
		out, err = fromCharge(event.Data.Raw, kind == "charge.refunded")
	case strings.HasPrefix(kind, "checkout.session."):
		out, err = fromCheckoutSession(event.Data.Raw)
	default:
		return Unrecognized("stripe event type not handled: " + kind)
	}
	if err != nil {
		return Unrecognized("stripe object decode failed: " + err.Error())
	}
	if out.TransactionID == "" {
		return Unrecognized("stripe object missing id")
	}

	out.Gateway = enums.GatewayStripe
	out.RawStatus = kind
	if event.Created > 0 {
		out.OccurredAt = time.Unix(event.Created, 0).UTC()
	}
	return Recognized(out)
}

func fromPaymentIntent(raw json.RawMessage) (Event, error) {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(raw, &pi); err != nil {
		return Event{}, err
	}
	amount := pi.AmountReceived
	if amount == 0 {
		amount = pi.Amount
	}
	method := ""
	if len(pi.PaymentMethodTypes) > 0 {
		method = pi.PaymentMethodTypes[0]
	}
	fee := metadataCents(pi.Metadata, "fee_cents")
	if pi.LatestCharge != nil && pi.LatestCharge.BalanceTransaction != nil {
		fee = pi.LatestCharge.BalanceTransaction.Fee
	}
	return Event{
		SaleID:        strings.TrimSpace(pi.Metadata["sale_id"]),
		TransactionID: pi.ID,
		PaymentMethod: enums.NormalizePaymentMethod(method),
		AmountCents:   amount,
		FeeCents:      fee,
		InterestCents: metadataCents(pi.Metadata, "interest_cents"),
	}, nil
}

func fromCharge(raw json.RawMessage, refund bool) (Event, error) {
	var ch stripe.Charge
	if err := json.Unmarshal(raw, &ch); err != nil {
		return Event{}, err
	}
	amount := ch.Amount
	if refund && ch.AmountRefunded > 0 {
		amount = ch.AmountRefunded
	}
	method := ""
	if ch.PaymentMethodDetails != nil {
		method = string(ch.PaymentMethodDetails.Type)
	}
	fee := metadataCents(ch.Metadata, "fee_cents")
	if ch.BalanceTransaction != nil {
		fee = ch.BalanceTransaction.Fee
	}
	return Event{
		SaleID:        strings.TrimSpace(ch.Metadata["sale_id"]),
		TransactionID: chargeTransactionID(&ch),
		PaymentMethod: enums.NormalizePaymentMethod(method),
		AmountCents:   amount,
		FeeCents:      fee,
		InterestCents: metadataCents(ch.Metadata, "interest_cents"),
	}, nil
}

func fromDispute(raw json.RawMessage) (Event, error) {
	var d stripe.Dispute
	if err := json.Unmarshal(raw, &d); err != nil {
		return Event{}, err
	}
	txID := d.ID
	saleID := d.Metadata["sale_id"]
	switch {
	case d.PaymentIntent != nil && d.PaymentIntent.ID != "":
		txID = d.PaymentIntent.ID
	case d.Charge != nil:
		txID = chargeTransactionID(d.Charge)
	}
	if saleID == "" && d.Charge != nil {
		saleID = d.Charge.Metadata["sale_id"]
	}
	return Event{
		SaleID:        strings.TrimSpace(saleID),
		TransactionID: txID,
		PaymentMethod: enums.PaymentMethodCreditCard,
		AmountCents:   d.Amount,
	}, nil
}

func fromCheckoutSession(raw json.RawMessage) (Event, error) {
	var s stripe.CheckoutSession
	if err := json.Unmarshal(raw, &s); err != nil {
		return Event{}, err
	}
	txID := s.ID
	if s.PaymentIntent != nil && s.PaymentIntent.ID != "" {
		txID = s.PaymentIntent.ID
	}
	method := ""
	if len(s.PaymentMethodTypes) > 0 {
		method = s.PaymentMethodTypes[0]
	}
	return Event{
		SaleID:        firstNonEmpty(s.Metadata["sale_id"], s.ClientReferenceID),
		TransactionID: txID,
		PaymentMethod: enums.NormalizePaymentMethod(method),
		AmountCents:   s.AmountTotal,
		FeeCents:      metadataCents(s.Metadata, "fee_cents"),
		InterestCents: metadataCents(s.Metadata, "interest_cents"),
	}, nil
}

// chargeTransactionID keys charges by their payment intent so that the paid,
// refunded and disputed events of one payment share a transaction id.
func chargeTransactionID(ch *stripe.Charge) string {
	if ch.PaymentIntent != nil && ch.PaymentIntent.ID != "" {
		return ch.PaymentIntent.ID
	}
	return ch.ID
}
