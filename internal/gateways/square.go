package gateways

import (
	"encoding/json"
	"strings"
	"time"

	sq "github.com/square/square-go-sdk"

	"github.com/paclead/splitsettle/pkg/enums"
)

type squareWebhook struct {
	MerchantID string      `json:"merchant_id" validate:"required"`
	Type       string      `json:"type" validate:"required"`
	EventID    string      `json:"event_id"`
	CreatedAt  string      `json:"created_at"`
	Data       *squareData `json:"data" validate:"required"`
}

type squareData struct {
	Type   string       `json:"type"`
	ID     string       `json:"id"`
	Object squareObject `json:"object"`
}

type squareObject struct {
	Payment *sq.Payment    `json:"payment"`
	Refund  *squareRefund  `json:"refund"`
	Dispute *squareDispute `json:"dispute"`
}

type squareRefund struct {
	ID          string    `json:"id"`
	Status      string    `json:"status"`
	PaymentID   string    `json:"payment_id"`
	AmountMoney *sq.Money `json:"amount_money"`
}

type squareDispute struct {
	ID              string    `json:"id"`
	State           string    `json:"state"`
	AmountMoney     *sq.Money `json:"amount_money"`
	DisputedPayment *struct {
		PaymentID string `json:"payment_id"`
	} `json:"disputed_payment"`
}

// SquareNormalizer handles Square payment.*, refund.* and dispute.*
// notifications. Refunds and disputes only carry the payment id, so the sale
// is resolved by transaction id downstream.
type SquareNormalizer struct{}

func (SquareNormalizer) Gateway() enums.Gateway { return enums.GatewaySquare }

func (SquareNormalizer) Detect(shape Shape) bool {
	if !shape.Has("merchant_id") || !shape.Has("data") {
		return false
	}
	kind := shape.String("type")
	return strings.HasPrefix(kind, "payment.") ||
		strings.HasPrefix(kind, "refund.") ||
		strings.HasPrefix(kind, "dispute.")
}

func (SquareNormalizer) Normalize(body []byte) Result {
	var payload squareWebhook
	if err := json.Unmarshal(body, &payload); err != nil {
		return Unrecognized("square payload shape mismatch: " + err.Error())
	}
	if err := validate.Struct(payload); err != nil {
		return Unrecognized(validationReason("square", err))
	}

	var (
		out Event
		ok  bool
	)
	obj := payload.Data.Object
	switch {
	case strings.HasPrefix(payload.Type, "payment."):
		out, ok = fromSquarePayment(obj.Payment)
	case strings.HasPrefix(payload.Type, "refund."):
		out, ok = fromSquareRefund(obj.Refund)
	case strings.HasPrefix(payload.Type, "dispute."):
		out, ok = fromSquareDispute(obj.Dispute)
	}
	if !ok {
		return Unrecognized("square payload missing " + payload.Data.Type + " object")
	}

	out.Gateway = enums.GatewaySquare
	if parsed, err := time.Parse(time.RFC3339, payload.CreatedAt); err == nil {
		out.OccurredAt = parsed.UTC()
	}
	return Recognized(out)
}

func fromSquarePayment(p *sq.Payment) (Event, bool) {
	if p == nil || deref(p.GetID()) == "" {
		return Event{}, false
	}
	var fee int64
	for _, pf := range p.GetProcessingFee() {
		if pf != nil {
			fee += moneyCents(pf.GetAmountMoney())
		}
	}
	return Event{
		SaleID:        firstNonEmpty(deref(p.GetReferenceID()), deref(p.GetNote())),
		RawStatus:     deref(p.GetStatus()),
		TransactionID: deref(p.GetID()),
		PaymentMethod: enums.NormalizePaymentMethod(deref(p.GetSourceType())),
		AmountCents:   moneyCents(p.GetAmountMoney()),
		FeeCents:      fee,
	}, true
}

// Completed refunds are reported with the synthetic raw status "refunded" so
// they map like a payment status would.
func fromSquareRefund(r *squareRefund) (Event, bool) {
	if r == nil || r.PaymentID == "" {
		return Event{}, false
	}
	status := "refund_" + strings.ToLower(r.Status)
	if strings.EqualFold(r.Status, "COMPLETED") {
		status = "refunded"
	}
	return Event{
		RawStatus:     status,
		TransactionID: r.PaymentID,
		PaymentMethod: enums.PaymentMethodCreditCard,
		AmountCents:   moneyCents(r.AmountMoney),
	}, true
}

func fromSquareDispute(d *squareDispute) (Event, bool) {
	if d == nil || d.DisputedPayment == nil || d.DisputedPayment.PaymentID == "" {
		return Event{}, false
	}
	return Event{
		RawStatus:     "dispute_" + strings.ToLower(d.State),
		TransactionID: d.DisputedPayment.PaymentID,
		PaymentMethod: enums.PaymentMethodCreditCard,
		AmountCents:   moneyCents(d.AmountMoney),
	}, true
}

func moneyCents(m *sq.Money) int64 {
	if m == nil || m.GetAmount() == nil {
		return 0
	}
	return *m.GetAmount()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
