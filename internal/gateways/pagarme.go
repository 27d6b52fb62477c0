package gateways

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/paclead/splitsettle/pkg/enums"
)

type pagarmeWebhook struct {
	ID        string       `json:"id"`
	Type      string       `json:"type" validate:"required"`
	CreatedAt string       `json:"created_at"`
	Data      *pagarmeData `json:"data" validate:"required"`
}

// pagarmeData covers both order and charge objects; order payloads carry
// their charges inline while charge payloads reference their order.
type pagarmeData struct {
	ID              string              `json:"id" validate:"required"`
	Code            string              `json:"code"`
	Amount          int64               `json:"amount"`
	PaidAmount      int64               `json:"paid_amount"`
	Status          string              `json:"status"`
	PaymentMethod   string              `json:"payment_method"`
	Metadata        map[string]string   `json:"metadata"`
	Order           *pagarmeOrderRef    `json:"order"`
	Charges         []pagarmeChargeRef  `json:"charges"`
	LastTransaction *pagarmeTransaction `json:"last_transaction"`
}

type pagarmeOrderRef struct {
	ID       string            `json:"id"`
	Code     string            `json:"code"`
	Metadata map[string]string `json:"metadata"`
}

type pagarmeChargeRef struct {
	ID            string `json:"id"`
	PaymentMethod string `json:"payment_method"`
}

type pagarmeTransaction struct {
	TransactionType string `json:"transaction_type"`
	Installments    int    `json:"installments"`
}

// PagarmeNormalizer handles Pagar.me v5 order.* and charge.* hooks. Amounts
// are already in cents; fees and interest come from metadata set at checkout.
type PagarmeNormalizer struct{}

func (PagarmeNormalizer) Gateway() enums.Gateway { return enums.GatewayPagarme }

func (PagarmeNormalizer) Detect(shape Shape) bool {
	if !shape.Has("data") {
		return false
	}
	kind := shape.String("type")
	if !strings.HasPrefix(kind, "order.") && !strings.HasPrefix(kind, "charge.") {
		return false
	}
	return shape.Has("account") || strings.HasPrefix(shape.String("id"), "hook_")
}

func (PagarmeNormalizer) Normalize(body []byte) Result {
	var payload pagarmeWebhook
	if err := json.Unmarshal(body, &payload); err != nil {
		return Unrecognized("pagarme payload shape mismatch: " + err.Error())
	}
	if err := validate.Struct(payload); err != nil {
		return Unrecognized(validationReason("pagarme", err))
	}

	d := payload.Data
	isOrder := strings.HasPrefix(payload.Type, "order.")

	// Charges are the unit that is refunded or disputed, so order events are
	// keyed by their first charge to share a stable ref with charge events.
	transactionID := d.ID
	method := d.PaymentMethod
	metadata := d.Metadata
	saleID := ""
	if isOrder {
		if len(d.Charges) > 0 && d.Charges[0].ID != "" {
			transactionID = d.Charges[0].ID
			method = firstNonEmpty(method, d.Charges[0].PaymentMethod)
		}
		saleID = firstNonEmpty(metadata["sale_id"], d.Code)
	} else {
		saleID = metadata["sale_id"]
		if d.Order != nil {
			saleID = firstNonEmpty(saleID, d.Order.Metadata["sale_id"], d.Order.Code)
			if len(metadata) == 0 {
				metadata = d.Order.Metadata
			}
		}
	}
	if method == "" && d.LastTransaction != nil {
		method = d.LastTransaction.TransactionType
	}

	amount := d.PaidAmount
	if amount == 0 {
		amount = d.Amount
	}

	var occurred time.Time
	if parsed, err := time.Parse(time.RFC3339, payload.CreatedAt); err == nil {
		occurred = parsed.UTC()
	}

	return Recognized(Event{
		Gateway:       enums.GatewayPagarme,
		SaleID:        saleID,
		RawStatus:     payload.Type,
		TransactionID: transactionID,
		PaymentMethod: enums.NormalizePaymentMethod(method),
		AmountCents:   amount,
		FeeCents:      metadataCents(metadata, "fee_cents"),
		InterestCents: metadataCents(metadata, "interest_cents"),
		OccurredAt:    occurred,
	})
}
