package gateways

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/paclead/splitsettle/pkg/enums"
)

const asaasTimeLayout = "2006-01-02 15:04:05"

// Asaas reports timestamps in Brasília time without an offset.
var brasilia = time.FixedZone("BRT", -3*60*60)

type asaasWebhook struct {
	ID          string        `json:"id"`
	Event       string        `json:"event" validate:"required"`
	DateCreated string        `json:"dateCreated"`
	Payment     *asaasPayment `json:"payment" validate:"required"`
}

type asaasPayment struct {
	ID                string              `json:"id" validate:"required"`
	Status            string              `json:"status"`
	BillingType       string              `json:"billingType"`
	Value             decimal.Decimal     `json:"value"`
	NetValue          decimal.NullDecimal `json:"netValue"`
	ExternalReference string              `json:"externalReference"`
	Description       string              `json:"description"`
}

// AsaasNormalizer handles Asaas PAYMENT_* webhooks. Amounts arrive in reais.
type AsaasNormalizer struct{}

func (AsaasNormalizer) Gateway() enums.Gateway { return enums.GatewayAsaas }

func (AsaasNormalizer) Detect(shape Shape) bool {
	if !shape.Has("payment") {
		return false
	}
	return strings.HasPrefix(strings.ToUpper(shape.String("event")), "PAYMENT_")
}

func (AsaasNormalizer) Normalize(body []byte) Result {
	var payload asaasWebhook
	if err := json.Unmarshal(body, &payload); err != nil {
		return Unrecognized("asaas payload shape mismatch: " + err.Error())
	}
	if err := validate.Struct(payload); err != nil {
		return Unrecognized(validationReason("asaas", err))
	}

	p := payload.Payment
	amount := reaisToCents(p.Value)
	var fee int64
	if p.NetValue.Valid {
		if diff := amount - reaisToCents(p.NetValue.Decimal); diff > 0 {
			fee = diff
		}
	}

	var occurred time.Time
	if parsed, err := time.ParseInLocation(asaasTimeLayout, payload.DateCreated, brasilia); err == nil {
		occurred = parsed.UTC()
	}

	return Recognized(Event{
		Gateway:       enums.GatewayAsaas,
		SaleID:        strings.TrimSpace(p.ExternalReference),
		RawStatus:     payload.Event,
		TransactionID: p.ID,
		PaymentMethod: enums.NormalizePaymentMethod(p.BillingType),
		AmountCents:   amount,
		FeeCents:      fee,
		OccurredAt:    occurred,
	})
}
