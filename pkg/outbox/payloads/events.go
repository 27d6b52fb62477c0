package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/paclead/splitsettle/pkg/enums"
)

// PartyAmount is one party's share inside a split event.
type PartyAmount struct {
	PartyKind   enums.PartyKind `json:"party_kind"`
	PartyID     uuid.UUID       `json:"party_id"`
	AmountCents int64           `json:"amount_cents"`
	ReleaseAt   time.Time       `json:"release_at"`
}

// SplitSettledEvent is emitted once per paid stable reference.
type SplitSettledEvent struct {
	SaleID         uuid.UUID     `json:"sale_id"`
	OrganizationID uuid.UUID     `json:"organization_id"`
	Gateway        enums.Gateway `json:"gateway"`
	StableRef      string        `json:"stable_ref"`
	GrossCents     int64         `json:"gross_cents"`
	FeeCents       int64         `json:"fee_cents"`
	Parties        []PartyAmount `json:"parties"`
}

// SplitReversedEvent is emitted for refunds and chargebacks. Parties holds the
// debits; an empty list means nothing was owed back.
type SplitReversedEvent struct {
	SaleID         uuid.UUID                 `json:"sale_id"`
	OrganizationID uuid.UUID                 `json:"organization_id"`
	Gateway        enums.Gateway             `json:"gateway"`
	StableRef      string                    `json:"stable_ref"`
	ReversedRef    string                    `json:"reversed_ref,omitempty"`
	EventType      enums.SettlementEventType `json:"event_type"`
	Parties        []PartyAmount             `json:"parties"`
}
