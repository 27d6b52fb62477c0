package ledger

import (
	"time"

	"github.com/google/uuid"

	internalledger "github.com/paclead/splitsettle/internal/ledger"
	"github.com/paclead/splitsettle/pkg/db/models"
)

type LedgerEntryResponse struct {
	ID          uuid.UUID  `json:"id"`
	StableRef   string     `json:"stable_ref"`
	PartyKind   string     `json:"party_kind"`
	PartyID     uuid.UUID  `json:"party_id"`
	EventType   string     `json:"event_type"`
	EntryKind   string     `json:"entry_kind"`
	AmountCents int64      `json:"amount_cents"`
	ReleaseAt   time.Time  `json:"release_at"`
	ReleasedAt  *time.Time `json:"released_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type PartyTotalResponse struct {
	PartyKind     string    `json:"party_kind"`
	PartyID       uuid.UUID `json:"party_id"`
	CreditedCents int64     `json:"credited_cents"`
	DebitedCents  int64     `json:"debited_cents"`
	NetCents      int64     `json:"net_cents"`
	ReleasedCents int64     `json:"released_cents"`
}

type SaleLedgerResponse struct {
	SaleID         uuid.UUID             `json:"sale_id"`
	OrganizationID uuid.UUID             `json:"organization_id"`
	TotalCents     int64                 `json:"total_cents"`
	NetCents       int64                 `json:"net_cents"`
	Parties        []PartyTotalResponse  `json:"parties"`
	Entries        []LedgerEntryResponse `json:"entries"`
}

type PaymentAttemptResponse struct {
	ID            uuid.UUID `json:"id"`
	StableRef     string    `json:"stable_ref"`
	Gateway       string    `json:"gateway"`
	TransactionID *string   `json:"transaction_id,omitempty"`
	PaymentMethod string    `json:"payment_method"`
	AmountCents   int64     `json:"amount_cents"`
	FeeCents      int64     `json:"fee_cents"`
	PaymentStatus string    `json:"payment_status"`
	RawStatus     string    `json:"raw_status"`
	EventType     string    `json:"event_type"`
	CreatedAt     time.Time `json:"created_at"`
}

func newSaleLedgerResponse(l *internalledger.SaleLedger) SaleLedgerResponse {
	out := SaleLedgerResponse{
		SaleID:         l.SaleID,
		OrganizationID: l.OrganizationID,
		TotalCents:     l.TotalCents,
		NetCents:       l.NetCents,
		Parties:        make([]PartyTotalResponse, 0, len(l.Parties)),
		Entries:        make([]LedgerEntryResponse, 0, len(l.Entries)),
	}
	for _, p := range l.Parties {
		out.Parties = append(out.Parties, PartyTotalResponse{
			PartyKind:     string(p.PartyKind),
			PartyID:       p.PartyID,
			CreditedCents: p.CreditedCents,
			DebitedCents:  p.DebitedCents,
			NetCents:      p.NetCents,
			ReleasedCents: p.ReleasedCents,
		})
	}
	for _, e := range l.Entries {
		out.Entries = append(out.Entries, LedgerEntryResponse{
			ID:          e.ID,
			StableRef:   e.StableRef,
			PartyKind:   string(e.PartyKind),
			PartyID:     e.PartyID,
			EventType:   string(e.EventType),
			EntryKind:   string(e.EntryKind),
			AmountCents: e.AmountCents,
			ReleaseAt:   e.ReleaseAt,
			ReleasedAt:  e.ReleasedAt,
			CreatedAt:   e.CreatedAt,
		})
	}
	return out
}

func newPaymentAttemptResponses(list []models.PaymentAttempt) []PaymentAttemptResponse {
	out := make([]PaymentAttemptResponse, 0, len(list))
	for _, a := range list {
		out = append(out, PaymentAttemptResponse{
			ID:            a.ID,
			StableRef:     a.StableRef,
			Gateway:       string(a.Gateway),
			TransactionID: a.TransactionID,
			PaymentMethod: string(a.PaymentMethod),
			AmountCents:   a.AmountCents,
			FeeCents:      a.FeeCents,
			PaymentStatus: string(a.PaymentStatus),
			RawStatus:     a.RawStatus,
			EventType:     string(a.EventType),
			CreatedAt:     a.CreatedAt,
		})
	}
	return out
}
