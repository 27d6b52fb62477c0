// Package ledger exposes the per-party ledger of a sale and the audit trail
// of the webhooks that produced it.
package ledger

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/paclead/splitsettle/internal/attempts"
	"github.com/paclead/splitsettle/internal/sales"
	"github.com/paclead/splitsettle/pkg/db/models"
	"github.com/paclead/splitsettle/pkg/enums"
	pkgerrors "github.com/paclead/splitsettle/pkg/errors"
)

// Viewer is the authenticated caller of a ledger query.
type Viewer struct {
	Role           enums.ActorRole
	OrganizationID *uuid.UUID
}

// PartyTotal aggregates one party's entries for a sale.
type PartyTotal struct {
	PartyKind     enums.PartyKind `json:"party_kind"`
	PartyID       uuid.UUID       `json:"party_id"`
	CreditedCents int64           `json:"credited_cents"`
	DebitedCents  int64           `json:"debited_cents"`
	NetCents      int64           `json:"net_cents"`
	ReleasedCents int64           `json:"released_cents"`
}

// SaleLedger is the read model returned by the ledger API.
type SaleLedger struct {
	SaleID         uuid.UUID            `json:"sale_id"`
	OrganizationID uuid.UUID            `json:"organization_id"`
	TotalCents     int64                `json:"total_cents"`
	NetCents       int64                `json:"net_cents"`
	Parties        []PartyTotal         `json:"parties"`
	Entries        []models.LedgerEntry `json:"entries"`
}

// Service answers ledger and attempt queries.
type Service interface {
	SaleLedger(ctx context.Context, saleID uuid.UUID, viewer Viewer) (*SaleLedger, error)
	SaleAttempts(ctx context.Context, saleID uuid.UUID, viewer Viewer) ([]models.PaymentAttempt, error)
}

type ServiceParams struct {
	Ledger   Repository
	Sales    sales.Repository
	Attempts attempts.Repository
}

type service struct {
	ledger   Repository
	sales    sales.Repository
	attempts attempts.Repository
}

func NewService(params ServiceParams) (Service, error) {
	if params.Ledger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "ledger repository required")
	}
	if params.Sales == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "sales repository required")
	}
	if params.Attempts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "attempts repository required")
	}
	return &service{ledger: params.Ledger, sales: params.Sales, attempts: params.Attempts}, nil
}

func (s *service) SaleLedger(ctx context.Context, saleID uuid.UUID, viewer Viewer) (*SaleLedger, error) {
	sale, err := s.authorizedSale(ctx, saleID, viewer)
	if err != nil {
		return nil, err
	}
	entries, err := s.ledger.ListBySale(ctx, saleID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list ledger entries")
	}

	out := &SaleLedger{
		SaleID:         sale.ID,
		OrganizationID: sale.OrganizationID,
		TotalCents:     sale.TotalCents,
		Entries:        entries,
		Parties:        Summarize(entries),
	}
	for _, p := range out.Parties {
		out.NetCents += p.NetCents
	}
	return out, nil
}

func (s *service) SaleAttempts(ctx context.Context, saleID uuid.UUID, viewer Viewer) ([]models.PaymentAttempt, error) {
	if _, err := s.authorizedSale(ctx, saleID, viewer); err != nil {
		return nil, err
	}
	list, err := s.attempts.ListBySale(ctx, saleID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list payment attempts")
	}
	return list, nil
}

// authorizedSale hides sales of other organizations behind a 404.
func (s *service) authorizedSale(ctx context.Context, saleID uuid.UUID, viewer Viewer) (*models.Sale, error) {
	if saleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale id is required")
	}
	if !viewer.Role.IsPrivileged() && viewer.OrganizationID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "organization claim required")
	}
	sale, err := s.sales.FindByID(ctx, saleID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load sale")
	}
	if sale == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
	}
	if !viewer.Role.IsPrivileged() && *viewer.OrganizationID != sale.OrganizationID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
	}
	return sale, nil
}

type partyKey struct {
	kind enums.PartyKind
	id   uuid.UUID
}

var partyOrder = map[enums.PartyKind]int{
	enums.PartyKindIndustry:  0,
	enums.PartyKindPlatform:  1,
	enums.PartyKindAffiliate: 2,
	enums.PartyKindTenant:    3,
}

// Summarize folds entries into per-party totals ordered by payout priority.
func Summarize(entries []models.LedgerEntry) []PartyTotal {
	byParty := map[partyKey]*PartyTotal{}
	keys := []partyKey{}
	for _, e := range entries {
		key := partyKey{kind: e.PartyKind, id: e.PartyID}
		total, ok := byParty[key]
		if !ok {
			total = &PartyTotal{PartyKind: e.PartyKind, PartyID: e.PartyID}
			byParty[key] = total
			keys = append(keys, key)
		}
		if e.AmountCents >= 0 {
			total.CreditedCents += e.AmountCents
		} else {
			total.DebitedCents += -e.AmountCents
		}
		total.NetCents += e.AmountCents
		if e.ReleasedAt != nil {
			total.ReleasedCents += e.AmountCents
		}
	}
	sort.SliceStable(keys, func(i, j int) bool {
		if partyOrder[keys[i].kind] != partyOrder[keys[j].kind] {
			return partyOrder[keys[i].kind] < partyOrder[keys[j].kind]
		}
		return keys[i].id.String() < keys[j].id.String()
	})
	out := make([]PartyTotal, 0, len(keys))
	for _, k := range keys {
		out = append(out, *byParty[k])
	}
	return out
}
