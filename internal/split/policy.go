package split

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/paclead/splitsettle/pkg/db/models"
	"github.com/paclead/splitsettle/pkg/enums"
)

var hundred = decimal.NewFromInt(100)

// Party is a stakeholder eligible for a share of a paid sale.
type Party struct {
	Kind       enums.PartyKind
	ID         uuid.UUID
	Percent    decimal.Decimal
	FixedCents *int64
	Priority   int
}

// Allocation is the input handed to a Policy.
type Allocation struct {
	GrossCents    int64
	FeeCents      int64
	InterestCents int64
	Parties       []Party
}

// Share is one party's computed amount.
type Share struct {
	Party       Party
	AmountCents int64
}

// Policy turns an allocation into per-party shares. The engine rejects
// results whose sum differs from GrossCents or that contain negative amounts.
type Policy interface {
	Allocate(in Allocation) ([]Share, error)
}

// PolicyFunc adapts a function to Policy.
type PolicyFunc func(in Allocation) ([]Share, error)

func (f PolicyFunc) Allocate(in Allocation) ([]Share, error) { return f(in) }

// ConfiguredPolicy pays industry first out of gross, then the platform its
// fee plus interest, then affiliates out of the remaining net. The tenant
// receives whatever is left, so rounding never leaks.
type ConfiguredPolicy struct{}

func (ConfiguredPolicy) Allocate(in Allocation) ([]Share, error) {
	if in.GrossCents < 0 {
		return nil, fmt.Errorf("negative gross %d", in.GrossCents)
	}

	var (
		industries []Party
		affiliates []Party
		platform   *Party
		tenant     *Party
	)
	for i := range in.Parties {
		p := in.Parties[i]
		switch p.Kind {
		case enums.PartyKindIndustry:
			industries = append(industries, p)
		case enums.PartyKindAffiliate:
			affiliates = append(affiliates, p)
		case enums.PartyKindPlatform:
			if platform == nil {
				platform = &p
			}
		case enums.PartyKindTenant:
			if tenant == nil {
				tenant = &p
			}
		default:
			return nil, fmt.Errorf("unsupported party kind %q", p.Kind)
		}
	}
	if platform == nil {
		return nil, fmt.Errorf("platform party missing")
	}
	if tenant == nil {
		return nil, fmt.Errorf("tenant party missing")
	}
	byPriority(industries)
	byPriority(affiliates)

	remaining := in.GrossCents
	shares := make([]Share, 0, len(in.Parties))

	for _, p := range industries {
		amt := clamp(ruleAmount(p, in.GrossCents), remaining)
		remaining -= amt
		shares = append(shares, Share{Party: p, AmountCents: amt})
	}

	platformCut := clamp(nonNegative(in.FeeCents)+nonNegative(in.InterestCents), remaining)
	remaining -= platformCut
	shares = append(shares, Share{Party: *platform, AmountCents: platformCut})

	net := remaining
	for _, p := range affiliates {
		amt := clamp(ruleAmount(p, net), remaining)
		remaining -= amt
		shares = append(shares, Share{Party: p, AmountCents: amt})
	}

	shares = append(shares, Share{Party: *tenant, AmountCents: remaining})
	return shares, nil
}

// ruleAmount resolves a fixed or percentage rule against base. Percentages
// round down; the tenant remainder collects the fractions.
func ruleAmount(p Party, base int64) int64 {
	if p.FixedCents != nil {
		return nonNegative(*p.FixedCents)
	}
	if p.Percent.IsNegative() || base <= 0 {
		return 0
	}
	return decimal.NewFromInt(base).Mul(p.Percent).Div(hundred).Floor().IntPart()
}

func clamp(amount, limit int64) int64 {
	if amount > limit {
		return limit
	}
	if amount < 0 {
		return 0
	}
	return amount
}

func nonNegative(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}

func byPriority(parties []Party) {
	sort.SliceStable(parties, func(i, j int) bool {
		return parties[i].Priority < parties[j].Priority
	})
}

// partiesFor builds the eligible party list for a sale. Platform is always
// present; a tenant rule may redirect the tenant payout, otherwise the
// organization itself is paid.
func partiesFor(sale *models.Sale, rules []models.SplitRule, platformID uuid.UUID) []Party {
	parties := []Party{{Kind: enums.PartyKindPlatform, ID: platformID}}
	tenant := Party{Kind: enums.PartyKindTenant, ID: sale.OrganizationID}
	redirected := false
	for _, rule := range rules {
		switch rule.PartyKind {
		case enums.PartyKindIndustry, enums.PartyKindAffiliate:
			parties = append(parties, Party{
				Kind:       rule.PartyKind,
				ID:         rule.PartyID,
				Percent:    rule.Percent,
				FixedCents: rule.FixedCents,
				Priority:   rule.Priority,
			})
		case enums.PartyKindTenant:
			if !redirected {
				tenant.ID = rule.PartyID
				redirected = true
			}
		}
	}
	return append(parties, tenant)
}
