package split

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/paclead/splitsettle/pkg/db/models"
	"github.com/paclead/splitsettle/pkg/enums"
	pkgerrors "github.com/paclead/splitsettle/pkg/errors"
)

// RuleInput configures one party of an organization's split.
type RuleInput struct {
	OrganizationID uuid.UUID
	PartyKind      enums.PartyKind
	PartyID        uuid.UUID
	Percent        decimal.Decimal
	FixedCents     *int64
	Priority       int
}

// RulesService manages the split rules the engine reads at settlement time.
// Changes never touch ledger entries already written.
type RulesService interface {
	List(ctx context.Context, organizationID uuid.UUID) ([]models.SplitRule, error)
	Create(ctx context.Context, input RuleInput) (*models.SplitRule, error)
	Deactivate(ctx context.Context, organizationID, ruleID uuid.UUID) error
}

type rulesService struct {
	repo Repository
}

func NewRulesService(repo Repository) (RulesService, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "split repository required")
	}
	return &rulesService{repo: repo}, nil
}

func (s *rulesService) List(ctx context.Context, organizationID uuid.UUID) ([]models.SplitRule, error) {
	if organizationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "organization id is required")
	}
	rules, err := s.repo.ListActiveRules(ctx, organizationID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list split rules")
	}
	return rules, nil
}

func (s *rulesService) Create(ctx context.Context, input RuleInput) (*models.SplitRule, error) {
	if err := validateRule(input); err != nil {
		return nil, err
	}
	rule := &models.SplitRule{
		OrganizationID: input.OrganizationID,
		PartyKind:      input.PartyKind,
		PartyID:        input.PartyID,
		Percent:        input.Percent,
		FixedCents:     input.FixedCents,
		Priority:       input.Priority,
		Active:         true,
	}
	if err := s.repo.CreateRule(ctx, rule); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create split rule")
	}
	return rule, nil
}

func (s *rulesService) Deactivate(ctx context.Context, organizationID, ruleID uuid.UUID) error {
	if organizationID == uuid.Nil || ruleID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "organization id and rule id are required")
	}
	ok, err := s.repo.DeactivateRule(ctx, organizationID, ruleID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deactivate split rule")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "split rule not found")
	}
	return nil
}

// validateRule rejects platform rules: the platform share is always fee plus
// interest and is never configured per organization.
func validateRule(input RuleInput) error {
	if input.OrganizationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "organization id is required")
	}
	if input.PartyID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "party id is required")
	}
	switch input.PartyKind {
	case enums.PartyKindIndustry, enums.PartyKindAffiliate, enums.PartyKindTenant:
	case enums.PartyKindPlatform:
		return pkgerrors.New(pkgerrors.CodeValidation, "platform share is not configurable")
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown party kind")
	}
	if input.Percent.IsNegative() || input.Percent.GreaterThan(hundred) {
		return pkgerrors.New(pkgerrors.CodeValidation, "percent must be between 0 and 100")
	}
	if input.FixedCents != nil && *input.FixedCents < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "fixed cents must not be negative")
	}
	if input.PartyKind != enums.PartyKindTenant && input.FixedCents == nil && input.Percent.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "percent or fixed cents is required")
	}
	return nil
}
