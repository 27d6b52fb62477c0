package splitrules

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/paclead/splitsettle/api/responses"
	"github.com/paclead/splitsettle/api/validators"
	"github.com/paclead/splitsettle/internal/split"
	"github.com/paclead/splitsettle/pkg/db/models"
	"github.com/paclead/splitsettle/pkg/enums"
	pkgerrors "github.com/paclead/splitsettle/pkg/errors"
	"github.com/paclead/splitsettle/pkg/logger"
)

type createRuleRequest struct {
	PartyKind  string `json:"party_kind" validate:"required,oneof=industry affiliate tenant"`
	PartyID    string `json:"party_id" validate:"required,uuid"`
	Percent    string `json:"percent" validate:"omitempty,numeric"`
	FixedCents *int64 `json:"fixed_cents" validate:"omitempty,min=0"`
	Priority   int    `json:"priority" validate:"min=0,max=1000"`
}

type ruleResponse struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	PartyKind      string    `json:"party_kind"`
	PartyID        uuid.UUID `json:"party_id"`
	Percent        string    `json:"percent"`
	FixedCents     *int64    `json:"fixed_cents,omitempty"`
	Priority       int       `json:"priority"`
	CreatedAt      time.Time `json:"created_at"`
}

func newRuleResponse(r models.SplitRule) ruleResponse {
	return ruleResponse{
		ID:             r.ID,
		OrganizationID: r.OrganizationID,
		PartyKind:      string(r.PartyKind),
		PartyID:        r.PartyID,
		Percent:        r.Percent.String(),
		FixedCents:     r.FixedCents,
		Priority:       r.Priority,
		CreatedAt:      r.CreatedAt,
	}
}

// List returns the active split rules of an organization in evaluation order.
func List(svc split.RulesService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "split rules service unavailable"))
			return
		}
		orgID, err := parseUUIDParam(r, "orgId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rules, err := svc.List(r.Context(), orgID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]ruleResponse, 0, len(rules))
		for _, rule := range rules {
			out = append(out, newRuleResponse(rule))
		}
		responses.WriteSuccess(w, out)
	}
}

func Create(svc split.RulesService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "split rules service unavailable"))
			return
		}
		orgID, err := parseUUIDParam(r, "orgId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createRuleRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := split.RuleInput{
			OrganizationID: orgID,
			PartyKind:      enums.PartyKind(body.PartyKind),
			PartyID:        uuid.MustParse(body.PartyID),
			FixedCents:     body.FixedCents,
			Priority:       body.Priority,
		}
		if raw := strings.TrimSpace(body.Percent); raw != "" {
			percent, err := decimal.NewFromString(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid percent"))
				return
			}
			input.Percent = percent
		}

		rule, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if logg != nil {
			ctx := logg.WithFields(r.Context(), map[string]any{
				"organization_id": orgID.String(),
				"rule_id":         rule.ID.String(),
				"party_kind":      body.PartyKind,
			})
			logg.Info(ctx, "split rule created")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newRuleResponse(*rule))
	}
}

func Deactivate(svc split.RulesService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "split rules service unavailable"))
			return
		}
		orgID, err := parseUUIDParam(r, "orgId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ruleID, err := parseUUIDParam(r, "ruleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Deactivate(r.Context(), orgID, ruleID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deactivated"})
	}
}

func parseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, name+" is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+name)
	}
	return id, nil
}
