package splitrules

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/paclead/splitsettle/internal/split"
	"github.com/paclead/splitsettle/pkg/db/models"
	pkgerrors "github.com/paclead/splitsettle/pkg/errors"
)

type stubRulesService struct {
	created []split.RuleInput
	deactErr error
}

func (s *stubRulesService) List(ctx context.Context, organizationID uuid.UUID) ([]models.SplitRule, error) {
	return []models.SplitRule{{ID: uuid.New(), OrganizationID: organizationID, PartyKind: "affiliate"}}, nil
}

func (s *stubRulesService) Create(ctx context.Context, input split.RuleInput) (*models.SplitRule, error) {
	s.created = append(s.created, input)
	return &models.SplitRule{ID: uuid.New(), OrganizationID: input.OrganizationID, PartyKind: input.PartyKind, PartyID: input.PartyID, Percent: input.Percent}, nil
}

func (s *stubRulesService) Deactivate(ctx context.Context, organizationID, ruleID uuid.UUID) error {
	return s.deactErr
}

func router(svc split.RulesService) http.Handler {
	r := chi.NewRouter()
	r.Get("/orgs/{orgId}/split-rules", List(svc, nil))
	r.Post("/orgs/{orgId}/split-rules", Create(svc, nil))
	r.Delete("/orgs/{orgId}/split-rules/{ruleId}", Deactivate(svc, nil))
	return r
}

func TestCreateRuleParsesPercent(t *testing.T) {
	svc := &stubRulesService{}
	orgID := uuid.New()
	body := `{"party_kind":"affiliate","party_id":"` + uuid.NewString() + `","percent":"12.5","priority":1}`

	rec := httptest.NewRecorder()
	router(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/orgs/"+orgID.String()+"/split-rules", bytes.NewBufferString(body)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d (%s)", rec.Code, rec.Body.String())
	}
	if len(svc.created) != 1 || svc.created[0].Percent.String() != "12.5" || svc.created[0].OrganizationID != orgID {
		t.Fatalf("unexpected input %+v", svc.created)
	}
}

func TestCreateRuleRejectsPlatformKind(t *testing.T) {
	svc := &stubRulesService{}
	body := `{"party_kind":"platform","party_id":"` + uuid.NewString() + `","percent":"5"}`

	rec := httptest.NewRecorder()
	router(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/orgs/"+uuid.NewString()+"/split-rules", bytes.NewBufferString(body)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if len(svc.created) != 0 {
		t.Fatal("service should not be called for invalid input")
	}
}

func TestListRules(t *testing.T) {
	rec := httptest.NewRecorder()
	router(&stubRulesService{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orgs/"+uuid.NewString()+"/split-rules", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
}

func TestDeactivateRuleNotFound(t *testing.T) {
	svc := &stubRulesService{deactErr: pkgerrors.New(pkgerrors.CodeNotFound, "split rule not found")}
	rec := httptest.NewRecorder()
	router(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/orgs/"+uuid.NewString()+"/split-rules/"+uuid.NewString(), nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}
