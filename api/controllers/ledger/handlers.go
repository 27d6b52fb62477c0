package ledger

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/paclead/splitsettle/api/middleware"
	"github.com/paclead/splitsettle/api/responses"
	internalledger "github.com/paclead/splitsettle/internal/ledger"
	"github.com/paclead/splitsettle/pkg/enums"
	pkgerrors "github.com/paclead/splitsettle/pkg/errors"
	"github.com/paclead/splitsettle/pkg/logger"
)

// SaleLedger returns every ledger entry of a sale with per-party totals.
func SaleLedger(svc internalledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}
		saleID, err := parseSaleID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		viewer, err := viewerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.SaleLedger(r.Context(), saleID, viewer)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newSaleLedgerResponse(result))
	}
}

// SaleAttempts lists the webhook attempts audited for a sale.
func SaleAttempts(svc internalledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}
		saleID, err := parseSaleID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		viewer, err := viewerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.SaleAttempts(r.Context(), saleID, viewer)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newPaymentAttemptResponses(list))
	}
}

func parseSaleID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "saleId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "sale id is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sale id")
	}
	return id, nil
}

func viewerFromRequest(r *http.Request) (internalledger.Viewer, error) {
	viewer := internalledger.Viewer{Role: enums.ActorRole(middleware.RoleFromContext(r.Context()))}
	if raw := middleware.OrganizationIDFromContext(r.Context()); raw != "" {
		orgID, err := uuid.Parse(raw)
		if err != nil {
			return viewer, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid organization claim")
		}
		viewer.OrganizationID = &orgID
	}
	return viewer, nil
}
