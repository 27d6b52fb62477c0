package webhooks

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/paclead/splitsettle/api/responses"
	"github.com/paclead/splitsettle/internal/webhooks/payment"
	"github.com/paclead/splitsettle/pkg/enums"
	pkgerrors "github.com/paclead/splitsettle/pkg/errors"
	"github.com/paclead/splitsettle/pkg/logger"
)

const defaultMaxBodyBytes int64 = 1 << 20

type PaymentWebhookService interface {
	Handle(ctx context.Context, d payment.Delivery) (payment.Outcome, error)
}

type ackResponse struct {
	Received  bool   `json:"received"`
	Outcome   string `json:"outcome,omitempty"`
	Message   string `json:"message,omitempty"`
	SaleID    string `json:"sale_id,omitempty"`
	StableRef string `json:"stable_ref,omitempty"`
	EventType string `json:"event_type,omitempty"`
}

// PaymentWebhookStatus answers GET and HEAD reachability checks from gateway dashboards.
func PaymentWebhookStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// PaymentWebhook accepts deliveries from every supported gateway. Routes that
// carry a {gateway} segment pass it as a hint; unknown hints fall back to
// shape detection. Every no-op outcome is acknowledged with 200 so gateways
// stop retrying.
func PaymentWebhook(svc PaymentWebhookService, maxBodyBytes int64, logg *logger.Logger) http.HandlerFunc {
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "payload too large"))
				return
			}
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeMalformed, err, "read request body"))
			return
		}

		delivery := payment.Delivery{Body: body, Headers: r.Header}
		if hint := chi.URLParam(r, "gateway"); hint != "" {
			gw, err := enums.ParseGateway(hint)
			if err != nil {
				if logg != nil {
					logg.Warn(logg.WithField(ctx, "gateway_hint", hint), "unknown gateway path, detecting from payload")
				}
			} else {
				delivery.Gateway = gw
			}
		}

		outcome, err := svc.Handle(ctx, delivery)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		ack := ackResponse{
			Received:  true,
			Outcome:   string(outcome.Kind),
			Message:   outcome.Message,
			StableRef: outcome.StableRef,
		}
		if outcome.EventType != "" {
			ack.EventType = outcome.EventType.String()
		}
		if outcome.SaleID != uuid.Nil {
			ack.SaleID = outcome.SaleID.String()
		}
		responses.WriteJSON(w, http.StatusOK, ack)
	}
}
