package webhooks

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/paclead/splitsettle/internal/gateways"
	"github.com/paclead/splitsettle/internal/webhooks/payment"
	"github.com/paclead/splitsettle/pkg/enums"
	pkgerrors "github.com/paclead/splitsettle/pkg/errors"
)

type fakePaymentService struct {
	outcome payment.Outcome
	err     error
	calls   int
	last    payment.Delivery
}

func (f *fakePaymentService) Handle(ctx context.Context, d payment.Delivery) (payment.Outcome, error) {
	f.calls++
	f.last = d
	return f.outcome, f.err
}

func newWebhookRouter(svc PaymentWebhookService, maxBody int64) http.Handler {
	r := chi.NewRouter()
	r.Get("/payment-webhook", PaymentWebhookStatus())
	r.Head("/payment-webhook", PaymentWebhookStatus())
	r.Post("/payment-webhook", PaymentWebhook(svc, maxBody, nil))
	r.Post("/payment-webhook/{gateway}", PaymentWebhook(svc, maxBody, nil))
	return r
}

func decodeAck(t *testing.T, rec *httptest.ResponseRecorder) ackResponse {
	t.Helper()
	var ack ackResponse
	if err := json.NewDecoder(rec.Body).Decode(&ack); err != nil {
		t.Fatalf("decode ack: %v (%s)", err, rec.Body.String())
	}
	return ack
}

func TestPaymentWebhookStatusReachability(t *testing.T) {
	router := newWebhookRouter(&fakePaymentService{}, 0)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/payment-webhook", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/payment-webhook", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for HEAD got %d", rec.Code)
	}
}

func TestPaymentWebhookProcessed(t *testing.T) {
	saleID := uuid.New()
	svc := &fakePaymentService{outcome: payment.Outcome{
		Kind:      payment.OutcomeProcessed,
		Gateway:   enums.GatewayAsaas,
		SaleID:    saleID,
		StableRef: "asaas:pay_1:paid",
		EventType: enums.SettlementEventPaid,
	}}
	router := newWebhookRouter(svc, 0)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/payment-webhook", bytes.NewBufferString(`{"event":"PAYMENT_RECEIVED"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	ack := decodeAck(t, rec)
	if !ack.Received || ack.Outcome != "processed" || ack.SaleID != saleID.String() || ack.StableRef != "asaas:pay_1:paid" {
		t.Fatalf("unexpected ack %+v", ack)
	}
	if svc.last.Gateway != "" {
		t.Fatalf("expected no gateway hint, got %s", svc.last.Gateway)
	}
}

func TestPaymentWebhookSaleNotFoundIsAcknowledged(t *testing.T) {
	svc := &fakePaymentService{outcome: payment.Outcome{Kind: payment.OutcomeSaleNotFound, Message: "Sale not found"}}
	router := newWebhookRouter(svc, 0)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/payment-webhook", bytes.NewBufferString(`{}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	ack := decodeAck(t, rec)
	if !ack.Received || ack.Message != "Sale not found" || ack.SaleID != "" {
		t.Fatalf("unexpected ack %+v", ack)
	}
}

func TestPaymentWebhookGatewayHint(t *testing.T) {
	svc := &fakePaymentService{outcome: payment.Outcome{Kind: payment.OutcomeIgnored}}
	router := newWebhookRouter(svc, 0)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/payment-webhook/Pagarme", bytes.NewBufferString(`{}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.last.Gateway != enums.GatewayPagarme {
		t.Fatalf("expected pagarme hint, got %q", svc.last.Gateway)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/payment-webhook/paypal", bytes.NewBufferString(`{}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.last.Gateway != "" {
		t.Fatalf("unknown hint should fall back to detection, got %q", svc.last.Gateway)
	}
}

func TestPaymentWebhookErrorStatuses(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{name: "malformed", err: gateways.ErrMalformedPayload, status: http.StatusBadRequest},
		{name: "signature", err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid signature"), status: http.StatusUnauthorized},
		{name: "datastore", err: pkgerrors.New(pkgerrors.CodeInternal, "insert ledger entries"), status: http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newWebhookRouter(&fakePaymentService{err: tc.err}, 0)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/payment-webhook", bytes.NewBufferString("{not json")))
			if rec.Code != tc.status {
				t.Fatalf("expected %d got %d", tc.status, rec.Code)
			}
		})
	}
}

func TestPaymentWebhookRejectsOversizedBody(t *testing.T) {
	svc := &fakePaymentService{}
	router := newWebhookRouter(svc, 8)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/payment-webhook", bytes.NewBufferString(`{"padding":"xxxxxxxxxxxx"}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if svc.calls != 0 {
		t.Fatalf("service should not run for oversized bodies")
	}
}
