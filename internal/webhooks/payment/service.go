// Package payment runs the inbound payment webhook pipeline: normalize the
// gateway payload, derive the stable ref, locate the sale, audit the attempt,
// update the sale and hand money-moving events to the split engine.
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/paclead/splitsettle/internal/attempts"
	"github.com/paclead/splitsettle/internal/gateways"
	"github.com/paclead/splitsettle/internal/sales"
	"github.com/paclead/splitsettle/internal/split"
	"github.com/paclead/splitsettle/pkg/db/models"
	"github.com/paclead/splitsettle/pkg/enums"
	pkgerrors "github.com/paclead/splitsettle/pkg/errors"
	"github.com/paclead/splitsettle/pkg/logger"
	"github.com/paclead/splitsettle/pkg/metrics"
)

// OutcomeKind classifies a handled delivery.
type OutcomeKind string

const (
	OutcomeProcessed    OutcomeKind = "processed"
	OutcomeDuplicate    OutcomeKind = "duplicate"
	OutcomeIgnored      OutcomeKind = "ignored"
	OutcomeSaleNotFound OutcomeKind = "sale_not_found"
)

const (
	messageSaleNotFound   = "Sale not found"
	messageUnrecognized   = "Gateway not recognized"
	messageAlreadyHandled = "Event already processed"
)

// Delivery is one inbound webhook request.
type Delivery struct {
	Body    []byte
	Headers http.Header
	// Gateway is set by gateway-specific routes and skips shape detection.
	Gateway enums.Gateway
}

// Outcome is the acknowledged result of a delivery.
type Outcome struct {
	Kind           OutcomeKind
	Gateway        enums.Gateway
	SaleID         uuid.UUID
	StableRef      string
	EventType      enums.SettlementEventType
	Message        string
	AttemptCreated bool
	SplitApplied   bool
}

type SaleLocator interface {
	Locate(ctx context.Context, input sales.LocateInput) (*models.Sale, error)
}

type SaleUpdater interface {
	Apply(ctx context.Context, sale *models.Sale, update sales.StatusUpdate) (sales.Applied, error)
}

type AttemptRecorder interface {
	Record(ctx context.Context, input attempts.RecordInput) (bool, error)
}

type SplitProcessor interface {
	Process(ctx context.Context, ev split.Event) (split.Result, error)
}

type ServiceParams struct {
	Registry *gateways.Registry
	Verifier *gateways.Verifier
	Locator  SaleLocator
	Updater  SaleUpdater
	Attempts AttemptRecorder
	Splits   SplitProcessor
	// Guard is optional; without it every delivery reaches the database.
	Guard   *CompletionGuard
	Metrics *metrics.WebhookMetrics
	Logger  *logger.Logger
}

type Service struct {
	registry *gateways.Registry
	verifier *gateways.Verifier
	locator  SaleLocator
	updater  SaleUpdater
	attempts AttemptRecorder
	splits   SplitProcessor
	guard    *CompletionGuard
	metrics  *metrics.WebhookMetrics
	logg     *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Locator == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "sale locator required")
	}
	if params.Updater == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "sale updater required")
	}
	if params.Attempts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "attempt recorder required")
	}
	if params.Splits == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "split processor required")
	}
	registry := params.Registry
	if registry == nil {
		registry = gateways.DefaultRegistry()
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &Service{
		registry: registry,
		verifier: params.Verifier,
		locator:  params.Locator,
		updater:  params.Updater,
		attempts: params.Attempts,
		splits:   params.Splits,
		guard:    params.Guard,
		metrics:  params.Metrics,
		logg:     logg,
	}, nil
}

// Handle runs one delivery through the pipeline. A nil error means the
// gateway should receive a 2xx; returned errors carry a pkg/errors code that
// decides between 400, 401 and 500.
func (s *Service) Handle(ctx context.Context, d Delivery) (Outcome, error) {
	start := time.Now()
	outcome, err := s.handle(ctx, d)

	label := string(outcome.Kind)
	if err != nil {
		label = outcomeLabelForError(err)
	}
	gw := outcome.Gateway
	if gw == "" {
		gw = d.Gateway
	}
	s.metrics.Observe(string(gw), label, time.Since(start))
	return outcome, err
}

func (s *Service) handle(ctx context.Context, d Delivery) (Outcome, error) {
	if !json.Valid(d.Body) {
		s.logg.Warn(ctx, "payment webhook body is not valid JSON")
		return Outcome{}, gateways.ErrMalformedPayload
	}

	gw := d.Gateway
	if gw == "" {
		detected, found, err := s.registry.Detect(d.Body, d.Headers)
		if err != nil {
			return Outcome{}, err
		}
		if !found {
			s.logg.Info(ctx, "payment webhook gateway not recognized")
			return Outcome{Kind: OutcomeIgnored, Message: messageUnrecognized}, nil
		}
		gw = detected
	}
	ctx = s.logg.WithGateway(ctx, string(gw))

	if err := s.verifier.Verify(gw, d.Body, d.Headers); err != nil {
		s.logg.Warn(ctx, "payment webhook signature rejected")
		return Outcome{Gateway: gw}, err
	}

	result, err := s.registry.Normalize(d.Body, d.Headers, gw)
	if err != nil {
		return Outcome{Gateway: gw}, err
	}
	event, ok := result.Event()
	if !ok {
		s.logg.Info(s.logg.WithField(ctx, "reason", result.Reason()), "payment webhook payload not recognized")
		return Outcome{Kind: OutcomeIgnored, Gateway: gw, Message: messageUnrecognized}, nil
	}

	mapping := gateways.MapStatus(event.Gateway, event.RawStatus)
	stableRef := BuildStableRef(event.Gateway, event.TransactionID, event.SaleID, mapping.EventType)
	outcome := Outcome{Gateway: event.Gateway, StableRef: stableRef, EventType: mapping.EventType}
	ctx = s.logg.WithFields(ctx, map[string]any{
		"stable_ref": stableRef,
		"event_type": mapping.EventType.String(),
		"raw_status": event.RawStatus,
	})

	if s.guard != nil {
		done, err := s.guard.Completed(ctx, stableRef)
		if err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "completion guard unavailable")
		} else if done {
			outcome.Kind = OutcomeDuplicate
			outcome.Message = messageAlreadyHandled
			s.logg.Info(ctx, "payment webhook already processed")
			return outcome, nil
		}
	}

	sale, err := s.locator.Locate(ctx, sales.LocateInput{
		Gateway:       event.Gateway,
		SaleRef:       event.SaleID,
		TransactionID: event.TransactionID,
	})
	if errors.Is(err, sales.ErrSaleNotFound) {
		outcome.Kind = OutcomeSaleNotFound
		outcome.Message = messageSaleNotFound
		s.logg.Info(s.logg.WithField(ctx, "sale_ref", event.SaleID), "payment webhook sale not found")
		return outcome, nil
	}
	if err != nil {
		s.logg.Error(ctx, "locate sale", err)
		return outcome, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "locate sale")
	}
	outcome.SaleID = sale.ID
	ctx = s.logg.WithSaleID(ctx, sale.ID.String())

	created, err := s.attempts.Record(ctx, attempts.RecordInput{
		StableRef:     stableRef,
		SaleID:        sale.ID,
		Gateway:       event.Gateway,
		TransactionID: event.TransactionID,
		PaymentMethod: event.PaymentMethod,
		AmountCents:   event.AmountCents,
		FeeCents:      event.FeeCents,
		PaymentStatus: mapping.PaymentStatus,
		RawStatus:     event.RawStatus,
		EventType:     mapping.EventType,
		Payload:       d.Body,
	})
	if err != nil {
		s.logg.Error(ctx, "record payment attempt", err)
		return outcome, err
	}
	outcome.AttemptCreated = created

	if _, err := s.updater.Apply(ctx, sale, sales.StatusUpdate{
		SaleStatus:    mapping.SaleStatus,
		PaymentStatus: mapping.PaymentStatus,
		Gateway:       event.Gateway,
		TransactionID: event.TransactionID,
		PaymentMethod: event.PaymentMethod,
	}); err != nil {
		s.logg.Error(ctx, "update sale payment state", err)
	}

	applied, err := s.splits.Process(ctx, split.Event{
		Sale:          sale,
		StableRef:     stableRef,
		EventType:     mapping.EventType,
		Gateway:       event.Gateway,
		PaymentMethod: event.PaymentMethod,
		AmountCents:   event.AmountCents,
		FeeCents:      event.FeeCents,
		InterestCents: event.InterestCents,
		OccurredAt:    event.OccurredAt,
	})
	if err != nil {
		return outcome, err
	}
	outcome.SplitApplied = applied.Applied

	if s.guard != nil {
		if err := s.guard.MarkCompleted(ctx, stableRef); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "completion marker not stored")
		}
	}

	outcome.Kind = OutcomeProcessed
	if !created && !applied.Applied {
		outcome.Kind = OutcomeDuplicate
		outcome.Message = messageAlreadyHandled
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"outcome":         string(outcome.Kind),
		"attempt_created": created,
		"split_applied":   applied.Applied,
	}), "payment webhook handled")
	return outcome, nil
}

func outcomeLabelForError(err error) string {
	switch pkgerrors.CodeOf(err) {
	case pkgerrors.CodeMalformed, pkgerrors.CodeValidation:
		return "malformed"
	case pkgerrors.CodeUnauthorized:
		return "unauthorized"
	default:
		return "failed"
	}
}
