// Package attempts keeps the audit trail of webhook deliveries, one row per
// stable reference.
package attempts

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/paclead/splitsettle/pkg/db/models"
	"github.com/paclead/splitsettle/pkg/enums"
	pkgerrors "github.com/paclead/splitsettle/pkg/errors"
)

// RecordInput is everything known about one delivery after normalization.
type RecordInput struct {
	StableRef     string
	SaleID        uuid.UUID
	Gateway       enums.Gateway
	TransactionID string
	PaymentMethod enums.PaymentMethod
	AmountCents   int64
	FeeCents      int64
	PaymentStatus enums.PaymentStatus
	RawStatus     string
	EventType     enums.SettlementEventType
	Payload       []byte
}

// Recorder appends payment attempts.
type Recorder struct {
	repo Repository
}

func NewRecorder(repo Repository) (*Recorder, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "attempts repository required")
	}
	return &Recorder{repo: repo}, nil
}

// Record inserts the attempt unless one with the same stable reference
// exists, and reports whether a row was written.
func (r *Recorder) Record(ctx context.Context, input RecordInput) (bool, error) {
	if strings.TrimSpace(input.StableRef) == "" {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "stable ref is required")
	}
	if input.SaleID == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "sale id is required")
	}

	attempt := &models.PaymentAttempt{
		StableRef:     input.StableRef,
		SaleID:        input.SaleID,
		Gateway:       input.Gateway,
		PaymentMethod: input.PaymentMethod,
		AmountCents:   input.AmountCents,
		FeeCents:      input.FeeCents,
		PaymentStatus: input.PaymentStatus,
		RawStatus:     input.RawStatus,
		EventType:     input.EventType,
	}
	if attempt.PaymentMethod == "" {
		attempt.PaymentMethod = enums.PaymentMethodUnknown
	}
	if tx := strings.TrimSpace(input.TransactionID); tx != "" {
		attempt.TransactionID = &tx
	}
	if len(input.Payload) > 0 && json.Valid(input.Payload) {
		attempt.Payload = datatypes.JSON(input.Payload)
	}

	created, err := r.repo.InsertIfAbsent(ctx, attempt)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record payment attempt")
	}
	return created, nil
}

// ListBySale returns the attempts logged for a sale, oldest first.
func (r *Recorder) ListBySale(ctx context.Context, saleID uuid.UUID) ([]models.PaymentAttempt, error) {
	out, err := r.repo.ListBySale(ctx, saleID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list payment attempts")
	}
	return out, nil
}
