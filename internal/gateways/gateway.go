// Package gateways turns heterogeneous payment-gateway webhook bodies into a
// single canonical Event. Shape mismatches never surface as errors: they fold
// into an Unrecognized result so the webhook can acknowledge and move on.
package gateways

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/paclead/splitsettle/pkg/enums"
	pkgerrors "github.com/paclead/splitsettle/pkg/errors"
)

// ErrMalformedPayload is returned only for bodies that are not valid JSON.
var ErrMalformedPayload = pkgerrors.New(pkgerrors.CodeMalformed, "invalid JSON")

// Event is the canonical form of a gateway notification.
type Event struct {
	Gateway       enums.Gateway
	SaleID        string
	RawStatus     string
	TransactionID string
	PaymentMethod enums.PaymentMethod
	AmountCents   int64
	FeeCents      int64
	InterestCents int64
	OccurredAt    time.Time
}

// Result is either a recognized Event or the reason the payload was skipped.
type Result struct {
	event  *Event
	reason string
}

// Recognized wraps a normalized event.
func Recognized(event Event) Result {
	return Result{event: &event}
}

// Unrecognized reports a payload that no normalizer accepted.
func Unrecognized(reason string) Result {
	return Result{reason: reason}
}

// Event returns the normalized event and true when the payload was recognized.
func (r Result) Event() (Event, bool) {
	if r.event == nil {
		return Event{}, false
	}
	return *r.event, true
}

// Reason explains an unrecognized result. Empty for recognized ones.
func (r Result) Reason() string {
	return r.reason
}

// Shape is the cheap first-pass view of a body used for gateway detection.
type Shape struct {
	Fields  map[string]json.RawMessage
	Headers http.Header
}

// Has reports whether the top-level key exists and is not JSON null.
func (s Shape) Has(key string) bool {
	raw, ok := s.Fields[key]
	return ok && string(raw) != "null"
}

// String decodes a top-level string field, returning "" when absent or not a string.
func (s Shape) String(key string) string {
	raw, ok := s.Fields[key]
	if !ok {
		return ""
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return ""
	}
	return value
}

// Normalizer converts one gateway's payloads.
type Normalizer interface {
	Gateway() enums.Gateway
	Detect(shape Shape) bool
	Normalize(body []byte) Result
}
