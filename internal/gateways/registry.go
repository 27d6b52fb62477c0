package gateways

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/paclead/splitsettle/pkg/enums"
)

// Registry dispatches a body to the normalizer of its gateway. Detection runs
// in registration order, so more specific shapes must be registered first.
type Registry struct {
	order       []enums.Gateway
	normalizers map[enums.Gateway]Normalizer
}

// NewRegistry builds a dispatch table from the provided normalizers.
func NewRegistry(normalizers ...Normalizer) *Registry {
	r := &Registry{normalizers: make(map[enums.Gateway]Normalizer, len(normalizers))}
	for _, n := range normalizers {
		if n == nil {
			continue
		}
		if _, exists := r.normalizers[n.Gateway()]; !exists {
			r.order = append(r.order, n.Gateway())
		}
		r.normalizers[n.Gateway()] = n
	}
	return r
}

// DefaultRegistry wires every supported gateway.
func DefaultRegistry() *Registry {
	return NewRegistry(
		StripeNormalizer{},
		SquareNormalizer{},
		AsaasNormalizer{},
		PagarmeNormalizer{},
	)
}

// Lookup returns the normalizer registered for gateway.
func (r *Registry) Lookup(gateway enums.Gateway) (Normalizer, bool) {
	n, ok := r.normalizers[gateway]
	return n, ok
}

// Detect returns the gateway whose shape matches the body, without
// normalizing it. Invalid JSON yields ErrMalformedPayload.
func (r *Registry) Detect(body []byte, headers http.Header) (enums.Gateway, bool, error) {
	shape, isObject, err := newShape(body, headers)
	if err != nil {
		return "", false, err
	}
	if !isObject {
		return "", false, nil
	}
	for _, gw := range r.order {
		if r.normalizers[gw].Detect(shape) {
			return gw, true, nil
		}
	}
	return "", false, nil
}

// Normalize parses body into a canonical event. When hint is set the matching
// normalizer is used directly; otherwise the gateway is detected from the body.
func (r *Registry) Normalize(body []byte, headers http.Header, hint enums.Gateway) (Result, error) {
	if hint != "" {
		if _, _, err := newShape(body, headers); err != nil {
			return Result{}, err
		}
		n, ok := r.normalizers[hint]
		if !ok {
			return Unrecognized(fmt.Sprintf("gateway %q not supported", hint)), nil
		}
		return n.Normalize(body), nil
	}

	gw, found, err := r.Detect(body, headers)
	if err != nil {
		return Result{}, err
	}
	if !found {
		return Unrecognized("payload shape not recognized"), nil
	}
	return r.normalizers[gw].Normalize(body), nil
}

func newShape(body []byte, headers http.Header) (Shape, bool, error) {
	if !json.Valid(body) {
		return Shape{}, false, ErrMalformedPayload
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return Shape{}, false, nil
	}
	return Shape{Fields: fields, Headers: headers}, true, nil
}
