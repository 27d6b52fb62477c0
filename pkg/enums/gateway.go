package enums

import (
	"fmt"
	"strings"
)

// Gateway identifies the payment processor that delivered a webhook.
type Gateway string

const (
	GatewayStripe  Gateway = "stripe"
	GatewaySquare  Gateway = "square"
	GatewayAsaas   Gateway = "asaas"
	GatewayPagarme Gateway = "pagarme"
)

var validGateways = []Gateway{
	GatewayStripe,
	GatewaySquare,
	GatewayAsaas,
	GatewayPagarme,
}

// Gateways returns the supported gateways in dispatch order.
func Gateways() []Gateway {
	out := make([]Gateway, len(validGateways))
	copy(out, validGateways)
	return out
}

// String implements fmt.Stringer.
func (g Gateway) String() string {
	return string(g)
}

// IsValid reports whether the value is a supported gateway.
func (g Gateway) IsValid() bool {
	for _, candidate := range validGateways {
		if candidate == g {
			return true
		}
	}
	return false
}

// ParseGateway converts raw input (case-insensitive) into a Gateway.
func ParseGateway(value string) (Gateway, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validGateways {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid gateway %q", value)
}
