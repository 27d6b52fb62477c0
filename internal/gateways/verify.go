package gateways

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/stripe/stripe-go/v84/webhook"

	"github.com/paclead/splitsettle/pkg/config"
	"github.com/paclead/splitsettle/pkg/enums"
	pkgerrors "github.com/paclead/splitsettle/pkg/errors"
)

const (
	headerStripeSignature  = "Stripe-Signature"
	headerSquareSignature  = "X-Square-Hmacsha256-Signature"
	headerAsaasToken       = "Asaas-Access-Token"
	headerPagarmeSignature = "X-Hub-Signature"
)

// ErrInvalidSignature is returned when a configured gateway secret does not
// authenticate the delivery.
var ErrInvalidSignature = pkgerrors.New(pkgerrors.CodeUnauthorized, "webhook signature invalid")

// Verifier authenticates deliveries per gateway. A gateway with no secret
// configured is accepted unverified.
type Verifier struct {
	cfg config.WebhookConfig
}

func NewVerifier(cfg config.WebhookConfig) *Verifier {
	return &Verifier{cfg: cfg}
}

// Enabled reports whether deliveries for gateway are checked.
func (v *Verifier) Enabled(gateway enums.Gateway) bool {
	if v == nil {
		return false
	}
	switch gateway {
	case enums.GatewayStripe:
		return v.cfg.StripeSigningSecret != ""
	case enums.GatewaySquare:
		return v.cfg.SquareSignatureKey != ""
	case enums.GatewayAsaas:
		return v.cfg.AsaasAccessToken != ""
	case enums.GatewayPagarme:
		return v.cfg.PagarmeSecret != ""
	default:
		return false
	}
}

func (v *Verifier) Verify(gateway enums.Gateway, body []byte, headers http.Header) error {
	if !v.Enabled(gateway) {
		return nil
	}
	var ok bool
	switch gateway {
	case enums.GatewayStripe:
		ok = v.verifyStripe(body, headers)
	case enums.GatewaySquare:
		ok = v.verifySquare(body, headers)
	case enums.GatewayAsaas:
		ok = constantTimeEqual(headers.Get(headerAsaasToken), v.cfg.AsaasAccessToken)
	case enums.GatewayPagarme:
		ok = v.verifyPagarme(body, headers)
	}
	if !ok {
		return ErrInvalidSignature
	}
	return nil
}

func (v *Verifier) verifyStripe(body []byte, headers http.Header) bool {
	sig := headers.Get(headerStripeSignature)
	if sig == "" {
		return false
	}
	_, err := webhook.ConstructEventWithOptions(body, sig, v.cfg.StripeSigningSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	return err == nil
}

// Square signs notification URL + body with HMAC-SHA256, base64 encoded.
func (v *Verifier) verifySquare(body []byte, headers http.Header) bool {
	sig := headers.Get(headerSquareSignature)
	if sig == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(v.cfg.SquareSignatureKey))
	mac.Write([]byte(v.cfg.SquareNotificationURL))
	mac.Write(body)
	return constantTimeEqual(sig, base64.StdEncoding.EncodeToString(mac.Sum(nil)))
}

// Pagar.me sends "sha1=<hex>" of the raw body.
func (v *Verifier) verifyPagarme(body []byte, headers http.Header) bool {
	sig := strings.TrimPrefix(headers.Get(headerPagarmeSignature), "sha1=")
	if sig == "" {
		return false
	}
	mac := hmac.New(sha1.New, []byte(v.cfg.PagarmeSecret))
	mac.Write(body)
	return constantTimeEqual(strings.ToLower(sig), hex.EncodeToString(mac.Sum(nil)))
}

func constantTimeEqual(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
