package enums

import "strings"

// PaymentMethod is the normalized instrument used to pay a sale.
type PaymentMethod string

const (
	PaymentMethodPix        PaymentMethod = "pix"
	PaymentMethodBoleto     PaymentMethod = "boleto"
	PaymentMethodCreditCard PaymentMethod = "credit_card"
	PaymentMethodDebitCard  PaymentMethod = "debit_card"
	PaymentMethodUnknown    PaymentMethod = "unknown"
)

var paymentMethodAliases = map[string]PaymentMethod{
	"pix":         PaymentMethodPix,
	"boleto":      PaymentMethodBoleto,
	"bank_slip":   PaymentMethodBoleto,
	"credit_card": PaymentMethodCreditCard,
	"creditcard":  PaymentMethodCreditCard,
	"card":        PaymentMethodCreditCard,
	"debit_card":  PaymentMethodDebitCard,
	"debitcard":   PaymentMethodDebitCard,
}

// String implements fmt.Stringer.
func (m PaymentMethod) String() string {
	return string(m)
}

// NormalizePaymentMethod folds gateway spellings (CREDIT_CARD, BANK_SLIP,
// card) into a PaymentMethod. Unrecognized input yields PaymentMethodUnknown.
func NormalizePaymentMethod(value string) PaymentMethod {
	key := strings.ToLower(strings.TrimSpace(value))
	if method, ok := paymentMethodAliases[key]; ok {
		return method
	}
	return PaymentMethodUnknown
}
