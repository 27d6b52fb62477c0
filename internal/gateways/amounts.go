package gateways

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// validationReason flattens validator errors into a short log-friendly reason.
func validationReason(gateway string, err error) string {
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return gateway + " payload invalid: " + err.Error()
	}
	fields := make([]string, 0, len(errs))
	for _, fe := range errs {
		fields = append(fields, fe.Namespace()+" "+fe.Tag())
	}
	return gateway + " payload invalid: " + strings.Join(fields, ", ")
}

// reaisToCents converts a decimal currency amount to integer cents, rounding
// half away from zero.
func reaisToCents(value decimal.Decimal) int64 {
	return value.Mul(hundred).Round(0).IntPart()
}

// metadataCents reads an integer cents value stored as a metadata string.
func metadataCents(metadata map[string]string, key string) int64 {
	if metadata == nil {
		return 0
	}
	raw := strings.TrimSpace(metadata[key])
	if raw == "" {
		return 0
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value < 0 {
		return 0
	}
	return value
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
