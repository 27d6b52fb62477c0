package types

// SuccessEnvelope wraps every 2xx body returned by the split API.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError carries a stable machine code (VALIDATION_ERROR, CONFLICT, ...)
// next to a message that is safe to show a tenant operator.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Details is set only for codes whose metadata allows it.
	Details any `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
