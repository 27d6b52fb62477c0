package payment

import (
	"strings"

	"github.com/paclead/splitsettle/pkg/enums"
)

const unknownSubject = "unknown"

// BuildStableRef derives the deduplication token for an event. It uses the
// normalized event type, never the raw gateway status, so two spellings of
// the same lifecycle step collapse onto one key.
func BuildStableRef(gateway enums.Gateway, transactionID, saleID string, eventType enums.SettlementEventType) string {
	subject := strings.TrimSpace(transactionID)
	if subject == "" {
		subject = strings.TrimSpace(saleID)
	}
	if subject == "" {
		subject = unknownSubject
	}
	return string(gateway) + ":" + subject + ":" + string(eventType)
}
