package instance

import (
	"fmt"
	"os"

	"github.com/paclead/splitsettle/pkg/env"
)

// EnvInstanceID overrides the derived replica identifier.
const EnvInstanceID = "SPLITSETTLE_INSTANCE_ID"

// GetID identifies this replica in logs and lock diagnostics. Without an
// override it is "<service>-<hostname>".
func GetID(service string) string {
	if id := env.Get(EnvInstanceID, ""); id != "" {
		return id
	}
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "0"
	}
	return fmt.Sprintf("%s-%s", service, host)
}
