package env

import (
	"os"
	"strings"
)

// Get reads key from the process environment. Blank or whitespace-only
// values count as unset so a stray "LOG_FORMAT= " in a .env file still
// yields the fallback.
func Get(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}
