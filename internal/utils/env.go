package utils

import (
	"os"
	"strings"
)

// GetEnvBool reports whether key is set to a truthy value.
func GetEnvBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
