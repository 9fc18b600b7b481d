// Package environment reads runtime environment configuration.
package environment

import (
	"os"
	"strings"

	"github.com/meza/minepkg/internal/constants"
)

var posthogAPIKeyDefault = "REPL_POSTHOG_API_KEY" // #nosec G101 -- build-time placeholder replaced in release builds.

func PosthogAPIKey() string {
	key, present := os.LookupEnv("POSTHOG_API_KEY")
	if present {
		return key
	}

	return posthogAPIKeyDefault
}

func AppVersion() string {
	return "REPL_VERSION"
}

func HelpURL() string {
	return "REPL_HELP_URL"
}

func UserAgent() string {
	return constants.AppName + "/" + AppVersion()
}

// TelemetryDisabled honours MINEPKG_TELEMETRY=off|false|0.
func TelemetryDisabled() bool {
	value, present := os.LookupEnv(constants.EnvPrefix + "_TELEMETRY")
	if !present {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "off", "false", "0", "no":
		return true
	}
	return false
}
