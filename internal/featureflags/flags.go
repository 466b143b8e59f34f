package featureflags

import (
	"os"
	"strings"
)

// Flags gating optional subsystems. FeedCache turns Redis page caching on;
// Reconciler turns the background sweep off when another instance owns it.
const (
	FeedCache  = "feed_cache"
	Reconciler = "reconciler"
)

// Enabled returns true if a flag is enabled via environment variable.
// Flags are read from env as FLAG_<NAME>=true/1/yes (case-insensitive)
func Enabled(name string) bool {
	v := os.Getenv("FLAG_" + strings.ToUpper(name))
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// EnabledDefault is like Enabled but treats an unset variable as the given
// default instead of false.
func EnabledDefault(name string, def bool) bool {
	v := os.Getenv("FLAG_" + strings.ToUpper(name))
	if v == "" {
		return def
	}
	return Enabled(name)
}
