// Package observability holds the opt-in debug toggles that wire into
// the HTTP surface. Everything here defaults to off.
package observability

import (
	"log"
	"os"
	"strconv"
)

// Config captures opt-in observability toggles.
type Config struct {
	// EnablePprofTrace mounts the profiler routes under /debug.
	EnablePprofTrace bool
}

// FromEnv applies the ENABLE_PPROF_TRACE override on top of cfg. A
// value that does not parse as a bool is logged and ignored.
func FromEnv(cfg Config, logger *log.Logger) Config {
	raw := os.Getenv("ENABLE_PPROF_TRACE")
	if raw == "" {
		return cfg
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		if logger != nil {
			logger.Printf("invalid ENABLE_PPROF_TRACE=%q: %v", raw, err)
		}
		return cfg
	}
	cfg.EnablePprofTrace = value
	return cfg
}
