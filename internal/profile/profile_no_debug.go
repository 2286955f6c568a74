//go:build !debug

package profile

import "tasktracker/internal/logger"

// StartPprof is a no-op unless the binary is built with -tags debug.
func StartPprof(addr string) {
	if addr != "" {
		logger.L().Warnw("pprof requested but binary built without debug tag", "addr", addr)
	}
}
