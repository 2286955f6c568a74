//go:build debug

package profile

import (
	"net/http"
	_ "net/http/pprof"

	"tasktracker/internal/logger"
)

// StartPprof serves net/http/pprof on addr. An empty addr disables it.
func StartPprof(addr string) {
	if addr == "" {
		return
	}
	go func() {
		logger.L().Infow("pprof enabled", "addr", addr)
		if err := http.ListenAndServe(addr, nil); err != nil {
			logger.L().Errorw("pprof listener stopped", "error", err)
		}
	}()
}
