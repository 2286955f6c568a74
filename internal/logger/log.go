package logger

import (
	"go.uber.org/zap"
	"sync"
	"sync/atomic"
)

var nop = zap.NewNop().Sugar()

var (
	current  atomic.Pointer[zap.SugaredLogger]
	initOnce sync.Once
)

// L returns the process logger, or a no-op logger before InitLogger.
func L() *zap.SugaredLogger {
	if l := current.Load(); l != nil {
		return l
	}
	return nop
}

// InitLogger builds the process logger once; later calls are no-ops.
func InitLogger(debug bool) {
	initOnce.Do(func() {
		var (
			logger *zap.Logger
			err    error
		)
		if debug {
			logger, err = zap.NewDevelopment()
		} else {
			logger, err = zap.NewProduction()
		}
		if err != nil {
			logger = zap.NewNop()
		}
		current.Store(logger.Sugar())
	})
}

func Sync() {
	_ = L().Sync()
}
