package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/relayout/pkg/observability"
)

// logHooks reports layout and cache events to the debug log.
type logHooks struct {
	logger *log.Logger
}

var (
	_ observability.LayoutHooks = logHooks{}
	_ observability.CacheHooks  = logHooks{}
)

// registerLogHooks routes observability events to logger when it logs at
// debug level.
func registerLogHooks(logger *log.Logger) {
	if logger.GetLevel() > log.DebugLevel {
		return
	}
	h := logHooks{logger: logger}
	observability.SetLayoutHooks(h)
	observability.SetCacheHooks(h)
}

func (h logHooks) OnResolve(component string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("evaluate failed", "component", component, "err", err)
		return
	}
	h.logger.Debug("evaluated", "component", component, "took", d)
}

func (h logHooks) OnApply(component string, attempts int, err error) {
	switch {
	case err != nil:
		h.logger.Debug("apply failed", "component", component, "attempts", attempts, "err", err)
	case attempts > 1:
		h.logger.Debug("apply settled", "component", component, "attempts", attempts)
	}
}

func (h logHooks) OnInverse(component string, err error) {
	if err != nil {
		h.logger.Debug("move rejected", "component", component, "err", err)
		return
	}
	h.logger.Debug("rectangle rewritten", "component", component)
}

func (h logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}
