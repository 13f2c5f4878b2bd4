package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level. It implements
// [PipelineHooks], [CacheHooks] and [ServerHooks].
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks logging to logger, or to the default logger when
// logger is nil.
func NewLogHooks(logger *log.Logger) *LogHooks {
	if logger == nil {
		logger = log.Default()
	}
	return &LogHooks{logger: logger}
}

func (h *LogHooks) OnBuildStart(_ context.Context, name string) {
	h.logger.Debug("build started", "name", name)
}

func (h *LogHooks) OnBuildComplete(_ context.Context, name string, elements, refs int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("build failed", "name", name, "duration", d, "err", err)
		return
	}
	h.logger.Debug("build complete", "name", name, "elements", elements, "refs", refs, "duration", d)
}

func (h *LogHooks) OnRenderStart(_ context.Context, engine, format string) {
	h.logger.Debug("render started", "engine", engine, "format", format)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, engine, format string, size int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("render failed", "engine", engine, "format", format, "duration", d, "err", err)
		return
	}
	h.logger.Debug("render complete", "engine", engine, "format", format, "bytes", size, "duration", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, path string) {
	h.logger.Debug("request", "method", method, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "path", path, "status", status, "duration", d)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ ServerHooks   = (*LogHooks)(nil)
)
