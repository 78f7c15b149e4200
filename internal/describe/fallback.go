package describe

import (
	"context"
	"fmt"
	"image"
	"time"

	"go.uber.org/zap"
)

// Fallback makes a Describer infallible. Errors, timeouts, panics and a nil
// inner describer all yield DefaultLabels. It never retries.
type Fallback struct {
	inner   Describer
	timeout time.Duration
	log     *zap.Logger
}

// NewFallback wraps inner. A timeout <= 0 leaves the deadline to ctx. A nil
// logger disables logging.
func NewFallback(inner Describer, timeout time.Duration, log *zap.Logger) *Fallback {
	if log == nil {
		log = zap.NewNop()
	}
	return &Fallback{inner: inner, timeout: timeout, log: log}
}

// Describe returns the description of img, or the default pair.
func (f *Fallback) Describe(ctx context.Context, img image.Image) (pair LabelPair) {
	if f.inner == nil {
		f.log.Debug("describer disabled, using default labels")
		return DefaultLabels()
	}

	defer func() {
		if r := recover(); r != nil {
			f.log.Warn("description unavailable, using default labels", zap.String("panic", fmt.Sprint(r)))
			pair = DefaultLabels()
		}
	}()

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	start := time.Now()
	top, bottom, err := f.inner.Describe(ctx, img)
	if err == nil && (top == "" || bottom == "") {
		err = ErrMalformedResponse
	}
	if err != nil {
		f.log.Warn("description unavailable, using default labels",
			zap.Error(err),
			zap.Duration("elapsed", time.Since(start)))
		return DefaultLabels()
	}

	f.log.Debug("description received",
		zap.String("top", top),
		zap.String("bottom", bottom),
		zap.Duration("elapsed", time.Since(start)))
	return LabelPair{Top: top, Bottom: bottom}
}
