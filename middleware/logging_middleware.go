package middleware

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Logging records the call name, duration, and any error for each
// invocation with structured zap fields, logging after next returns with
// the elapsed time.
func Logging(logger *zap.Logger, name string) Middleware {
	return func(next Invoke) Invoke {
		return func(ctx context.Context) error {
			start := time.Now()
			err := next(ctx)
			fields := []zap.Field{
				zap.String("call", name),
				zap.Duration("duration", time.Since(start)),
			}
			if err != nil {
				logger.Warn("call failed", append(fields, zap.Error(err))...)
			} else {
				logger.Debug("call completed", fields...)
			}
			return err
		}
	}
}
