// Package logger builds the application's zap logger.
package logger

import "go.uber.org/zap"

// New returns a production logger, or a development logger (console
// encoding, debug level) when env is "dev" or "test".
func New(env string) *zap.Logger {
	if env == "dev" || env == "test" {
		l, err := zap.NewDevelopment()
		if err != nil {
			return zap.NewNop()
		}
		return l
	}
	l, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop()
	}
	return l
}
