package kcgx

import "go.uber.org/zap"

// Log is the package-level logger, a single shared global: swap it once
// at startup via SetLogger rather than threading a logger through every
// call.
var Log = zap.NewNop().Sugar()

// SetLogger replaces the package-level logger. Pass nil to silence logging.
func SetLogger(l *zap.SugaredLogger) {
	if l == nil {
		Log = zap.NewNop().Sugar()
		return
	}
	Log = l
}
