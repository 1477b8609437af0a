package kcgx

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel error kinds. Errors this package classifies wrap one of these
// so callers can use errors.Is; a clean end of stream (no bytes of a new
// record or session read) is returned as a bare io.EOF instead.
var (
	ErrProtocol      = errors.New("kcgx: protocol violation")
	ErrFatal         = errors.New("kcgx: fatal worker error")
	ErrValidation    = errors.New("kcgx: validation rejected")
	ErrIPC           = errors.New("kcgx: ipc failure")
	ErrRead          = errors.New("kcgx: read error")
	ErrWrite         = errors.New("kcgx: write error")
	ErrUnexpectedEOF = errors.New("kcgx: unexpected eof")
)

// wrap enhances err with a classification and a short message, the way
// the FastCGI client this package descends from reports failures.
func wrap(err, kind error, msg string) error {
	return fmt.Errorf("%w: %s: %v", kind, msg, err)
}

// wrapWithContext adds structured key=value context to a wrapped error.
func wrapWithContext(err, kind error, msg string, context map[string]any) error {
	if len(context) == 0 {
		return wrap(err, kind, msg)
	}
	parts := make([]string, 0, len(context))
	for k, v := range context {
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	return fmt.Errorf("%w: %s (%s): %v", kind, msg, strings.Join(parts, " "), err)
}
