package audit

import (
	"encoding/json"
	"log"

	"gridxml/internal/errors"
)

// Logger writes audit records through the standard logger, one line per
// terminal conversion state.
type Logger struct {
	out *log.Logger
}

// New returns a Logger backed by the process-wide standard logger
func New() *Logger {
	return &Logger{out: log.Default()}
}

// NewWithLogger returns a Logger writing to a specific log.Logger
func NewWithLogger(out *log.Logger) *Logger {
	return &Logger{out: out}
}

// Success records a successfully completed operation
func (l *Logger) Success(operation, actor string, detail map[string]any) {
	l.out.Printf("[audit] outcome=success op=%s actor=%s detail=%s", operation, actor, encodeDetail(detail))
}

// Failure records a failed operation with its error code
func (l *Logger) Failure(operation, actor string, err error, detail map[string]any) {
	l.out.Printf("[audit] outcome=failure op=%s actor=%s code=%s error=%q detail=%s",
		operation, actor, errors.GetCode(err), err.Error(), encodeDetail(detail))
}

func encodeDetail(detail map[string]any) string {
	if len(detail) == 0 {
		return "{}"
	}
	payload, err := json.Marshal(detail)
	if err != nil {
		return "{}"
	}
	return string(payload)
}
