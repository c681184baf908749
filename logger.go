package bdispatch

import (
	"log"
	"sync/atomic"
	"testing"
)

// Logger can be implemented to get informed about important states. LogHandlerError is the error
// channel: routing and handler failures that were answered with a 500. LogFallbackError is the warning
// channel: failures while producing that answer. LogBadRequest reports requests that never reached
// routing.
type Logger interface {
	LogHandlerError(err error)
	LogFallbackError(err error)
	LogBadRequest(err error)
}

type stdLogger struct{ *log.Logger }

func (l stdLogger) LogHandlerError(err error) {
	l.Logger.Printf("bdispatch: unhandled error: %s", err)
}

func (l stdLogger) LogFallbackError(err error) {
	l.Logger.Printf("bdispatch: error while handling error: %s", err)
}

func (l stdLogger) LogBadRequest(err error) {
	l.Logger.Printf("bdispatch: bad request: %s", err)
}

func NewStdLogger(l *log.Logger) Logger {
	return stdLogger{l}
}

type TestLogger struct {
	tb testing.TB

	NumLogHandlerError  int64
	NumLogFallbackError int64
	NumLogBadRequest    int64
}

func NewTestLogger(tb testing.TB) *TestLogger {
	return &TestLogger{tb: tb}
}

func (l *TestLogger) LogHandlerError(err error) {
	atomic.AddInt64(&l.NumLogHandlerError, 1)
	l.tb.Logf("bdispatch: unhandled error: %s", err)
}

func (l *TestLogger) LogFallbackError(err error) {
	atomic.AddInt64(&l.NumLogFallbackError, 1)
	l.tb.Logf("bdispatch: error while handling error: %s", err)
}

func (l *TestLogger) LogBadRequest(err error) {
	atomic.AddInt64(&l.NumLogBadRequest, 1)
	l.tb.Logf("bdispatch: bad request: %s", err)
}

var _ Logger = &TestLogger{}
