package logging

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pion/logging"
)

// PionFactory routes pion's scoped loggers into slog. pion is chatty, so
// its info output is demoted to debug.
type PionFactory struct {
	Logger *slog.Logger
}

func (f PionFactory) NewLogger(scope string) logging.LeveledLogger {
	l := f.Logger
	if l == nil {
		l = slog.Default()
	}
	return &pionLogger{l: l.With("scope", scope)}
}

type pionLogger struct {
	l *slog.Logger
}

func (p *pionLogger) log(level slog.Level, msg string) {
	p.l.Log(context.Background(), level, msg)
}

func (p *pionLogger) Trace(msg string) { p.log(slog.LevelDebug-4, msg) }
func (p *pionLogger) Tracef(format string, args ...interface{}) {
	p.log(slog.LevelDebug-4, fmt.Sprintf(format, args...))
}
func (p *pionLogger) Debug(msg string) { p.log(slog.LevelDebug, msg) }
func (p *pionLogger) Debugf(format string, args ...interface{}) {
	p.log(slog.LevelDebug, fmt.Sprintf(format, args...))
}
func (p *pionLogger) Info(msg string) { p.log(slog.LevelDebug, msg) }
func (p *pionLogger) Infof(format string, args ...interface{}) {
	p.log(slog.LevelDebug, fmt.Sprintf(format, args...))
}
func (p *pionLogger) Warn(msg string) { p.log(slog.LevelWarn, msg) }
func (p *pionLogger) Warnf(format string, args ...interface{}) {
	p.log(slog.LevelWarn, fmt.Sprintf(format, args...))
}
func (p *pionLogger) Error(msg string) { p.log(slog.LevelError, msg) }
func (p *pionLogger) Errorf(format string, args ...interface{}) {
	p.log(slog.LevelError, fmt.Sprintf(format, args...))
}
