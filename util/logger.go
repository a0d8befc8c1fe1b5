// Package util provides low-level helpers shared by all other packages.
package util

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/sirupsen/logrus"
)

// LogLevel controls output verbosity.
type LogLevel int

const (
	LogQuiet   LogLevel = 0
	LogNormal  LogLevel = 1
	LogVerbose LogLevel = 2
	LogDebug   LogLevel = 3
)

// Logger writes levelled diagnostics to stderr with optional timestamps
// and level prefixes.  It is a thin veneer over logrus that keeps the
// -v/-vv/-vvv verbosity model of the CLI.
type Logger struct {
	base  *logrus.Logger
	entry *logrus.Entry
	level LogLevel
	fmt   *prefixFormatter
}

// NewLogger returns a Logger that prints messages at or below the given
// verbosity (0 = quiet, 1 = normal, 2 = verbose, 3 = debug).
func NewLogger(verbosity int) *Logger {
	f := &prefixFormatter{timestamps: verbosity >= 3} // auto-enable timestamps in debug mode
	base := logrus.New()
	base.SetOutput(os.Stderr)
	base.SetFormatter(f)
	base.SetLevel(logrusLevel(LogLevel(verbosity)))

	return &Logger{
		base:  base,
		entry: logrus.NewEntry(base),
		level: LogLevel(verbosity),
		fmt:   f,
	}
}

// logrusLevel maps CLI verbosity to the most detailed logrus level that
// should be emitted.  Verbose lines are logged at Debug, debug lines at
// Trace.
func logrusLevel(l LogLevel) logrus.Level {
	switch {
	case l <= LogQuiet:
		return logrus.ErrorLevel
	case l == LogNormal:
		return logrus.InfoLevel
	case l == LogVerbose:
		return logrus.DebugLevel
	default:
		return logrus.TraceLevel
	}
}

// SetTimestamps enables or disables timestamp prefixes.
func (l *Logger) SetTimestamps(on bool) { l.fmt.timestamps = on }

// SetOutput overrides the output writer (default: os.Stderr).
func (l *Logger) SetOutput(w io.Writer) { l.base.SetOutput(w) }

// Level returns the current log level.
func (l *Logger) Level() LogLevel { return l.level }

// With returns a Logger that appends key=value to every line.
func (l *Logger) With(key string, value interface{}) *Logger {
	return &Logger{
		base:  l.base,
		entry: l.entry.WithField(key, value),
		level: l.level,
		fmt:   l.fmt,
	}
}

// Info prints when verbosity ≥ 1.  Prefixed with [INF].
func (l *Logger) Info(format string, args ...interface{}) { l.entry.Infof(format, args...) }

// Warn prints when verbosity ≥ 1.  Prefixed with [WRN].
func (l *Logger) Warn(format string, args ...interface{}) { l.entry.Warnf(format, args...) }

// Verbose prints when verbosity ≥ 2.  Prefixed with [VRB].
func (l *Logger) Verbose(format string, args ...interface{}) { l.entry.Debugf(format, args...) }

// Debug prints when verbosity ≥ 3.  Prefixed with [DBG].
func (l *Logger) Debug(format string, args ...interface{}) { l.entry.Tracef(format, args...) }

// Error always prints regardless of verbosity.  Prefixed with [ERR].
func (l *Logger) Error(format string, args ...interface{}) { l.entry.Errorf(format, args...) }

// ── formatter ────────────────────────────────────────────────────────

// prefixFormatter renders "[LVL] message key=value" lines.
type prefixFormatter struct {
	timestamps bool // if true, prepend HH:MM:SS.mmm
}

var levelTags = map[logrus.Level]string{
	logrus.PanicLevel: "ERR",
	logrus.FatalLevel: "ERR",
	logrus.ErrorLevel: "ERR",
	logrus.WarnLevel:  "WRN",
	logrus.InfoLevel:  "INF",
	logrus.DebugLevel: "VRB",
	logrus.TraceLevel: "DBG",
}

func (f *prefixFormatter) Format(e *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer
	if f.timestamps {
		b.WriteString(e.Time.Format("15:04:05.000"))
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "[%s] %s", levelTags[e.Level], e.Message)

	if len(e.Data) > 0 {
		keys := make([]string, 0, len(e.Data))
		for k := range e.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, e.Data[k])
		}
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}
