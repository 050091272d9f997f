package log

import (
	"io"
	"log"
	"os"
	"strings"
)

const (
	LevelError = iota
	LevelWarn
	LevelInfo
	LevelDebug

	prefixError = "\033[31m[ERROR]\033[0m "
	prefixWarn  = "\033[33m[WARN]\033[0m "
	prefixInfo  = "\033[32m[INFO]\033[0m "
	prefixDebug = "\033[36m[DEBUG]\033[0m "
)

var prefixes = []string{prefixError, prefixWarn, prefixInfo, prefixDebug}

var global = NewLogger(LevelInfo, os.Stdout)

type Logger struct {
	level   int
	loggers []*log.Logger
}

func NewLogger(level int, out io.Writer) *Logger {
	if level < LevelError {
		level = LevelError
	}
	if level > LevelDebug {
		level = LevelDebug
	}
	l := &Logger{level: level, loggers: make([]*log.Logger, LevelDebug+1)}
	for i := LevelError; i <= LevelDebug; i++ {
		if i > level {
			l.loggers[i] = log.New(io.Discard, "", 0)
			continue
		}
		flags := log.LstdFlags
		if i != LevelInfo {
			flags |= log.Lshortfile
		}
		l.loggers[i] = log.New(out, prefixes[i], flags)
	}
	return l
}

// ParseLevel maps a config string to a level, defaulting to info.
func ParseLevel(s string) int {
	switch strings.ToLower(s) {
	case "error":
		return LevelError
	case "warn", "warning":
		return LevelWarn
	case "debug":
		return LevelDebug
	default:
		return LevelInfo
	}
}

func (l *Logger) Error(err error) {
	l.loggers[LevelError].Output(2, err.Error())
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.loggers[LevelError].Printf(format, args...)
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.loggers[LevelWarn].Printf(format, args...)
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.loggers[LevelInfo].Printf(format, args...)
}

func (l *Logger) Debug(format string, args ...interface{}) {
	l.loggers[LevelDebug].Printf(format, args...)
}

func (l *Logger) SetOutput(out io.Writer) {
	for _, lg := range l.loggers {
		lg.SetOutput(out)
	}
}

// SetLevel replaces the global logger, used after config load.
func SetLevel(level int) {
	global = NewLogger(level, os.Stdout)
}

func Error(err error) {
	global.Error(err)
}

func Errorf(format string, args ...interface{}) {
	global.Errorf(format, args...)
}

func Warn(format string, args ...interface{}) {
	global.Warn(format, args...)
}

func Info(format string, args ...interface{}) {
	global.Info(format, args...)
}

func Debug(format string, args ...interface{}) {
	global.Debug(format, args...)
}

func SetOutput(out io.Writer) {
	global.SetOutput(out)
}
