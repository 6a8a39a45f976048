// Package logger prints leveled, colored log lines.
package logger

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
)

type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var level atomic.Int32

func init() {
	level.Store(int32(LevelInfo))
}

// ParseLevel maps a config string to a Level, falling back to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func SetLevel(l Level) {
	level.Store(int32(l))
}

func enabled(l Level) bool {
	return Level(level.Load()) <= l
}

func stamp() string {
	return time.Now().Format("2006-01-02 15:04:05")
}

func Debug(format string, args ...interface{}) {
	if !enabled(LevelDebug) {
		return
	}
	color.Cyan("%s [DEBUG] %s", stamp(), fmt.Sprintf(format, args...))
}

func Info(format string, args ...interface{}) {
	if !enabled(LevelInfo) {
		return
	}
	color.Blue("%s [INFO] %s", stamp(), fmt.Sprintf(format, args...))
}

func Warn(format string, args ...interface{}) {
	if !enabled(LevelWarn) {
		return
	}
	color.Yellow("%s [WARN] %s", stamp(), fmt.Sprintf(format, args...))
}

func Error(format string, args ...interface{}) {
	if !enabled(LevelError) {
		return
	}
	color.Red("%s [ERROR] %s", stamp(), fmt.Sprintf(format, args...))
}
