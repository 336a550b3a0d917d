package cwn

import (
	"fmt"
	"github.com/kataras/golog"
	"io"
	"runtime"
	"strings"
	"time"
)

const NEWLINE = "\n"

var Log = newLogger()

type NearbyFormatter struct{}

// The name of the formatter.
func (f *NearbyFormatter) String() string {
	return "NearbyFormatter"
}

// Set any options and return a clone,
// generic. See `Logger.SetFormat`.
func (f *NearbyFormatter) Options(_ ...interface{}) golog.Formatter {
	return f
}

// Writes the "log" to "dest" logger.
func (f *NearbyFormatter) Format(dest io.Writer, log *golog.Log) bool {
	timestamp := time.Now().Format(time.RFC1123)
	line := fmt.Sprintf("%s %s %s: %s%s", timestamp, golog.Levels[log.Level].Text(true), getCallingFunction(), log.Message, NEWLINE)
	if _, err := dest.Write([]byte(line)); err != nil {
		fmt.Printf("[FATAL] error in logger: %+v\n", err)
		return false
	}
	return true
}

func newLogger() *golog.Logger {
	logger := golog.New()
	logger.RegisterFormatter(&NearbyFormatter{})
	logger.SetLevel("info")
	logger.SetFormat("NearbyFormatter")
	return logger
}

// returns the name of the function that called the logger,
// skipping golog's own frames
func getCallingFunction() string {
	skipFnNames := []string{"kataras", "cwn.getCallingFunction"}

	programCounters := make([]uintptr, 32)
	n := runtime.Callers(2, programCounters)
	if n == 0 {
		return "unknown"
	}

	frames := runtime.CallersFrames(programCounters[:n])
	for more := true; more; {
		var frame runtime.Frame
		frame, more = frames.Next()

		skip := strings.HasPrefix(frame.Function, "runtime.")
		for _, skipFnName := range skipFnNames {
			if strings.Contains(frame.Function, skipFnName) {
				skip = true
				break
			}
		}
		if skip || strings.HasSuffix(frame.Function, ".Format") {
			continue
		}

		parts := strings.Split(frame.Function, "/")
		return parts[len(parts)-1]
	}

	return "unknown"
}

// redact replaces every occurrence of secret in msg, used before logging
// anything that may carry the api key
func redact(msg string, secret string) string {
	if len(secret) == 0 {
		return msg
	}
	return strings.ReplaceAll(msg, secret, "<snip>")
}
