package telemetry

import (
	"io"
	"os"
	"sort"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.Mutex
	logger = newLogger(os.Stdout)
)

// Keys owned by the encoder. Fields using them are dropped.
var reservedKeys = map[string]struct{}{"ts": {}, "level": {}, "msg": {}}

func newLogger(w io.Writer) *zap.Logger {
	encoderCfg := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		MessageKey:     "msg",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.RFC3339TimeEncoder,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
	}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.Lock(zapcore.AddSync(w)), zapcore.DebugLevel)
	return zap.New(core)
}

// SetOutput redirects log lines to w and returns a func restoring the previous writer.
// A nil writer means os.Stdout.
func SetOutput(w io.Writer) func() {
	if w == nil {
		w = os.Stdout
	}
	next := newLogger(w)
	mu.Lock()
	prev := logger
	logger = next
	mu.Unlock()
	return func() {
		mu.Lock()
		logger = prev
		mu.Unlock()
	}
}

// Info writes an info-level log line with the given fields.
func Info(msg string, fields map[string]any) {
	write(zapcore.InfoLevel, msg, fields)
}

// Warn writes a warn-level log line with the given fields.
func Warn(msg string, fields map[string]any) {
	write(zapcore.WarnLevel, msg, fields)
}

// Error writes an error-level log line with the given fields.
func Error(msg string, fields map[string]any) {
	write(zapcore.ErrorLevel, msg, fields)
}

func write(level zapcore.Level, msg string, fields map[string]any) {
	mu.Lock()
	l := logger
	mu.Unlock()

	ce := l.Check(level, msg)
	if ce == nil {
		return
	}
	ce.Write(toFields(fields)...)
}

// toFields orders fields by key and renders errors as their message.
func toFields(fields map[string]any) []zap.Field {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if _, reserved := reservedKeys[k]; reserved {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		if err, ok := fields[k].(error); ok {
			out = append(out, zap.String(k, err.Error()))
			continue
		}
		out = append(out, zap.Any(k, fields[k]))
	}
	return out
}
