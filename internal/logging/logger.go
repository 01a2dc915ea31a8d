package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.Logger so binaries can pass one value around and hand
// the embedded *zap.Logger to the bridge, transport and host packages.
type Logger struct {
	*zap.Logger
}

// Config defines logger configuration.
type Config struct {
	Level       string // "debug", "info", "warn", "error"
	Development bool
	// OutputPaths defaults to stderr, which keeps stdout free for the
	// component's own output.
	OutputPaths []string
}

// New creates a new logger with the provided configuration.
func New(cfg Config) (*Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	outputs := cfg.OutputPaths
	if len(outputs) == 0 {
		outputs = []string{"stderr"}
	}

	encoding, encoder := "json", productionEncoder()
	if cfg.Development {
		encoding, encoder = "console", developmentEncoder()
	}

	logger, err := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Development:       cfg.Development,
		Encoding:          encoding,
		EncoderConfig:     encoder,
		OutputPaths:       outputs,
		ErrorOutputPaths:  []string{"stderr"},
		DisableStacktrace: !cfg.Development,
	}.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{Logger: logger}, nil
}

// FromConfig builds a logger from a level name and mode, as read from the
// environment. Development mode defaults to debug, production to info; an
// unknown level keeps the mode's default. Build failures yield a no-op
// logger.
func FromConfig(level string, development bool) *Logger {
	cfg := Config{Level: "info", Development: development}
	if development {
		cfg.Level = "debug"
	}
	if _, err := parseLevel(level); level != "" && err == nil {
		cfg.Level = level
	}

	logger, err := New(cfg)
	if err != nil {
		return NewNop()
	}
	return logger
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

// Component returns a child logger named after a subsystem, e.g.
// "server" or "editor".
func (l *Logger) Component(name string) *Logger {
	return &Logger{Logger: l.Logger.Named(name)}
}

func parseLevel(level string) (zapcore.Level, error) {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel, err
	}
	return l, nil
}

func developmentEncoder() zapcore.EncoderConfig {
	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	return enc
}

func productionEncoder() zapcore.EncoderConfig {
	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "timestamp"
	enc.MessageKey = "message"
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	enc.EncodeDuration = zapcore.SecondsDurationEncoder
	return enc
}
