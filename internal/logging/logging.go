package logging

import (
	"os"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the process-wide logger. It discards everything until Init runs.
var Logger = zap.NewNop().Sugar()

// Init builds Logger. Debug mode logs everything in development format;
// otherwise only warnings and errors reach stderr.
func Init(debug bool) error {
	logger, err := New(debug, isatty.IsTerminal(os.Stderr.Fd()))
	if err != nil {
		return err
	}
	Logger = logger
	return nil
}

// New builds a console logger writing to stderr. Levels are coloured only
// when color is set.
func New(debug, color bool) (*zap.SugaredLogger, error) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if color {
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}
