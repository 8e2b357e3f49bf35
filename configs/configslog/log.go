package configslog

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Log structured logger, used where fields matter.
	Log *zap.Logger
	// SLog sugared logger for printf style messages.
	SLog *zap.SugaredLogger
)

func init() {
	// Packages log before main runs InitLogger (tests, seeders); never leave them nil.
	Log = zap.NewNop()
	SLog = Log.Sugar()
}

// InitLogger builds the global loggers from APP_ENV and LOG_LEVEL.
func InitLogger() {
	var cfg zap.Config
	if strings.EqualFold(os.Getenv("APP_ENV"), "production") {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		var level zapcore.Level
		if err := level.UnmarshalText([]byte(lvl)); err == nil {
			cfg.Level = zap.NewAtomicLevelAt(level)
		}
	}

	logger, err := cfg.Build(zap.AddCaller())
	if err != nil {
		logger = zap.NewExample()
		logger.Error("Logger could not be built, falling back to example logger", zap.Error(err))
	}
	Log = logger
	SLog = logger.Sugar()
}

// SetLogger replaces the global loggers, mainly for tests.
func SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	Log = logger
	SLog = logger.Sugar()
}

// SyncLogger flushes buffered entries. Call with defer from main.
func SyncLogger() {
	if Log != nil {
		_ = Log.Sync()
	}
}
