package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the process-wide logger. It is a no-op until Init runs, so
// packages can log from tests without setup.
var Log = zap.NewNop()

// Init builds the global logger. Production emits JSON at info level;
// development writes a colored console at warn level so it does not
// repeat the command's own progress output. verbose drops either to debug.
// Logs go to stderr.
func Init(env string, verbose bool) error {
	cfg := Config(env, verbose)
	l, err := cfg.Build()
	if err != nil {
		return err
	}
	Log = l
	zap.ReplaceGlobals(Log)
	return nil
}

// Config returns the zap configuration Init uses.
func Config(env string, verbose bool) zap.Config {
	var cfg zap.Config
	if env == "production" {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg
}

// Sync flushes buffered entries.
func Sync() {
	_ = Log.Sync()
}
