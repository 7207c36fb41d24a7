package main

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"nickandperla.net/mexp/pkg/mexp"
)

var logLevelMap = map[string]zapcore.Level{
	"debug":   zap.DebugLevel,
	"info":    zap.InfoLevel,
	"warning": zap.WarnLevel,
	"error":   zap.ErrorLevel,
}

var logLevelSeverity = map[zapcore.Level]string{
	zapcore.DebugLevel: "DEBUG",
	zapcore.InfoLevel:  "INFO",
	zapcore.WarnLevel:  "WARNING",
	zapcore.ErrorLevel: "ERROR",
}

var log = zap.NewNop().Sugar()

// setupLogging builds the console logger, optionally mirrored to a rotated
// file in logDir, and hands it to the mexp packages.
func setupLogging(logDir, level string) (*zap.Logger, error) {
	logLevel, ok := logLevelMap[level]
	if !ok {
		return nil, fmt.Errorf("invalid log level %q", level)
	}

	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.Level = zap.NewAtomicLevelAt(logLevel)
	cfg.OutputPaths = []string{"stderr"}
	cfg.EncoderConfig.EncodeLevel = func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString("[" + logLevelSeverity[l] + "]")
	}
	cfg.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
	cfg.EncoderConfig.ConsoleSeparator = "  "
	cfg.DisableCaller = true
	cfg.Sampling = nil

	var opts []zap.Option
	if logDir != "" {
		logRotator := &lumberjack.Logger{
			Filename:   filepath.Join(logDir, defaultLogFilename),
			MaxSize:    10, // Megabytes
			MaxBackups: 3,
			MaxAge:     30, // Days
		}
		opts = append(opts, zap.Hooks(func(e zapcore.Entry) error {
			_, err := fmt.Fprintf(logRotator, "%s  [%s]  %s\n",
				e.Time.Format("2006-01-02T15:04:05Z07:00"), logLevelSeverity[e.Level], e.Message)
			return err
		}))
	}

	logger, err := cfg.Build(opts...)
	if err != nil {
		return nil, err
	}
	log = logger.Sugar()
	mexp.UseLogger(logger)
	return logger, nil
}
