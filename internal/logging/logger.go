package logging

import (
	"io"
	"os"
	"strings"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Level        string
	Dev          bool
	File         string
	LogstashAddr string
}

func levelFromString(l string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(l)) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// New builds the process logger. Stdout always receives entries; a rotating
// file and a Logstash TCP input are added when configured. The returned
// cleanup flushes and closes those sinks.
func New(cfg Config) (*zap.Logger, func(), error) {
	return newLogger(cfg, zapcore.AddSync(os.Stdout))
}

func newLogger(cfg Config, stdout zapcore.WriteSyncer) (*zap.Logger, func(), error) {
	lvl := levelFromString(cfg.Level)

	jsonCfg := zap.NewProductionEncoderConfig()
	jsonCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	jsonEncoder := zapcore.NewJSONEncoder(jsonCfg)

	var cores []zapcore.Core
	if cfg.Dev {
		devCfg := zap.NewDevelopmentEncoderConfig()
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(devCfg), stdout, lvl))
	} else {
		cores = append(cores, zapcore.NewCore(jsonEncoder, stdout, lvl))
	}

	var closers []io.Closer
	closeAll := func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}

	if path := strings.TrimSpace(cfg.File); path != "" {
		rotator, err := rotatelogs.New(
			path+".%Y%m%d",
			rotatelogs.WithLinkName(path),
			rotatelogs.WithRotationTime(24*time.Hour),
			rotatelogs.WithMaxAge(7*24*time.Hour),
		)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, rotator)
		cores = append(cores, zapcore.NewCore(jsonEncoder.Clone(), zapcore.AddSync(rotator), lvl))
	}

	if addr := strings.TrimSpace(cfg.LogstashAddr); addr != "" {
		writer, err := NewLogstashWriter(addr)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, writer)
		cores = append(cores, zapcore.NewCore(jsonEncoder.Clone(), writer, lvl))
	}

	opts := []zap.Option{zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)}
	if cfg.Dev {
		opts = append(opts, zap.Development())
	}
	logger := zap.New(zapcore.NewTee(cores...), opts...)

	cleanup := func() {
		_ = logger.Sync()
		closeAll()
	}
	return logger, cleanup, nil
}
