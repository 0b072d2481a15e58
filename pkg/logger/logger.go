package logger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"swasthyaflow/pkg/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var Log *zap.Logger
var sugar *zap.SugaredLogger

type ctxKey struct{}

const (
	defaultRequestID = "-"
	timeLayout       = "2006-01-02 15:04:05.000"
)

func init() {
	defaultConfig := zap.NewDevelopmentConfig()
	defaultConfig.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	defaultConfig.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(timeLayout)

	defaultLogger, _ := defaultConfig.Build(zap.AddCallerSkip(1))

	Log = defaultLogger
	sugar = defaultLogger.Sugar()
}

// Init rebuilds the global logger from configuration
func Init(cfg config.LoggerConfig) error {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	atomicLevel := zap.NewAtomicLevelAt(level)

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout(timeLayout),
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var syncer zapcore.WriteSyncer
	switch cfg.Output {
	case "file":
		fileSyncer, err := rotatingFile(cfg.File)
		if err != nil {
			return err
		}
		syncer = fileSyncer
	case "both":
		fileSyncer, err := rotatingFile(cfg.File)
		if err != nil {
			return err
		}
		syncer = zapcore.NewMultiWriteSyncer(zapcore.AddSync(os.Stdout), fileSyncer)
	default: // console
		syncer = zapcore.AddSync(os.Stdout)
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), syncer, atomicLevel)

	Log = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	sugar = Log.Sugar()
	return nil
}

func rotatingFile(cfg config.LoggerFileConfig) (zapcore.WriteSyncer, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("log file path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %v", err)
	}
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}), nil
}

// WithRequestID tags ctx so *Ctx helpers prefix log lines with the request id.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey{}, requestID)
}

func requestID(ctx context.Context) string {
	if ctx == nil {
		return defaultRequestID
	}
	if id, ok := ctx.Value(ctxKey{}).(string); ok && id != "" {
		return id
	}
	return defaultRequestID
}

// Debug level
func Debug(msg string, fields ...zap.Field) {
	Log.Debug(msg, fields...)
}

// Info level
func Info(msg string, fields ...zap.Field) {
	Log.Info(msg, fields...)
}

// Warn level
func Warn(msg string, fields ...zap.Field) {
	Log.Warn(msg, fields...)
}

// Error level
func Error(msg string, fields ...zap.Field) {
	Log.Error(msg, fields...)
}

func DebugCtx(ctx context.Context, format string, args ...interface{}) {
	sugar.Debugf(requestID(ctx)+"\t"+format, args...)
}

func InfoCtx(ctx context.Context, format string, args ...interface{}) {
	sugar.Infof(requestID(ctx)+"\t"+format, args...)
}

func WarnCtx(ctx context.Context, format string, args ...interface{}) {
	sugar.Warnf(requestID(ctx)+"\t"+format, args...)
}

func ErrorCtx(ctx context.Context, format string, args ...interface{}) {
	sugar.Errorf(requestID(ctx)+"\t"+format, args...)
}

func FatalCtx(ctx context.Context, format string, args ...interface{}) {
	sugar.Fatalf(requestID(ctx)+"\t"+format, args...)
}

// Sync flushes any buffered log entries
func Sync() error {
	return Log.Sync()
}
