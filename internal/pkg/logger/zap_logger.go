package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type ILogger interface {
	Debug(module, message string, details map[string]interface{})
	Info(module, message string, details map[string]interface{})
	Warn(module, message string, details map[string]interface{})
	Error(module, message string, details map[string]interface{})
	Sync() error
}

// Options selects where a logger writes. FilePath is rotated by lumberjack;
// an empty path disables the file sink.
type Options struct {
	FilePath   string
	Production bool
	Console    bool
	FileLevel  zapcore.Level
}

type ZapLogger struct {
	logger *zap.Logger
}

func New(opts Options) *ZapLogger {
	var cores []zapcore.Core

	if opts.FilePath != "" {
		cores = append(cores, zapcore.NewCore(
			jsonEncoder(),
			zapcore.AddSync(&lumberjack.Logger{
				Filename:   opts.FilePath,
				MaxSize:    10, // MB
				MaxBackups: 5,
				MaxAge:     30, // days
				Compress:   true,
			}),
			opts.FileLevel,
		))
	}

	if opts.Console {
		encoder := jsonEncoder()
		if !opts.Production {
			encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), zap.DebugLevel))
	}

	if len(cores) == 0 {
		return NewNopLogger()
	}

	return &ZapLogger{
		logger: zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(2)),
	}
}

// NewZapLogger is the request-path logger: rotated JSON file plus stdout.
func NewZapLogger(logFilePath string, isProd bool) *ZapLogger {
	return New(Options{
		FilePath:   logFilePath,
		Production: isProd,
		Console:    true,
		FileLevel:  zap.InfoLevel,
	})
}

// NewIsolatedLogger writes only to its own file. The ingest worker uses it
// so per-chunk chatter stays out of the verification log.
func NewIsolatedLogger(logFilePath string) *ZapLogger {
	return New(Options{FilePath: logFilePath, FileLevel: zap.InfoLevel})
}

func NewNopLogger() *ZapLogger {
	return &ZapLogger{logger: zap.NewNop()}
}

func jsonEncoder() zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.MessageKey = "message"
	cfg.LevelKey = "level"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewJSONEncoder(cfg)
}

func (l *ZapLogger) Debug(module, message string, details map[string]interface{}) {
	l.write(zap.DebugLevel, module, message, details)
}

func (l *ZapLogger) Info(module, message string, details map[string]interface{}) {
	l.write(zap.InfoLevel, module, message, details)
}

func (l *ZapLogger) Warn(module, message string, details map[string]interface{}) {
	l.write(zap.WarnLevel, module, message, details)
}

func (l *ZapLogger) Error(module, message string, details map[string]interface{}) {
	l.write(zap.ErrorLevel, module, message, details)
}

// write promotes a details["error"] entry to a top-level field so failed
// stages can be filtered without unpacking details.
func (l *ZapLogger) write(level zapcore.Level, module, message string, details map[string]interface{}) {
	ce := l.logger.Check(level, message)
	if ce == nil {
		return
	}
	if details == nil {
		details = map[string]interface{}{}
	}
	fields := []zap.Field{zap.String("module", module), zap.Any("details", details)}
	if errValue, ok := details["error"]; ok {
		fields = append(fields, zap.Any("error", errValue))
	}
	ce.Write(fields...)
}

func (l *ZapLogger) Sync() error {
	return l.logger.Sync()
}
