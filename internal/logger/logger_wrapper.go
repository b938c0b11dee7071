package logger

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/leandrodaf/midikit/sdk/contracts"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotação padrão para o destino em arquivo.
const (
	defaultMaxSizeMB  = 10
	defaultMaxBackups = 3
	defaultMaxAgeDays = 28
)

// ZapLogger é uma implementação do contrato de Logger que usa o logger do Uber.
// Loggers derived with With share the sink of their parent.
type ZapLogger struct {
	sink   *sink
	fields []zap.Field
}

// sink guarda o estado compartilhado: nível, destino e o arquivo rotativo.
type sink struct {
	mu     sync.RWMutex
	logger *zap.Logger
	level  zap.AtomicLevel
	file   *lumberjack.Logger
}

// NewZapLogger cria um logger JSON em stderr no nível info.
func NewZapLogger() contracts.Logger {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	return &ZapLogger{sink: &sink{logger: newZap(consoleCore(level)), level: level}}
}

// NewNopLogger descarta tudo. É o padrão dos pacotes do SDK.
func NewNopLogger() contracts.Logger {
	return &ZapLogger{sink: &sink{logger: zap.NewNop(), level: zap.NewAtomicLevelAt(zapcore.FatalLevel + 1)}}
}

// NewWithCore wraps an existing core, typically zaptest/observer in tests.
// Entries are gated by the logger's own level first, then by the core.
func NewWithCore(core zapcore.Core) *ZapLogger {
	return &ZapLogger{sink: &sink{logger: zap.New(core), level: zap.NewAtomicLevelAt(zapcore.InfoLevel)}}
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.EncodeTime = zapcore.RFC3339TimeEncoder
	cfg.EncodeDuration = zapcore.StringDurationEncoder
	return cfg
}

func consoleCore(level zap.AtomicLevel) zapcore.Core {
	return zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), zapcore.Lock(os.Stderr), level)
}

func newZap(core zapcore.Core) *zap.Logger {
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2))
}

// Info logs a message at the INFO level
func (z *ZapLogger) Info(msg string, fields ...contracts.Field) {
	z.log(zapcore.InfoLevel, msg, fields...)
}

// Error logs a message at the ERROR level
func (z *ZapLogger) Error(msg string, fields ...contracts.Field) {
	z.log(zapcore.ErrorLevel, msg, fields...)
}

// Debug logs a message at the DEBUG level
func (z *ZapLogger) Debug(msg string, fields ...contracts.Field) {
	z.log(zapcore.DebugLevel, msg, fields...)
}

// Warn logs a message at the WARN level
func (z *ZapLogger) Warn(msg string, fields ...contracts.Field) {
	z.log(zapcore.WarnLevel, msg, fields...)
}

// Fatal logs a message at the FATAL level and terminates the application
func (z *ZapLogger) Fatal(msg string, fields ...contracts.Field) {
	z.log(zapcore.FatalLevel, msg, fields...)
	z.sync()
	os.Exit(1)
}

// Field returns a new instance of Field
func (z *ZapLogger) Field() contracts.Field {
	return zapField{}
}

// With returns a child logger that prepends fields to every entry.
func (z *ZapLogger) With(fields ...contracts.Field) contracts.Logger {
	bound := make([]zap.Field, 0, len(z.fields)+len(fields))
	bound = append(bound, z.fields...)
	return &ZapLogger{sink: z.sink, fields: appendZapFields(bound, fields)}
}

// toZapLevel mapeia explicitamente os níveis do contrato; a ordem numérica
// dos dois enums não coincide.
func toZapLevel(level contracts.LogLevel) zapcore.Level {
	switch level {
	case contracts.DebugLevel:
		return zapcore.DebugLevel
	case contracts.WarnLevel:
		return zapcore.WarnLevel
	case contracts.ErrorLevel:
		return zapcore.ErrorLevel
	case contracts.FatalLevel:
		return zapcore.FatalLevel
	}
	return zapcore.InfoLevel
}

// SetLevel sets the logging level
func (z *ZapLogger) SetLevel(level contracts.LogLevel) {
	z.sink.level.SetLevel(toZapLevel(level))
}

// SetDestination troca a saída do logger. FileLog exige um caminho e grava
// JSON com rotação via lumberjack; ConsoleLog volta para stderr.
func (z *ZapLogger) SetDestination(dest contracts.LogDestination, filePath ...string) {
	s := z.sink
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file != nil {
		_ = s.file.Close()
		s.file = nil
	}

	switch {
	case dest == contracts.FileLog && len(filePath) > 0 && filePath[0] != "":
		path := filePath[0]
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			s.logger.Error("Failed to create log directory", zap.String("path", path), zap.Error(err))
			return
		}
		s.file = &lumberjack.Logger{
			Filename:   path,
			MaxSize:    defaultMaxSizeMB,
			MaxBackups: defaultMaxBackups,
			MaxAge:     defaultMaxAgeDays,
			Compress:   true,
		}
		core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), zapcore.AddSync(s.file), s.level)
		s.logger = newZap(core)
	default:
		s.logger = newZap(consoleCore(s.level))
	}
}

// log é a função interna para registrar mensagens
func (z *ZapLogger) log(level zapcore.Level, msg string, fields ...contracts.Field) {
	s := z.sink
	if !s.level.Enabled(level) {
		return
	}

	zfs := make([]zap.Field, 0, len(z.fields)+len(fields))
	zfs = append(zfs, z.fields...)
	zfs = appendZapFields(zfs, fields)

	s.mu.RLock()
	l := s.logger
	s.mu.RUnlock()

	if ce := l.Check(level, msg); ce != nil {
		ce.Write(zfs...)
	}
}

// appendZapFields drops the empty builder and fields from other
// implementations.
func appendZapFields(dst []zap.Field, fields []contracts.Field) []zap.Field {
	for _, field := range fields {
		if f, ok := field.(zapField); ok && f.field.Key != "" {
			dst = append(dst, f.field)
		}
	}
	return dst
}

func (z *ZapLogger) sync() {
	z.sink.mu.RLock()
	defer z.sink.mu.RUnlock()
	_ = z.sink.logger.Sync()
}
// zapField implements contracts.Field over a zap.Field. The zero value is
// the builder returned by Field() and is skipped when logged.
type zapField struct {
	field zap.Field
}

func (zapField) Bool(key string, val bool) contracts.Field {
	return zapField{zap.Bool(key, val)}
}

func (zapField) Int(key string, val int) contracts.Field {
	return zapField{zap.Int(key, val)}
}

func (zapField) Float64(key string, val float64) contracts.Field {
	return zapField{zap.Float64(key, val)}
}

func (zapField) String(key string, val string) contracts.Field {
	return zapField{zap.String(key, val)}
}

func (zapField) Time(key string, val time.Time) contracts.Field {
	return zapField{zap.Time(key, val)}
}

func (zapField) Duration(key string, val time.Duration) contracts.Field {
	return zapField{zap.Duration(key, val)}
}

func (zapField) Int64(key string, val int64) contracts.Field {
	return zapField{zap.Int64(key, val)}
}

func (zapField) Error(key string, val error) contracts.Field {
	return zapField{zap.NamedError(key, val)}
}

func (zapField) Uint64(key string, val uint64) contracts.Field {
	return zapField{zap.Uint64(key, val)}
}

func (zapField) Uint8(key string, val uint8) contracts.Field {
	return zapField{zap.Uint8(key, val)}
}
