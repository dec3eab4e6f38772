package logger

import (
	"fmt"

	"github.com/go-kratos/kratos/v2/log"
	"go.uber.org/zap"
)

var _ log.Logger = (*ZapLogger)(nil)

// ZapLogger writes kratos key/value logs to a zap logger.
type ZapLogger struct {
	log    *zap.Logger
	msgKey string
}

// NewZapLogger wraps z as a kratos log.Logger.
func NewZapLogger(z *zap.Logger) *ZapLogger {
	return &ZapLogger{
		log:    z,
		msgKey: log.DefaultMessageKey,
	}
}

// NewProduction builds a JSON zap logger at info level.
func NewProduction() (*ZapLogger, error) {
	z, err := zap.NewProduction(zap.AddCallerSkip(3))
	if err != nil {
		return nil, err
	}
	return NewZapLogger(z), nil
}

func (l *ZapLogger) Log(level log.Level, keyvals ...interface{}) error {
	if len(keyvals) == 0 {
		return nil
	}
	if len(keyvals)%2 != 0 {
		l.log.Warn(fmt.Sprint("keyvalues must appear in pairs: ", keyvals))
		return nil
	}

	var msg string
	fields := make([]zap.Field, 0, len(keyvals)/2)
	for i := 0; i < len(keyvals); i += 2 {
		key := fmt.Sprint(keyvals[i])
		if key == l.msgKey {
			msg = fmt.Sprint(keyvals[i+1])
			continue
		}
		fields = append(fields, zap.Any(key, keyvals[i+1]))
	}

	switch level {
	case log.LevelDebug:
		l.log.Debug(msg, fields...)
	case log.LevelInfo:
		l.log.Info(msg, fields...)
	case log.LevelWarn:
		l.log.Warn(msg, fields...)
	case log.LevelError:
		l.log.Error(msg, fields...)
	case log.LevelFatal:
		l.log.Fatal(msg, fields...)
	}
	return nil
}

func (l *ZapLogger) Sync() error {
	return l.log.Sync()
}

func (l *ZapLogger) Close() error {
	return l.Sync()
}
