package eventbus

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/go-kratos/kratos/v2/log"
)

// KratosLoggerAdapter routes watermill logs to a kratos logger. Trace is logged at debug.
type KratosLoggerAdapter struct {
	logger *log.Helper
	fields watermill.LogFields
}

func NewKratosLoggerAdapter(logger log.Logger) watermill.LoggerAdapter {
	return &KratosLoggerAdapter{
		logger: log.NewHelper(logger),
		fields: make(watermill.LogFields),
	}
}

func (l *KratosLoggerAdapter) Error(msg string, err error, fields watermill.LogFields) {
	l.log(log.LevelError, msg, fields, err)
}

func (l *KratosLoggerAdapter) Info(msg string, fields watermill.LogFields) {
	l.log(log.LevelInfo, msg, fields, nil)
}

func (l *KratosLoggerAdapter) Debug(msg string, fields watermill.LogFields) {
	l.log(log.LevelDebug, msg, fields, nil)
}

func (l *KratosLoggerAdapter) Trace(msg string, fields watermill.LogFields) {
	l.log(log.LevelDebug, msg, fields, nil)
}

func (l *KratosLoggerAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &KratosLoggerAdapter{
		logger: l.logger,
		fields: l.fields.Add(fields),
	}
}

func (l *KratosLoggerAdapter) log(level log.Level, msg string, fields watermill.LogFields, err error) {
	keyvals := make([]interface{}, 0, (len(l.fields)+len(fields))*2+4)
	keyvals = append(keyvals, log.DefaultMessageKey, msg, "component", "eventbus")

	for k, v := range l.fields {
		keyvals = append(keyvals, k, v)
	}
	for k, v := range fields {
		keyvals = append(keyvals, k, v)
	}
	if err != nil {
		keyvals = append(keyvals, "error", err.Error())
	}

	l.logger.Log(level, keyvals...)
}
