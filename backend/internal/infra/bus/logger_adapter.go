package bus

import (
	"github.com/ThreeDotsLabs/watermill"
	"go.uber.org/zap"
)

// zapLoggerAdapter routes watermill logs into zap. Trace maps to Debug.
type zapLoggerAdapter struct {
	log *zap.SugaredLogger
}

// NewZapLoggerAdapter wraps log as a watermill.LoggerAdapter.
func NewZapLoggerAdapter(log *zap.SugaredLogger) watermill.LoggerAdapter {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &zapLoggerAdapter{log: log}
}

func (a *zapLoggerAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.log.Errorw(msg, append(flatten(fields), "error", err)...)
}

func (a *zapLoggerAdapter) Info(msg string, fields watermill.LogFields) {
	a.log.Infow(msg, flatten(fields)...)
}

func (a *zapLoggerAdapter) Debug(msg string, fields watermill.LogFields) {
	a.log.Debugw(msg, flatten(fields)...)
}

func (a *zapLoggerAdapter) Trace(msg string, fields watermill.LogFields) {
	a.log.Debugw(msg, flatten(fields)...)
}

func (a *zapLoggerAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &zapLoggerAdapter{log: a.log.With(flatten(fields)...)}
}

func flatten(fields watermill.LogFields) []any {
	kv := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		kv = append(kv, k, v)
	}
	return kv
}
