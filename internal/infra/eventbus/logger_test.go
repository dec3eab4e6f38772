package eventbus

import (
	"errors"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureLogger struct {
	entries []captured
}

type captured struct {
	level   log.Level
	keyvals []interface{}
}

func (c *captureLogger) Log(level log.Level, keyvals ...interface{}) error {
	c.entries = append(c.entries, captured{level: level, keyvals: keyvals})
	return nil
}

func toMap(keyvals []interface{}) map[interface{}]interface{} {
	m := make(map[interface{}]interface{}, len(keyvals)/2)
	for i := 0; i+1 < len(keyvals); i += 2 {
		m[keyvals[i]] = keyvals[i+1]
	}
	return m
}

func TestKratosLoggerAdapter(t *testing.T) {
	capture := &captureLogger{}
	adapter := NewKratosLoggerAdapter(capture).With(watermill.LogFields{"topic": LinkEventsTopic})

	adapter.Info("subscribed", watermill.LogFields{"handler": "logging"})
	adapter.Error("handler failed", errors.New("boom"), nil)
	adapter.Trace("noisy", nil)

	require.Len(t, capture.entries, 3)

	info := toMap(capture.entries[0].keyvals)
	assert.Equal(t, log.LevelInfo, capture.entries[0].level)
	assert.Equal(t, "subscribed", info[log.DefaultMessageKey])
	assert.Equal(t, LinkEventsTopic, info["topic"])
	assert.Equal(t, "logging", info["handler"])

	failure := toMap(capture.entries[1].keyvals)
	assert.Equal(t, log.LevelError, capture.entries[1].level)
	assert.Equal(t, "boom", failure["error"])

	assert.Equal(t, log.LevelDebug, capture.entries[2].level)
}
