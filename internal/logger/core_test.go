package logger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	common_models "eic-admin/internal/common/models"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type captured struct {
	mu      sync.Mutex
	records []common_models.Log
}

func (c *captured) insert(_ context.Context, record common_models.Log) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, record)
	return nil
}

func TestDBCoreTeesWarningsOnly(t *testing.T) {
	sink := &captured{}
	writer := newDBLogWriter(sink.insert, "eic-admin-test", 10)

	base, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(NewDBCore(base, writer, zapcore.WarnLevel))

	log.Info("role cache refreshed")
	log.With(zap.String("user_id", "admin-1")).Warn("role in use", zap.Error(errors.New("3 users")))
	log.Error("write failed", zap.String("ip", "10.0.0.1"))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, writer.Close(ctx))

	require.Equal(t, 3, logs.Len())

	sink.mu.Lock()
	defer sink.mu.Unlock()
	require.Len(t, sink.records, 2)
	require.Equal(t, "role in use", sink.records[0].Message)
	require.Equal(t, "admin-1", sink.records[0].UserID)
	require.Equal(t, "3 users", sink.records[0].Error)
	require.Equal(t, "warn", sink.records[0].Level)
	require.Equal(t, "10.0.0.1", sink.records[1].IpAddress)
	require.Equal(t, 40, sink.records[1].LogLevelId)
	require.Equal(t, "eic-admin-test", sink.records[1].AppId)
}

func TestAddLogAfterCloseDoesNotPanic(t *testing.T) {
	writer := newDBLogWriter((&captured{}).insert, "x", 1)
	require.NoError(t, writer.Close(context.Background()))

	require.NotPanics(t, func() {
		writer.AddLog(LogEntry{Level: zapcore.ErrorLevel, Message: "late"})
	})
}
