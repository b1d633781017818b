package logger

import (
	"context"
	"fmt"
	"sync"
	"time"

	common_models "eic-admin/internal/common/models"
	"eic-admin/internal/config"
	"eic-admin/internal/database"

	"go.uber.org/zap/zapcore"
)

// LogEntry holds the data passed from Zap to our worker
type LogEntry struct {
	Level     zapcore.Level
	Message   string
	IpAddress string
	UserID    string
	Error     string
	Caller    string // Function name
}

type insertFunc func(ctx context.Context, record common_models.Log) error

// DBLogWriter queues entries and inserts them into error_logs from one goroutine.
type DBLogWriter struct {
	insert  insertFunc
	logChan chan LogEntry
	appId   string

	closeOnce sync.Once
	done      chan struct{}
}

// NewDBLogWriter initializes the worker
func NewDBLogWriter(mongodb *database.MongodbDB, cfg *config.Config) *DBLogWriter {
	coll := mongodb.DB.Collection(database.ErrorLogsCollection)
	return newDBLogWriter(func(ctx context.Context, record common_models.Log) error {
		_, err := coll.InsertOne(ctx, record)
		return err
	}, cfg.AppId, 1000)
}

func newDBLogWriter(insert insertFunc, appId string, buffer int) *DBLogWriter {
	writer := &DBLogWriter{
		insert:  insert,
		logChan: make(chan LogEntry, buffer),
		appId:   appId,
		done:    make(chan struct{}),
	}

	go writer.processLogs()

	return writer
}

// AddLog is called by our Zap hook
func (w *DBLogWriter) AddLog(entry LogEntry) {
	defer func() {
		// Close raced with a late entry.
		_ = recover()
	}()

	select {
	case w.logChan <- entry:
	default:
		// Never block the caller on the log sink
		fmt.Println("DB Log Channel Full! Dropping log:", entry.Message)
	}
}

// Close stops accepting entries and waits until the queue is flushed.
func (w *DBLogWriter) Close(ctx context.Context) error {
	w.closeOnce.Do(func() { close(w.logChan) })
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *DBLogWriter) processLogs() {
	defer close(w.done)

	for entry := range w.logChan {
		logRecord := common_models.Log{
			Message:      entry.Message,
			Level:        entry.Level.String(),
			LogLevelId:   mapLevelToInt(entry.Level),
			Caller:       entry.Caller,
			IpAddress:    entry.IpAddress,
			UserID:       entry.UserID,
			Error:        entry.Error,
			AppId:        w.appId,
			CreatedOnUtc: time.Now().UTC(),
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := w.insert(ctx, logRecord); err != nil {
			fmt.Println("Failed to write log to DB:", err)
		}
		cancel()
	}
}

func mapLevelToInt(l zapcore.Level) int {
	switch l {
	case zapcore.DebugLevel:
		return 10
	case zapcore.InfoLevel:
		return 20
	case zapcore.WarnLevel:
		return 30
	case zapcore.ErrorLevel:
		return 40
	case zapcore.FatalLevel:
		return 50
	default:
		return 20
	}
}
