package database

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type ChangeKind string

const (
	ChangeInsert  ChangeKind = "insert"
	ChangeUpdate  ChangeKind = "update"
	ChangeReplace ChangeKind = "replace"
	ChangeDelete  ChangeKind = "delete"
)

// ChangeEvent is one document change pushed by the server. Document is empty
// for deletes.
type ChangeEvent struct {
	Kind     ChangeKind
	ID       string
	Document bson.Raw
}

type changeStreamDoc struct {
	OperationType string `bson:"operationType"`
	DocumentKey   struct {
		ID string `bson:"_id"`
	} `bson:"documentKey"`
	FullDocument bson.Raw `bson:"fullDocument"`
}

const watchRetryDelay = 5 * time.Second

// Watcher follows a collection change stream until Close is called.
type Watcher struct {
	coll   *mongo.Collection
	logger *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewWatcher(coll *mongo.Collection, logger *zap.Logger) *Watcher {
	return &Watcher{coll: coll, logger: logger}
}

// Start opens the stream and delivers events to handle from a background
// goroutine. It fails when the server does not support change streams.
func (w *Watcher) Start(ctx context.Context, handle func(ChangeEvent)) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		return errors.New("watcher already started")
	}

	stream, err := w.open(ctx)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.done = make(chan struct{})

	go w.run(runCtx, stream, handle)
	return nil
}

func (w *Watcher) open(ctx context.Context) (*mongo.ChangeStream, error) {
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	return w.coll.Watch(ctx, mongo.Pipeline{}, opts)
}

func (w *Watcher) run(ctx context.Context, stream *mongo.ChangeStream, handle func(ChangeEvent)) {
	defer close(w.done)

	for {
		for stream.Next(ctx) {
			var raw changeStreamDoc
			if err := stream.Decode(&raw); err != nil {
				w.logger.Warn("Failed to decode change event", zap.String("collection", w.coll.Name()), zap.Error(err))
				continue
			}
			handle(ChangeEvent{
				Kind:     ChangeKind(raw.OperationType),
				ID:       raw.DocumentKey.ID,
				Document: raw.FullDocument,
			})
		}

		err := stream.Err()
		_ = stream.Close(context.Background())
		if ctx.Err() != nil {
			return
		}
		w.logger.Warn("Change stream interrupted, reopening", zap.String("collection", w.coll.Name()), zap.Error(err))

		for {
			select {
			case <-ctx.Done():
				return
			case <-time.After(watchRetryDelay):
			}
			if stream, err = w.open(ctx); err == nil {
				break
			}
			w.logger.Warn("Failed to reopen change stream", zap.String("collection", w.coll.Name()), zap.Error(err))
		}
	}
}

// Close stops the stream and waits for the delivery goroutine to exit.
func (w *Watcher) Close() error {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.cancel, w.done = nil, nil
	w.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	return nil
}
