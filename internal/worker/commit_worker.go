package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"quickgpt/internal/platform/rabbitmq"
)

type CommitApplier interface {
	Apply(ctx context.Context, commitID string) error
}

// CommitPersistWorker consumes commit ids and applies them to their chats.
// Failed deliveries are dropped rather than requeued; the reconciler retries
// any commit left in the generated state.
type CommitPersistWorker struct {
	conn      *amqp.Connection
	applier   CommitApplier
	queueName string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewCommitPersistWorker(conn *amqp.Connection, applier CommitApplier, queueName string) *CommitPersistWorker {
	return &CommitPersistWorker{
		conn:      conn,
		applier:   applier,
		queueName: queueName,
	}
}

func (w *CommitPersistWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	if err := rabbitmq.DeclareQueue(ch, w.queueName); err != nil {
		_ = ch.Close()
		cancel()
		return err
	}
	if err := ch.Qos(16, 0, false); err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("set worker qos failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					logrus.Warn("commit queue delivery channel closed")
					return
				}
				w.handle(workerCtx, d)
			}
		}
	}()

	return nil
}

func (w *CommitPersistWorker) handle(ctx context.Context, d amqp.Delivery) {
	var msg rabbitmq.CommitMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil || msg.CommitID == "" {
		logrus.WithError(err).WithField("body", string(d.Body)).Error("worker decode commit failed")
		_ = d.Nack(false, false)
		return
	}

	if err := w.applier.Apply(ctx, msg.CommitID); err != nil {
		logrus.WithError(err).WithField("commit_id", msg.CommitID).Error("worker apply commit failed")
		_ = d.Nack(false, false)
		return
	}

	_ = d.Ack(false)
}

func (w *CommitPersistWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
