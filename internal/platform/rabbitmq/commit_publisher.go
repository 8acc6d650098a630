package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// CommitMessage is the body of a commit queue delivery.
type CommitMessage struct {
	CommitID string `json:"commitId"`
}

type CommitPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewCommitPublisher(conn *amqp.Connection, queueName string) *CommitPublisher {
	return &CommitPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *CommitPublisher) PublishCommit(ctx context.Context, commitID string) error {
	if p.conn == nil || p.conn.IsClosed() {
		return fmt.Errorf("rabbitmq connection closed")
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	if err := DeclareQueue(ch, p.queueName); err != nil {
		return err
	}

	payload, err := json.Marshal(CommitMessage{CommitID: commitID})
	if err != nil {
		return fmt.Errorf("marshal commit payload failed: %w", err)
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    commitID,
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish commit failed: %w", err)
	}
	return nil
}

// DeclareQueue declares the durable commit queue. Publisher and consumer
// must agree on its arguments.
func DeclareQueue(ch *amqp.Channel, name string) error {
	_, err := ch.QueueDeclare(
		name,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue %s failed: %w", name, err)
	}
	return nil
}
