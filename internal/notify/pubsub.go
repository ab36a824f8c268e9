package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub"
	"go.uber.org/zap"
)

// PubSubNotifier publishes alerts to a Google Cloud Pub/Sub topic, for
// deployments that route notifications through a broker instead of SMTP.
type PubSubNotifier struct {
	topic  *pubsub.Topic
	logger *zap.Logger
}

// NewPubSub creates a notifier publishing to the given topic.
func NewPubSub(client *pubsub.Client, topicID string, logger *zap.Logger) (*PubSubNotifier, error) {
	if client == nil {
		return nil, fmt.Errorf("pubsub client is required")
	}
	if topicID == "" {
		return nil, fmt.Errorf("pubsub topic is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PubSubNotifier{topic: client.Topic(topicID), logger: logger}, nil
}

// Send marshals the message to JSON and publishes it, waiting for the
// server acknowledgement so the caller learns about delivery failures.
func (n *PubSubNotifier) Send(ctx context.Context, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	result := n.topic.Publish(ctx, &pubsub.Message{Data: data})
	id, err := result.Get(ctx)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}
	n.logger.Info("alert published",
		zap.String("topic", n.topic.ID()),
		zap.String("message_id", id),
	)
	return nil
}
