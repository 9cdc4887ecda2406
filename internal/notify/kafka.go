package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	dErrors "dealdesk/pkg/domain-errors"
)

// Kafka publishes notifications to a topic for downstream delivery workers
// (email, in-app). Producing is synchronous so callers learn about delivery
// failures immediately; callers treat those failures as non-fatal.
type Kafka struct {
	client *kgo.Client
	topic  string
}

// NewKafka connects to the brokers and ensures the topic exists. A topic that
// already exists is not an error.
func NewKafka(ctx context.Context, brokers []string, topic string) (*Kafka, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	admin := kadm.NewClient(client)
	if _, err := admin.CreateTopic(ctx, 1, 1, nil, topic); err != nil {
		// Topic may already exist; verify rather than parse the error.
		details, listErr := admin.ListTopics(ctx, topic)
		if listErr != nil || !details.Has(topic) {
			client.Close()
			return nil, fmt.Errorf("ensure topic %s: %w", topic, err)
		}
	}
	return &Kafka{client: client, topic: topic}, nil
}

func (k *Kafka) Emit(ctx context.Context, n Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeNotificationDelivery, "encode notification")
	}
	record := &kgo.Record{
		Topic: k.topic,
		Key:   []byte(n.Kind),
		Value: payload,
	}
	if err := k.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeNotificationDelivery, "produce notification")
	}
	return nil
}

// Close flushes and releases the underlying client.
func (k *Kafka) Close() {
	k.client.Close()
}
