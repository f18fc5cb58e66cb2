package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Lane topics. One topic per chamber keeps the lanes independent on the
// broker as well as in-process.
const (
	TopicUpper = "herald.delivery.upper"
	TopicLower = "herald.delivery.lower"
)

// NewKafkaProducer builds the shared producer client for both lane queues.
func NewKafkaProducer(brokers []string) (*kgo.Client, error) {
	client, err := kgo.NewClient(kgo.SeedBrokers(brokers...))
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return client, nil
}

// KafkaQueue produces tasks to one lane topic. Records are keyed by the
// task's dedup key, so retried produces and partition-sticky consumers both
// see a stable identity per (job, office).
type KafkaQueue struct {
	client *kgo.Client
	topic  string
}

func NewKafkaQueue(client *kgo.Client, topic string) *KafkaQueue {
	return &KafkaQueue{client: client, topic: topic}
}

func (q *KafkaQueue) Enqueue(ctx context.Context, task Task) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task %s: %w", task.Key(), err)
	}
	rec := &kgo.Record{
		Topic: q.topic,
		Key:   []byte(task.Key()),
		Value: payload,
	}
	if err := q.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("produce task %s: %w", task.Key(), err)
	}
	return nil
}

// KafkaLane consumes one lane topic and hands tasks to the handler. Offsets
// are committed after handling, giving at-least-once delivery; the job
// store's last-write-wins result writes make redelivery harmless.
type KafkaLane struct {
	client *kgo.Client
	topic  string
	handle Handler
	logger *slog.Logger
}

func NewKafkaLane(brokers []string, groupID, topic string, handle Handler, logger *slog.Logger) (*KafkaLane, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		// Per-lane consumer group: the lanes must not rebalance against
		// each other.
		kgo.ConsumerGroup(groupID+"."+topic),
		kgo.ConsumeTopics(topic),
		kgo.DisableAutoCommit(),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka consumer for %s: %w", topic, err)
	}
	return &KafkaLane{client: client, topic: topic, handle: handle, logger: logger}, nil
}

func (l *KafkaLane) Run(ctx context.Context) error {
	defer l.client.Close()
	for {
		fetches := l.client.PollFetches(ctx)
		if fetches.IsClientClosed() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			l.logger.Info("lane stopped", "lane", l.topic)
			return err
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			l.logger.Error("lane fetch error",
				"lane", l.topic,
				"partition", partition,
				"error", err,
			)
		})
		fetches.EachRecord(func(rec *kgo.Record) {
			var task Task
			if err := json.Unmarshal(rec.Value, &task); err != nil {
				l.logger.Error("dropping undecodable task",
					"lane", l.topic,
					"key", string(rec.Key),
					"error", err,
				)
				return
			}
			l.handle(ctx, task)
		})
		if err := l.client.CommitUncommittedOffsets(ctx); err != nil {
			l.logger.Error("failed to commit lane offsets",
				"lane", l.topic,
				"error", err,
			)
		}
	}
}

// EnsureLaneTopics creates the lane topics if they do not exist yet.
func EnsureLaneTopics(ctx context.Context, brokers []string) error {
	client, err := kgo.NewClient(kgo.SeedBrokers(brokers...))
	if err != nil {
		return fmt.Errorf("create kafka admin client: %w", err)
	}
	defer client.Close()

	adm := kadm.NewClient(client)
	responses, err := adm.CreateTopics(ctx, 6, 1, nil, TopicUpper, TopicLower)
	if err != nil {
		return fmt.Errorf("create lane topics: %w", err)
	}
	for _, resp := range responses.Sorted() {
		if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", resp.Topic, resp.Err)
		}
	}
	return nil
}
