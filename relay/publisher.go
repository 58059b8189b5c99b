package relay

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/leaseworks/rentledger/eventstore"
)

var (
	// ErrNilEventStore is returned when the required event store is nil.
	ErrNilEventStore = errors.New("event store must not be nil")

	// ErrNilNotificationLog is returned when the required notification log is nil.
	ErrNilNotificationLog = errors.New("notification log must not be nil")

	// ErrNilWriter is returned when the required Kafka writer is nil.
	ErrNilWriter = errors.New("writer must not be nil")

	// ErrEmptyTopic is returned when the topic name is empty.
	ErrEmptyTopic = errors.New("topic must not be empty")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("batch size must be positive")

	// ErrInvalidPollInterval is returned when the poll interval is not positive.
	ErrInvalidPollInterval = errors.New("poll interval must be positive")

	// ErrPublishingFailed wraps failures while writing messages to Kafka.
	ErrPublishingFailed = errors.New("publishing notifications failed")

	// ErrResolvingEventFailed wraps failures while resolving a notification
	// back to its originating event.
	ErrResolvingEventFailed = errors.New("resolving notification event failed")
)

const (
	defaultBatchSize    = 50
	defaultPollInterval = 2 * time.Second

	headerEventType   = "event_type"
	headerLogPosition = "log_position"
	headerVersion     = "aggregate_version"
)

// Writer is the subset of *kafka.Writer the publisher needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

var _ Writer = (*kafka.Writer)(nil)

// Publisher tails a notification log and relays each entry to Kafka.
// Messages are keyed by aggregate id so that all events of one aggregate
// land on the same partition, preserving their relative order.
type Publisher struct {
	events       eventstore.EventStore
	log          eventstore.NotificationLog
	writer       Writer
	topic        string
	batchSize    int
	pollInterval time.Duration
	logger       eventstore.Logger

	mu     sync.Mutex // guards cursor; Position may be polled while Run publishes
	cursor eventstore.LogPositionUint64
}

// Option configures a Publisher.
type Option func(*Publisher) error

// WithStartPosition seeds the cursor so the publisher resumes after the
// given log position instead of from the beginning.
func WithStartPosition(position eventstore.LogPositionUint64) Option {
	return func(p *Publisher) error {
		p.cursor = position
		return nil
	}
}

// WithBatchSize limits how many notifications one poll cycle relays.
func WithBatchSize(size int) Option {
	return func(p *Publisher) error {
		if size <= 0 {
			return ErrInvalidBatchSize
		}
		p.batchSize = size
		return nil
	}
}

// WithPollInterval sets how often the publisher polls the log for new entries.
func WithPollInterval(interval time.Duration) Option {
	return func(p *Publisher) error {
		if interval <= 0 {
			return ErrInvalidPollInterval
		}
		p.pollInterval = interval
		return nil
	}
}

// WithLogger enables operational logging for the publisher.
func WithLogger(logger eventstore.Logger) Option {
	return func(p *Publisher) error {
		p.logger = logger
		return nil
	}
}

// NewPublisher creates a relay publisher for the given stores, writer,
// and topic.
func NewPublisher(
	events eventstore.EventStore,
	log eventstore.NotificationLog,
	writer Writer,
	topic string,
	options ...Option,
) (*Publisher, error) {

	if events == nil {
		return nil, ErrNilEventStore
	}
	if log == nil {
		return nil, ErrNilNotificationLog
	}
	if writer == nil {
		return nil, ErrNilWriter
	}
	if topic == "" {
		return nil, ErrEmptyTopic
	}

	publisher := &Publisher{
		events:       events,
		log:          log,
		writer:       writer,
		topic:        topic,
		batchSize:    defaultBatchSize,
		pollInterval: defaultPollInterval,
	}

	for _, option := range options {
		if err := option(publisher); err != nil {
			return nil, err
		}
	}

	return publisher, nil
}

// Position returns the log position of the last successfully published
// notification. Persist it across restarts and pass it back through
// WithStartPosition to resume.
func (p *Publisher) Position() eventstore.LogPositionUint64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.cursor
}

func (p *Publisher) advanceCursor(position eventstore.LogPositionUint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.cursor = position
}

// Run polls the log until the context is canceled. Publish errors are
// logged and retried on the next tick; the cursor never moves past an
// unpublished entry.
func (p *Publisher) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := p.PublishPending(ctx); err != nil {
				p.warn("relaying notifications failed", "error", err, "cursor", p.Position())
			}
		}
	}
}

// PublishPending relays one batch of notifications past the cursor and
// returns how many were published. Entries are published in log order;
// on the first failure the cursor stays on the last published entry and
// the remainder of the batch is retried later.
func (p *Publisher) PublishPending(ctx context.Context) (int, error) {
	notifications, err := p.log.Read(
		ctx,
		eventstore.WithAfterPosition(p.Position()),
		eventstore.WithLimit(p.batchSize),
		eventstore.Ascending(),
	)
	if err != nil {
		return 0, err
	}

	published := 0

	for _, notification := range notifications {
		message, resolveErr := p.buildMessage(ctx, notification)
		if resolveErr != nil {
			return published, resolveErr
		}

		if writeErr := p.writer.WriteMessages(ctx, message); writeErr != nil {
			return published, errors.Join(ErrPublishingFailed, writeErr)
		}

		p.advanceCursor(notification.Position)
		published++
	}

	return published, nil
}

func (p *Publisher) buildMessage(
	ctx context.Context,
	notification eventstore.Notification,
) (kafka.Message, error) {

	event, err := p.resolveEvent(ctx, notification)
	if err != nil {
		return kafka.Message{}, err
	}

	return kafka.Message{
		Topic: p.topic,
		Key:   []byte(notification.AggregateID.String()),
		Value: event.PayloadJSON,
		Headers: []kafka.Header{
			{Key: headerEventType, Value: []byte(event.EventType)},
			{Key: headerVersion, Value: []byte(strconv.FormatUint(uint64(event.AggregateVersion), 10))},
			{Key: headerLogPosition, Value: []byte(strconv.FormatUint(notification.Position, 10))},
		},
	}, nil
}

// resolveEvent reads the originating event of a notification. Events are
// immutable and never deleted, so a missing version indicates a corrupted
// log entry and is surfaced as an error rather than skipped.
func (p *Publisher) resolveEvent(
	ctx context.Context,
	notification eventstore.Notification,
) (eventstore.StorableEvent, error) {

	events, err := p.events.Read(ctx, notification.AggregateID, notification.OriginatorVersion-1)
	if err != nil {
		return eventstore.StorableEvent{}, errors.Join(ErrResolvingEventFailed, err)
	}

	for _, event := range events {
		if event.AggregateVersion == notification.OriginatorVersion {
			return event, nil
		}
	}

	return eventstore.StorableEvent{}, fmt.Errorf(
		"%w: no event at version %d for aggregate %s (log position %d)",
		ErrResolvingEventFailed,
		notification.OriginatorVersion,
		notification.AggregateID,
		notification.Position,
	)
}

func (p *Publisher) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
