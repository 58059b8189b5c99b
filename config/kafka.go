package config

import (
	"os"
	"strings"

	"github.com/segmentio/kafka-go"
)

const (
	envKafkaBrokers = "KAFKA_BROKERS"

	defaultKafkaBrokers = "localhost:9092"
)

// KafkaBrokers returns the broker addresses from the comma-separated
// KAFKA_BROKERS variable, or the local-development default when unset.
func KafkaBrokers() []string {
	raw := os.Getenv(envKafkaBrokers)
	if raw == "" {
		raw = defaultKafkaBrokers
	}

	return SplitBrokers(raw)
}

// SplitBrokers parses a comma-separated broker list, dropping empty entries.
func SplitBrokers(raw string) []string {
	var brokers []string

	for _, broker := range strings.Split(raw, ",") {
		broker = strings.TrimSpace(broker)
		if broker != "" {
			brokers = append(brokers, broker)
		}
	}

	return brokers
}

// NewKafkaWriter creates a Kafka writer for the configured brokers, hashing
// message keys onto partitions so one aggregate's events stay ordered.
// The topic is carried per message, so one writer serves all relays.
func NewKafkaWriter() *kafka.Writer {
	return &kafka.Writer{
		Addr:     kafka.TCP(KafkaBrokers()...),
		Balancer: &kafka.Hash{},
	}
}
