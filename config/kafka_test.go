package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leaseworks/rentledger/config"
)

func Test_SplitBrokers_ParsesCommaSeparatedList(t *testing.T) {
	// act
	brokers := config.SplitBrokers("kafka-1:9092, kafka-2:9092 ,kafka-3:9092")

	// assert
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092", "kafka-3:9092"}, brokers)
}

func Test_SplitBrokers_DropsEmptyEntries(t *testing.T) {
	// act
	brokers := config.SplitBrokers("kafka-1:9092,, ,")

	// assert
	assert.Equal(t, []string{"kafka-1:9092"}, brokers)
}

func Test_SplitBrokers_EmptyInputYieldsNoBrokers(t *testing.T) {
	// act
	brokers := config.SplitBrokers("")

	// assert
	assert.Empty(t, brokers)
}

func Test_TableNames_DerivedPerAggregateKind(t *testing.T) {
	// act + assert
	assert.Equal(t, "events_unit", config.EventsTableName("unit"))
	assert.Equal(t, "notifications_tenant", config.NotificationsTableName("tenant"))
	assert.Equal(t, "snapshots_lease", config.SnapshotsTableName("lease"))
}
