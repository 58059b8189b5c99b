package codec_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leaseworks/rentledger/codec"
	"github.com/leaseworks/rentledger/domain"
	"github.com/leaseworks/rentledger/domain/lease"
	"github.com/leaseworks/rentledger/domain/unit"
)

func Test_DefaultRegistry_DateRoundTrip(t *testing.T) {
	// arrange
	registry := codec.NewDefaultRegistry()
	date := domain.BuildDate(2026, time.September, 1)

	// act
	encoded, encodeErr := registry.Encode(date)
	decoded, decodeErr := registry.Decode(encoded, reflect.TypeOf(domain.Date{}))

	// assert
	require.NoError(t, encodeErr)
	require.NoError(t, decodeErr)
	assert.Equal(t, "2026-09-01", encoded)
	assert.Equal(t, date, decoded)
}

func Test_DefaultRegistry_UUIDRoundTrip(t *testing.T) {
	// arrange
	registry := codec.NewDefaultRegistry()
	id := uuid.New()

	// act
	encoded, encodeErr := registry.Encode(id)
	decoded, decodeErr := registry.Decode(encoded, reflect.TypeOf(uuid.UUID{}))

	// assert
	require.NoError(t, encodeErr)
	require.NoError(t, decodeErr)
	assert.Equal(t, id.String(), encoded)
	assert.Equal(t, id, decoded)
}

func Test_DefaultRegistry_TimeRoundTrip(t *testing.T) {
	// arrange
	registry := codec.NewDefaultRegistry()
	instant := time.Date(2026, time.September, 1, 14, 30, 0, 123456000, time.UTC)

	// act
	encoded, encodeErr := registry.Encode(instant)
	decoded, decodeErr := registry.Decode(encoded, reflect.TypeOf(time.Time{}))

	// assert
	require.NoError(t, encodeErr)
	require.NoError(t, decodeErr)
	assert.Equal(t, instant, decoded)
}

func Test_Registry_Encode_Fails_ForUnregisteredType(t *testing.T) {
	// arrange
	registry := codec.NewRegistry()

	// act
	_, err := registry.Encode(domain.BuildDate(2026, time.September, 1))

	// assert
	require.Error(t, err)
	assert.ErrorIs(t, err, codec.ErrNoCodecRegistered)
}

func Test_MarshalPayload_UnitCreatedRoundTrip(t *testing.T) {
	// arrange
	registry := codec.NewDefaultRegistry()
	event := unit.BuildCreated(
		uuid.New(),
		"12 Elm Street, Springfield",
		[]string{"parking", "balcony"},
		1985,
		time.Date(2026, time.August, 30, 9, 0, 0, 0, time.UTC),
	)

	// act
	payload, marshalErr := codec.MarshalPayload(registry, event)

	var decoded unit.Created
	unmarshalErr := codec.UnmarshalPayload(registry, payload, &decoded)

	// assert
	require.NoError(t, marshalErr)
	require.NoError(t, unmarshalErr)
	assert.Equal(t, event, decoded)
}

func Test_MarshalPayload_LeaseCreatedRoundTrip(t *testing.T) {
	// arrange
	registry := codec.NewDefaultRegistry()
	event := lease.BuildCreated(
		uuid.New(),
		uuid.New(),
		[]uuid.UUID{uuid.New(), uuid.New()},
		domain.BuildDate(2026, time.September, 1),
		domain.BuildDate(2027, time.August, 31),
		time.Date(2026, time.August, 30, 9, 0, 0, 0, time.UTC),
	)

	// act
	payload, marshalErr := codec.MarshalPayload(registry, event)

	var decoded lease.Created
	unmarshalErr := codec.UnmarshalPayload(registry, payload, &decoded)

	// assert
	require.NoError(t, marshalErr)
	require.NoError(t, unmarshalErr)
	assert.Equal(t, event, decoded)
}

func Test_MarshalPayload_Fails_ForUnregisteredFieldType(t *testing.T) {
	// arrange
	registry := codec.NewRegistry() // no codecs at all

	type withOpaqueField struct {
		Inner struct{ Value int }
	}

	// act - failure surfaces at encode time, before anything is persisted
	_, err := codec.MarshalPayload(registry, withOpaqueField{})

	// assert
	require.Error(t, err)
	assert.ErrorIs(t, err, codec.ErrNoCodecRegistered)
}

func Test_MarshalPayload_Fails_ForNonStructPayload(t *testing.T) {
	// arrange
	registry := codec.NewDefaultRegistry()

	// act
	_, err := codec.MarshalPayload(registry, "not a struct")

	// assert
	require.Error(t, err)
	assert.ErrorIs(t, err, codec.ErrPayloadNotAStruct)
}

func Test_UnmarshalPayload_Fails_ForInvalidJSON(t *testing.T) {
	// arrange
	registry := codec.NewDefaultRegistry()

	var target unit.Created

	// act
	err := codec.UnmarshalPayload(registry, []byte(`{broken`), &target)

	// assert
	require.Error(t, err)
	assert.ErrorIs(t, err, codec.ErrInvalidPayloadJSON)
}
