package oteladapters_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/log/noop"

	"github.com/leaseworks/rentledger/eventstore/oteladapters"
)

func Test_NewSlogBridgeLogger_Construction(t *testing.T) {
	// act
	logger := oteladapters.NewSlogBridgeLogger("rentledger")

	// assert
	assert.NotNil(t, logger)
}

func Test_SlogBridgeLogger_AllLevels(t *testing.T) {
	// arrange
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := oteladapters.NewSlogBridgeLoggerWithHandler(handler)
	ctx := context.Background()

	// act
	logger.DebugContext(ctx, "debug message", "level", "debug")
	logger.InfoContext(ctx, "info message", "level", "info")
	logger.WarnContext(ctx, "warn message", "level", "warn")
	logger.ErrorContext(ctx, "error message", "level", "error")

	// assert
	output := buf.String()
	assert.Contains(t, output, "debug message")
	assert.Contains(t, output, "info message")
	assert.Contains(t, output, "warn message")
	assert.Contains(t, output, "error message")
	assert.Contains(t, output, `"level":"debug"`)
	assert.Contains(t, output, `"level":"error"`)
}

func Test_SlogBridgeLogger_KeepsAttributeTypes(t *testing.T) {
	// arrange
	var buf bytes.Buffer
	logger := oteladapters.NewSlogBridgeLoggerWithHandler(slog.NewJSONHandler(&buf, nil))

	// act
	logger.InfoContext(context.Background(), "events appended",
		"aggregate_id", "0f8fad5b-d9cb-469f-a165-70867728950e",
		"count", 3,
		"duration_seconds", 0.25,
		"conflict", false,
	)

	// assert
	output := buf.String()
	assert.Contains(t, output, "events appended")
	assert.Contains(t, output, `"aggregate_id":"0f8fad5b-d9cb-469f-a165-70867728950e"`)
	assert.Contains(t, output, `"count":3`)
	assert.Contains(t, output, `"duration_seconds":0.25`)
	assert.Contains(t, output, `"conflict":false`)
}

func Test_NewOTelLogger_Construction(t *testing.T) {
	// act
	logger := oteladapters.NewOTelLogger(noop.NewLoggerProvider().Logger("rentledger"))

	// assert
	assert.NotNil(t, logger)
}

func Test_OTelLogger_AllLevels(t *testing.T) {
	// arrange
	logger := oteladapters.NewOTelLogger(noop.NewLoggerProvider().Logger("rentledger"))
	ctx := context.Background()

	// act + assert - every level emits without panicking
	assert.NotPanics(t, func() {
		logger.DebugContext(ctx, "debug message", "key", "value")
		logger.InfoContext(ctx, "info message", "key", "value")
		logger.WarnContext(ctx, "warn message", "key", "value")
		logger.ErrorContext(ctx, "error message", "key", "value")
	})
}

func Test_OTelLogger_ToleratesIrregularArgs(t *testing.T) {
	// arrange
	logger := oteladapters.NewOTelLogger(noop.NewLoggerProvider().Logger("rentledger"))
	ctx := context.Background()

	// act + assert - odd arg counts, non-string keys and no args at all
	assert.NotPanics(t, func() {
		logger.InfoContext(ctx, "message", "key1", "value1", "dangling")
		logger.InfoContext(ctx, "message", 42, "value-for-non-string-key")
		logger.InfoContext(ctx, "message")
	})
}
