package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

func TestNew_ExportsFinishedSpansToLogger(t *testing.T) {
	previous := otel.GetTracerProvider()
	defer otel.SetTracerProvider(previous)

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	provider, shutdown, err := New(Config{ServiceName: "parking-test", Logger: logger})
	require.NoError(t, err)
	assert.Same(t, provider, otel.GetTracerProvider())

	_, span := otel.Tracer("test").Start(context.Background(), "txcoord.unit",
		trace.WithAttributes(attribute.Int("tx.attempt", 2)))
	assert.True(t, span.IsRecording())
	span.SetStatus(codes.Error, "deadline exceeded")
	span.End()

	require.NoError(t, shutdown(context.Background()))

	var record map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &record))
	assert.Equal(t, "span finished", record["msg"])
	assert.Equal(t, "txcoord.unit", record["span"])
	assert.Equal(t, "tracing", record["component"])
	assert.Equal(t, "Error", record["status"])
	assert.Equal(t, "deadline exceeded", record["status_description"])
	assert.Equal(t, "2", record["tx.attempt"])
}

func TestNew_InvalidRatioSamplesEverything(t *testing.T) {
	previous := otel.GetTracerProvider()
	defer otel.SetTracerProvider(previous)

	provider, shutdown, err := New(Config{ServiceName: "parking-test", SampleRatio: 7})
	require.NoError(t, err)
	defer func() { _ = shutdown(context.Background()) }()

	_, span := provider.Tracer("test").Start(context.Background(), "unit")
	defer span.End()
	assert.True(t, span.SpanContext().IsSampled())
}
