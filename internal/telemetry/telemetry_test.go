package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/donaldgifford/bargain-tracker/internal/config"
	"github.com/donaldgifford/bargain-tracker/internal/telemetry"
)

func TestSetup_Disabled(t *testing.T) {
	t.Parallel()

	p, err := telemetry.Setup(context.Background(), &config.TelemetryConfig{}, "test")
	require.NoError(t, err)

	assert.NotNil(t, p.TracerProvider)
	assert.NotNil(t, p.MeterProvider)
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestSetup_Enabled(t *testing.T) {
	// Installs global providers, so not parallel.
	cfg := &config.TelemetryConfig{
		Enabled:        true,
		OTLPEndpoint:   "127.0.0.1:4317",
		Insecure:       true,
		ServiceName:    "bargain-tracker",
		ExportInterval: time.Hour,
	}

	p, err := telemetry.Setup(context.Background(), cfg, "test")
	require.NoError(t, err)

	assert.IsType(t, &sdktrace.TracerProvider{}, p.TracerProvider)
	assert.IsType(t, &sdkmetric.MeterProvider{}, p.MeterProvider)

	_, span := p.TracerProvider.Tracer("test").Start(context.Background(), "op")
	span.End()

	// No collector is listening; shutdown only has to return.
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	_ = p.Shutdown(ctx)
}
