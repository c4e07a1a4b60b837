package telemetry_test

import (
	"context"
	"testing"

	"github.com/Cogwheel-Validator/liquidity-portal/portal/telemetry"
	"github.com/zeebo/assert"
	"go.opentelemetry.io/otel"
)

func TestConfigEnabled(t *testing.T) {
	var missing *telemetry.Config
	assert.False(t, missing.Enabled())
	assert.False(t, (&telemetry.Config{}).Enabled())
	assert.True(t, telemetry.DefaultConfig().Enabled())
}

func TestSetupWithoutPushExporters(t *testing.T) {
	ctx := context.Background()
	shutdown, err := telemetry.Setup(ctx, &telemetry.Config{
		ServiceName:   "liquidity-portal-test",
		EnableTracing: true,
		EnableMetrics: true,
		EnableLogs:    true,
	})
	assert.NoError(t, err)

	// the installed provider samples and records spans
	_, span := otel.Tracer("telemetry_test").Start(ctx, "setup")
	assert.True(t, span.SpanContext().IsValid())
	assert.True(t, span.IsRecording())
	span.End()

	assert.NoError(t, shutdown(ctx))
	// a second call has nothing left to stop
	assert.NoError(t, shutdown(ctx))
}
