package instrumentation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{
		ServiceName:    "test-service",
		ServiceVersion: "1.0.0",
		Enabled:        false,
	})
	require.NoError(t, err)
	require.NotNil(t, provider)

	assert.False(t, provider.Enabled())
	assert.NotNil(t, provider.Metrics(), "metrics should be a no-op recorder when disabled")
	assert.False(t, provider.ServesPrometheus())
	assert.NotNil(t, provider.Tracer("test"), "tracer should be a no-op tracer when disabled")
	assert.NoError(t, provider.Shutdown(context.Background()))
}

func TestNewProvider_Exporters(t *testing.T) {
	tests := []struct {
		name            string
		metricsExporter string
		tracingExporter string
		endpoint        string
		wantErr         bool
		wantPrometheus  bool
	}{
		{
			name:            "prometheus without tracing",
			metricsExporter: ExporterPrometheus,
			tracingExporter: ExporterNone,
			wantPrometheus:  true,
		},
		{
			name:            "console exporters",
			metricsExporter: ExporterStdout,
			tracingExporter: ExporterStdout,
		},
		{
			name:            "invalid metrics exporter",
			metricsExporter: "invalid",
			tracingExporter: ExporterNone,
			wantErr:         true,
		},
		{
			name:            "invalid tracing exporter",
			metricsExporter: ExporterPrometheus,
			tracingExporter: "invalid",
			wantErr:         true,
		},
		{
			name:            "otlp tracing without endpoint",
			metricsExporter: ExporterPrometheus,
			tracingExporter: ExporterOTLP,
			wantErr:         true,
		},
		{
			name:            "otlp metrics without endpoint",
			metricsExporter: ExporterOTLP,
			tracingExporter: ExporterNone,
			wantErr:         true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			provider, err := NewProvider(ctx, Config{
				ServiceName:     "test-service",
				ServiceVersion:  "1.0.0",
				Enabled:         true,
				MetricsExporter: tt.metricsExporter,
				TracingExporter: tt.tracingExporter,
				OTLPEndpoint:    tt.endpoint,
			})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer func() { _ = provider.Shutdown(ctx) }()

			assert.True(t, provider.Enabled())
			assert.NotNil(t, provider.Metrics())
			assert.Equal(t, tt.wantPrometheus, provider.ServesPrometheus())
			assert.NotNil(t, provider.Tracer("test"))
		})
	}
}

func TestProvider_Shutdown(t *testing.T) {
	ctx := context.Background()
	provider, err := NewProvider(ctx, Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: ExporterPrometheus,
		TracingExporter: ExporterNone,
	})
	require.NoError(t, err)

	assert.NoError(t, provider.Shutdown(ctx))
}
