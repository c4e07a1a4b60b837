// Package telemetry bootstraps the OpenTelemetry providers of the portal server.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
)

// Config selects the exporters of each signal
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string

	EnableTracing bool
	UseOTLPTraces bool
	OTLPTracesURL string // e.g., http://localhost:4318/v1/traces

	EnableMetrics  bool
	UsePrometheus  bool // register an exporter on the default prometheus registry
	UseOTLPMetrics bool
	OTLPMetricsURL string

	// zerolog handles application logs, this only forwards OTel log records
	EnableLogs  bool
	UseOTLPLogs bool
	OTLPLogsURL string

	// InsecureOTLP sends OTLP over plain HTTP. Only for local collectors.
	InsecureOTLP bool

	// DevelopmentMode replaces every push exporter with a stdout one
	DevelopmentMode bool
}

// DefaultConfig returns tracing through OTLP and metrics through prometheus
func DefaultConfig() *Config {
	return &Config{
		ServiceName:    "liquidity-portal",
		ServiceVersion: "1.0.0",
		Environment:    "production",
		EnableTracing:  true,
		UseOTLPTraces:  true,
		OTLPTracesURL:  "http://localhost:4318/v1/traces",
		EnableMetrics:  true,
		UsePrometheus:  true,
		OTLPMetricsURL: "http://localhost:4318/v1/metrics",
		OTLPLogsURL:    "http://localhost:4318/v1/logs",
	}
}

// Enabled reports whether any signal is switched on
func (c *Config) Enabled() bool {
	return c != nil && (c.EnableTracing || c.EnableMetrics || c.EnableLogs)
}

// ShutdownFunc flushes and stops every provider that Setup registered
type ShutdownFunc func(context.Context) error

// Setup installs the global providers. The returned shutdown func is safe to
// call even when Setup fails half way.
func Setup(ctx context.Context, config *Config) (ShutdownFunc, error) {
	if config == nil {
		config = DefaultConfig()
	}

	var shutdowns []ShutdownFunc
	shutdown := func(ctx context.Context) error {
		var err error
		for i := len(shutdowns) - 1; i >= 0; i-- {
			err = errors.Join(err, shutdowns[i](ctx))
		}
		shutdowns = nil
		return err
	}
	fail := func(err error) (ShutdownFunc, error) {
		return shutdown, errors.Join(err, shutdown(ctx))
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(config.ServiceName),
			semconv.ServiceVersion(config.ServiceVersion),
			semconv.DeploymentEnvironmentName(config.Environment),
		),
	)
	if err != nil {
		return shutdown, fmt.Errorf("failed to create resource: %w", err)
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if config.EnableTracing {
		tp, err := newTracerProvider(ctx, res, config)
		if err != nil {
			return fail(err)
		}
		shutdowns = append(shutdowns, tp.Shutdown)
		otel.SetTracerProvider(tp)
	}

	if config.EnableMetrics {
		mp, err := newMeterProvider(ctx, res, config)
		if err != nil {
			return fail(err)
		}
		shutdowns = append(shutdowns, mp.Shutdown)
		otel.SetMeterProvider(mp)
	}

	if config.EnableLogs {
		lp, err := newLoggerProvider(ctx, res, config)
		if err != nil {
			return fail(err)
		}
		shutdowns = append(shutdowns, lp.Shutdown)
		global.SetLoggerProvider(lp)
	}

	return shutdown, nil
}

func newTracerProvider(ctx context.Context, res *resource.Resource, config *Config) (*sdktrace.TracerProvider, error) {
	var exporter sdktrace.SpanExporter
	var err error

	switch {
	case config.DevelopmentMode:
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	case config.UseOTLPTraces:
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpointURL(config.OTLPTracesURL)}
		if config.InsecureOTLP {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		exporter, err = otlptracehttp.New(ctx, opts...)
	default:
		return sdktrace.NewTracerProvider(sdktrace.WithResource(res)), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
		sdktrace.WithResource(res),
	), nil
}

func newMeterProvider(ctx context.Context, res *resource.Resource, config *Config) (*sdkmetric.MeterProvider, error) {
	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}

	if config.UsePrometheus {
		exporter, err := prometheus.New()
		if err != nil {
			return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
		}
		opts = append(opts, sdkmetric.WithReader(exporter))
	}

	if config.UseOTLPMetrics {
		var exporter sdkmetric.Exporter
		var err error
		interval := 60 * time.Second

		if config.DevelopmentMode {
			exporter, err = stdoutmetric.New()
			interval = 10 * time.Second
		} else {
			metricOpts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpointURL(config.OTLPMetricsURL)}
			if config.InsecureOTLP {
				metricOpts = append(metricOpts, otlpmetrichttp.WithInsecure())
			}
			exporter, err = otlpmetrichttp.New(ctx, metricOpts...)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create metric exporter: %w", err)
		}
		opts = append(opts, sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval)),
		))
	}

	return sdkmetric.NewMeterProvider(opts...), nil
}

func newLoggerProvider(ctx context.Context, res *resource.Resource, config *Config) (*sdklog.LoggerProvider, error) {
	var exporter sdklog.Exporter
	var err error

	switch {
	case config.DevelopmentMode:
		exporter, err = stdoutlog.New()
	case config.UseOTLPLogs:
		opts := []otlploghttp.Option{otlploghttp.WithEndpointURL(config.OTLPLogsURL)}
		if config.InsecureOTLP {
			opts = append(opts, otlploghttp.WithInsecure())
		}
		exporter, err = otlploghttp.New(ctx, opts...)
	default:
		return sdklog.NewLoggerProvider(sdklog.WithResource(res)), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create log exporter: %w", err)
	}

	return sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
		sdklog.WithResource(res),
	), nil
}
