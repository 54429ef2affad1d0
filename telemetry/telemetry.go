// Package telemetry wires OpenTelemetry trace and log export over OTLP/HTTP.
// Both are off unless OTEL_ENABLED is set; logs additionally need
// OTEL_LOGS_ENABLED and an endpoint.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/amp-labs/amp-automata/config"
	"github.com/amp-labs/amp-automata/logger"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
)

const (
	defaultServiceVersion = "1.0.0"
	defaultTimeout        = 5 * time.Second
	defaultServiceName    = "automata"
)

var (
	tracerProvider *sdktrace.TracerProvider
	loggerProvider *sdklog.LoggerProvider
)

// Config holds the OpenTelemetry configuration.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	Endpoint       string
	LogsEndpoint   string
	Enabled        bool
	LogsEnabled    bool
	Timeout        time.Duration
}

// LoadConfigFromEnv loads OpenTelemetry configuration from environment variables.
func LoadConfigFromEnv(ctx context.Context, runningEnv string) (*Config, error) {
	enabled := config.EnvBool("OTEL_ENABLED").ValueOrElse(false)
	logsEnabled := config.EnvBool("OTEL_LOGS_ENABLED").ValueOrElse(false)

	// Default to the in-cluster collector when running in Kubernetes.
	defaultEndpoint := ""
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		defaultEndpoint = "http://opentelemetry-collector.opentelemetry.svc.cluster.local:4318"
	}

	serviceName := logger.GetSubsystem(ctx)
	if serviceName == "" {
		serviceName = defaultServiceName
	}

	svcName, err := config.EnvString("OTEL_SERVICE_NAME").WithDefault(serviceName).Value()
	if err != nil {
		return nil, err
	}

	svcVersion, err := config.EnvString("OTEL_SERVICE_VERSION").WithDefault(defaultServiceVersion).Value()
	if err != nil {
		return nil, err
	}

	endpoint, err := config.EnvString("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT").WithDefault(defaultEndpoint).Value()
	if err != nil {
		return nil, err
	}

	logsEndpoint, err := config.EnvString("OTEL_EXPORTER_OTLP_LOGS_ENDPOINT").WithDefault(defaultEndpoint).Value()
	if err != nil {
		return nil, err
	}

	timeout, err := config.EnvDuration("OTEL_EXPORTER_OTLP_TIMEOUT").WithDefault(defaultTimeout).Value()
	if err != nil {
		return nil, err
	}

	return &Config{
		ServiceName:    svcName,
		ServiceVersion: svcVersion,
		Environment:    runningEnv,
		Endpoint:       endpoint,
		LogsEndpoint:   logsEndpoint,
		Enabled:        enabled,
		LogsEnabled:    logsEnabled,
		Timeout:        timeout,
	}, nil
}

// Initialize sets up OpenTelemetry tracing, and log export when enabled,
// with the given configuration.
func Initialize(ctx context.Context, cfg *Config) error {
	log := logger.Get(ctx)

	if !cfg.Enabled {
		log.Debug("OpenTelemetry is disabled")

		return nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.ServiceName),
			semconv.ServiceVersionKey.String(cfg.ServiceVersion),
			semconv.DeploymentEnvironmentKey.String(cfg.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	if cfg.Endpoint == "" {
		log.Warn("OpenTelemetry trace endpoint not configured, tracing will be disabled")
	} else if err := initTracing(ctx, cfg, res); err != nil {
		return err
	}

	if !cfg.LogsEnabled {
		return nil
	}

	if cfg.LogsEndpoint == "" {
		log.Warn("OpenTelemetry logs endpoint not configured, log export will be disabled")

		return nil
	}

	return initLogs(ctx, cfg, res)
}

func initTracing(ctx context.Context, cfg *Config, res *resource.Resource) error {
	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpointURL(cfg.Endpoint),
		otlptracehttp.WithTimeout(cfg.Timeout),
	)
	if err != nil {
		return fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}

	tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Get(ctx).Info("OpenTelemetry tracing initialized",
		"service", cfg.ServiceName,
		"version", cfg.ServiceVersion,
		"environment", cfg.Environment,
		"endpoint", cfg.Endpoint,
	)

	return nil
}

func initLogs(ctx context.Context, cfg *Config, res *resource.Resource) error {
	exporter, err := otlploghttp.New(ctx,
		otlploghttp.WithEndpointURL(cfg.LogsEndpoint),
		otlploghttp.WithTimeout(cfg.Timeout),
	)
	if err != nil {
		return fmt.Errorf("failed to create OTLP log exporter: %w", err)
	}

	loggerProvider = sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
		sdklog.WithResource(res),
	)

	logger.Get(ctx).Info("OpenTelemetry log export initialized", "endpoint", cfg.LogsEndpoint)

	return nil
}

// LogHandler returns an slog handler exporting records over OTLP, or nil
// when log export is not initialized. Pass it to logger.WithHandler.
func LogHandler(name string) slog.Handler {
	if loggerProvider == nil {
		return nil
	}

	return otelslog.NewHandler(name, otelslog.WithLoggerProvider(loggerProvider))
}

// Shutdown flushes and shuts down the providers set up by Initialize.
func Shutdown(ctx context.Context) error {
	var errs []error

	if tracerProvider != nil {
		logger.Get(ctx).Debug("Shutting down OpenTelemetry tracer provider")

		errs = append(errs, tracerProvider.Shutdown(ctx))
		tracerProvider = nil
	}

	if loggerProvider != nil {
		errs = append(errs, loggerProvider.Shutdown(ctx))
		loggerProvider = nil
	}

	return errors.Join(errs...)
}
