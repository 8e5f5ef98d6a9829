package logger

import (
	"context"
	"fmt"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/zap/zapcore"
)

// OTELConfig represents the OTEL exporter configuration.
type OTELConfig struct {
	// Endpoint through which the OTEL exporter will send logs.
	Endpoint string `yaml:"grpc_addr"`
	// Insecure disables TLS towards the collector.
	Insecure bool `yaml:"insecure"`
}

func setupOTELExporter(ctx context.Context, config *OTELConfig) (zapcore.Core, error) {
	options := []otlploggrpc.Option{otlploggrpc.WithEndpoint(config.Endpoint)}
	if config.Insecure {
		options = append(options, otlploggrpc.WithInsecure())
	}
	exporter, err := otlploggrpc.New(ctx, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create otel grpc exporter: %w", err)
	}

	provider := log.NewLoggerProvider(
		log.WithProcessor(log.NewBatchProcessor(exporter)),
		log.WithResource(
			resource.NewWithAttributes(
				semconv.SchemaURL,
				semconv.ServiceNameKey.String("tripso"),
			),
		),
	)

	otelCore := otelzap.NewCore("github.com/yanet-platform/tripso", otelzap.WithLoggerProvider(provider))

	return otelCore, nil
}
