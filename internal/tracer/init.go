package tracer

import (
	"context"

	"github.com/Eatosin/lexpertz-axiom-engine/internal/config"
	"github.com/Eatosin/lexpertz-axiom-engine/internal/pkg/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

const serviceName = "axiom-engine"

type ShutdownFunc func(context.Context) error

// InitTracer installs the global tracer provider that the evidence gateway,
// composer and verifier spans report to. With tracing disabled the global
// no-op provider stays in place and the returned shutdown does nothing.
func InitTracer(cfg config.TracingConfig, log logger.ILogger) ShutdownFunc {
	noop := func(context.Context) error { return nil }

	if !cfg.Enabled {
		log.Info("tracer", "Tracing disabled", nil)
		return noop
	}

	exporter, err := otlptracehttp.New(context.Background(),
		otlptracehttp.WithEndpoint(cfg.Endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		log.Warn("tracer", "OTLP exporter unavailable, tracing disabled", map[string]interface{}{
			"error": err.Error(),
		})
		return noop
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(sampleRatio(cfg.SampleRatio)))),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
		)),
	)
	otel.SetTracerProvider(tp)

	log.Info("tracer", "Tracer initialized", map[string]interface{}{
		"endpoint":     cfg.Endpoint,
		"sample_ratio": cfg.SampleRatio,
	})
	return tp.Shutdown
}

func sampleRatio(r float64) float64 {
	switch {
	case r <= 0:
		return 0
	case r > 1:
		return 1
	default:
		return r
	}
}
