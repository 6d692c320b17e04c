// Package observer provides OTEL-based observability for the indexing
// pipeline.
//
// It exposes pipeline-level counters and histograms plus an OTEL-backed
// ragagent.Tracer, all exported via OTLP HTTP. Users point the exporters at
// any OTEL-compatible backend by setting standard OTEL env vars.
package observer

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const scopeName = "github.com/guychikaAL/RagAgent/observer"

// Instruments holds all OTEL instruments used by the pipeline.
type Instruments struct {
	Tracer trace.Tracer
	Meter  metric.Meter
	Logger otellog.Logger

	// Counters
	DocumentsIngested metric.Int64Counter
	RecordsSegmented  metric.Int64Counter
	NodesBuilt        metric.Int64Counter
	NodesStored       metric.Int64Counter
	IngestErrors      metric.Int64Counter
	EmbedRequests     metric.Int64Counter

	// Histograms
	IngestDuration  metric.Float64Histogram
	SegmentDuration metric.Float64Histogram
	ChunkDuration   metric.Float64Histogram
	StoreDuration   metric.Float64Histogram
	EmbedDuration   metric.Float64Histogram
}

// Init sets up OTEL trace, metric, and log providers with OTLP HTTP exporters.
// Configuration comes from standard OTEL env vars (OTEL_EXPORTER_OTLP_ENDPOINT, etc.).
// Returns a shutdown function that must be called on application exit.
func Init(ctx context.Context, serviceName string) (*Instruments, func(context.Context) error, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(serviceName)),
		resource.WithFromEnv(),
	)
	if err != nil {
		return nil, nil, err
	}

	// Trace provider
	traceExp, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	// Metric provider
	metricExp, err := otlpmetrichttp.New(ctx)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, nil, err
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExp)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	// Log provider
	logExp, err := otlploghttp.New(ctx)
	if err != nil {
		_ = tp.Shutdown(ctx)
		_ = mp.Shutdown(ctx)
		return nil, nil, err
	}
	lp := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(logExp)),
		sdklog.WithResource(res),
	)
	global.SetLoggerProvider(lp)

	inst, err := newInstruments()
	if err != nil {
		_ = tp.Shutdown(ctx)
		_ = mp.Shutdown(ctx)
		_ = lp.Shutdown(ctx)
		return nil, nil, err
	}

	shutdown := func(ctx context.Context) error {
		return errors.Join(
			tp.Shutdown(ctx),
			mp.Shutdown(ctx),
			lp.Shutdown(ctx),
		)
	}

	return inst, shutdown, nil
}

func newInstruments() (*Instruments, error) {
	tracer := otel.Tracer(scopeName)
	meter := otel.Meter(scopeName)
	logger := global.GetLoggerProvider().Logger(scopeName)

	documentsIngested, err := meter.Int64Counter("pipeline.documents.ingested",
		metric.WithDescription("Documents ingested"),
		metric.WithUnit("{document}"))
	if err != nil {
		return nil, err
	}

	recordsSegmented, err := meter.Int64Counter("pipeline.records.segmented",
		metric.WithDescription("Claim records segmented out of documents"),
		metric.WithUnit("{record}"))
	if err != nil {
		return nil, err
	}

	nodesBuilt, err := meter.Int64Counter("pipeline.nodes.built",
		metric.WithDescription("Hierarchy nodes built by the chunking stage"),
		metric.WithUnit("{node}"))
	if err != nil {
		return nil, err
	}

	nodesStored, err := meter.Int64Counter("pipeline.nodes.stored",
		metric.WithDescription("Nodes persisted to the node store"),
		metric.WithUnit("{node}"))
	if err != nil {
		return nil, err
	}

	ingestErrors, err := meter.Int64Counter("pipeline.ingest.errors",
		metric.WithDescription("Documents that failed ingestion"),
		metric.WithUnit("{document}"))
	if err != nil {
		return nil, err
	}

	ingestDuration, err := meter.Float64Histogram("pipeline.ingest.duration",
		metric.WithDescription("Extraction and normalization duration"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}

	segmentDuration, err := meter.Float64Histogram("pipeline.segment.duration",
		metric.WithDescription("Record segmentation duration"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}

	chunkDuration, err := meter.Float64Histogram("pipeline.chunk.duration",
		metric.WithDescription("Node building duration per record"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}

	storeDuration, err := meter.Float64Histogram("pipeline.store.duration",
		metric.WithDescription("Document persistence duration"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}

	embedRequests, err := meter.Int64Counter("embed.requests",
		metric.WithDescription("Embedding request count"),
		metric.WithUnit("{request}"))
	if err != nil {
		return nil, err
	}

	embedDuration, err := meter.Float64Histogram("embed.duration",
		metric.WithDescription("Embedding call duration"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}

	return &Instruments{
		Tracer:            tracer,
		Meter:             meter,
		Logger:            logger,
		DocumentsIngested: documentsIngested,
		RecordsSegmented:  recordsSegmented,
		NodesBuilt:        nodesBuilt,
		NodesStored:       nodesStored,
		IngestErrors:      ingestErrors,
		EmbedRequests:     embedRequests,
		IngestDuration:    ingestDuration,
		SegmentDuration:   segmentDuration,
		ChunkDuration:     chunkDuration,
		StoreDuration:     storeDuration,
		EmbedDuration:     embedDuration,
	}, nil
}
