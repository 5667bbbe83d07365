// Package telemetry sets up logging and OpenTelemetry metrics for cfs.
package telemetry

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Metric names and attribute keys.
const (
	pagesMetric    = "cfs.sync.pages"
	itemsMetric    = "cfs.sync.items"
	failuresMetric = "cfs.sync.failures"

	kindKey   = attribute.Key("resource.kind")
	regionKey = attribute.Key("cloud.region")
)

// SetupLogging points the global logger at out with a console writer.
func SetupLogging(out io.Writer, level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("parse log level %q: %w", level, err)
	}
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: out})
	return nil
}

// Provider owns the meter provider and its readers: a private Prometheus
// registry, an in-process reader for run totals and, when configured, a
// periodic OTLP push.
type Provider struct {
	meterProvider *sdkmetric.MeterProvider
	registry      *prometheus.Registry
	reader        *sdkmetric.ManualReader
	meter         metric.Meter
}

// ProviderOption configures NewProvider.
type ProviderOption func(*providerConfig)

type providerConfig struct {
	endpoint string
	insecure bool
	interval time.Duration
}

// WithOTLP pushes metrics to the OTLP gRPC collector at endpoint
// ("localhost:4317"). Empty endpoints are ignored.
func WithOTLP(endpoint string, insecure bool) ProviderOption {
	return func(c *providerConfig) {
		c.endpoint = endpoint
		c.insecure = insecure
	}
}

// NewProvider creates a meter provider and installs it as the global
// provider.
func NewProvider(ctx context.Context, serviceName string, opts ...ProviderOption) (*Provider, error) {
	cfg := providerConfig{interval: 10 * time.Second}
	for _, opt := range opts {
		opt(&cfg)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	registry := prometheus.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}
	reader := sdkmetric.NewManualReader()

	providerOpts := []sdkmetric.Option{
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
		sdkmetric.WithReader(reader),
	}
	if cfg.endpoint != "" {
		otlpReader, err := newOTLPReader(ctx, cfg)
		if err != nil {
			return nil, err
		}
		providerOpts = append(providerOpts, sdkmetric.WithReader(otlpReader))
		log.Debug().Str("endpoint", cfg.endpoint).Msg("exporting metrics over OTLP")
	}

	mp := sdkmetric.NewMeterProvider(providerOpts...)
	otel.SetMeterProvider(mp)

	return &Provider{
		meterProvider: mp,
		registry:      registry,
		reader:        reader,
		meter:         mp.Meter(serviceName),
	}, nil
}

func newOTLPReader(ctx context.Context, cfg providerConfig) (sdkmetric.Reader, error) {
	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.endpoint),
	}
	if cfg.insecure {
		opts = append(opts, otlpmetricgrpc.WithDialOption(
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		))
	}

	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create OTLP exporter: %w", err)
	}
	return sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.interval)), nil
}

// KindTotal sums what was recorded for one resource kind across regions.
type KindTotal struct {
	Pages    int64 `json:"pages"`
	Items    int64 `json:"items"`
	Failures int64 `json:"failures"`
}

// KindTotals collects the sync counters recorded so far, keyed by kind.
func (p *Provider) KindTotals(ctx context.Context) (map[string]KindTotal, error) {
	var rm metricdata.ResourceMetrics
	if err := p.reader.Collect(ctx, &rm); err != nil {
		return nil, fmt.Errorf("collect metrics: %w", err)
	}

	totals := make(map[string]KindTotal)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				kind, ok := dp.Attributes.Value(kindKey)
				if !ok {
					continue
				}
				t := totals[kind.AsString()]
				switch m.Name {
				case pagesMetric:
					t.Pages += dp.Value
				case itemsMetric:
					t.Items += dp.Value
				case failuresMetric:
					t.Failures += dp.Value
				default:
					continue
				}
				totals[kind.AsString()] = t
			}
		}
	}
	return totals, nil
}

// Meter returns the meter.
func (p *Provider) Meter() metric.Meter {
	return p.meter
}

// Handler serves the registry in the Prometheus text format.
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Shutdown flushes and shuts down the meter provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	if err := p.meterProvider.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown meter: %w", err)
	}
	return nil
}

// Metrics holds the instruments recorded while syncing and browsing.
// A nil *Metrics records nothing.
type Metrics struct {
	pages        metric.Int64Counter
	items        metric.Int64Counter
	failures     metric.Int64Counter
	kindDuration metric.Float64Histogram
	searches     metric.Int64Counter
}

// NewMetrics creates the cfs instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	pages, err := meter.Int64Counter(
		pagesMetric,
		metric.WithDescription("Number of listing pages validated"),
		metric.WithUnit("{page}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create pages: %w", err)
	}

	items, err := meter.Int64Counter(
		itemsMetric,
		metric.WithDescription("Number of resource files written"),
		metric.WithUnit("{resource}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create items: %w", err)
	}

	failures, err := meter.Int64Counter(
		failuresMetric,
		metric.WithDescription("Number of failed kind or region listings"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create failures: %w", err)
	}

	kindDuration, err := meter.Float64Histogram(
		"cfs.sync.kind.duration",
		metric.WithDescription("Duration of writing one resource kind"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create kind duration: %w", err)
	}

	searches, err := meter.Int64Counter(
		"cfs.browse.searches",
		metric.WithDescription("Number of searches served"),
		metric.WithUnit("{search}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create searches: %w", err)
	}

	return &Metrics{
		pages:        pages,
		items:        items,
		failures:     failures,
		kindDuration: kindDuration,
		searches:     searches,
	}, nil
}

// RecordPage records one validated page and the files written from it.
func (m *Metrics) RecordPage(ctx context.Context, kind, region string, written int) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		kindKey.String(kind),
		regionKey.String(region),
	)
	m.pages.Add(ctx, 1, attrs)
	m.items.Add(ctx, int64(written), attrs)
}

// RecordFailure records a listing that ended in an error.
func (m *Metrics) RecordFailure(ctx context.Context, kind, region string) {
	if m == nil {
		return
	}
	m.failures.Add(ctx, 1, metric.WithAttributes(
		kindKey.String(kind),
		regionKey.String(region),
	))
}

// RecordKindDuration records how long a kind took to write.
func (m *Metrics) RecordKindDuration(ctx context.Context, kind string, d time.Duration) {
	if m == nil {
		return
	}
	m.kindDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		kindKey.String(kind),
	))
}

// RecordSearch records one served search and whether it matched anything.
func (m *Metrics) RecordSearch(ctx context.Context, matched bool) {
	if m == nil {
		return
	}
	m.searches.Add(ctx, 1, metric.WithAttributes(
		attribute.Bool("matched", matched),
	))
}
