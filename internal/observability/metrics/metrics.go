package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	transactionsCreated metric.Int64Counter
	transactionsPaid    metric.Int64Counter
	paymentOrders       metric.Int64Counter
	gatewayErrors       metric.Int64Counter
	invoiceRenders      metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "gstbill"
	}
	meter := provider.Meter(name)

	transactionsCreated, err := meter.Int64Counter("gstbill_transactions_created_total")
	if err != nil {
		return nil, err
	}
	transactionsPaid, err := meter.Int64Counter("gstbill_transactions_paid_total")
	if err != nil {
		return nil, err
	}
	paymentOrders, err := meter.Int64Counter("gstbill_payment_orders_total")
	if err != nil {
		return nil, err
	}
	gatewayErrors, err := meter.Int64Counter("gstbill_gateway_errors_total")
	if err != nil {
		return nil, err
	}
	invoiceRenders, err := meter.Int64Counter("gstbill_invoice_renders_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		transactionsCreated: transactionsCreated,
		transactionsPaid:    transactionsPaid,
		paymentOrders:       paymentOrders,
		gatewayErrors:       gatewayErrors,
		invoiceRenders:      invoiceRenders,
	}, nil
}

// RecordTransactionCreated increments created transaction counts.
func (m *Metrics) RecordTransactionCreated(ctx context.Context) {
	if m == nil {
		return
	}
	m.transactionsCreated.Add(ctx, 1)
}

// RecordTransactionPaid increments paid transaction counts.
func (m *Metrics) RecordTransactionPaid(ctx context.Context, source string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("source", strings.TrimSpace(source)))
	m.transactionsPaid.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordPaymentOrder increments gateway order counts.
func (m *Metrics) RecordPaymentOrder(ctx context.Context) {
	if m == nil {
		return
	}
	m.paymentOrders.Add(ctx, 1)
}

// RecordGatewayError increments gateway failure counts by category.
func (m *Metrics) RecordGatewayError(ctx context.Context, category string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("category", strings.TrimSpace(category)))
	m.gatewayErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordInvoiceRender increments render counts by format.
func (m *Metrics) RecordInvoiceRender(ctx context.Context, format string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("format", strings.TrimSpace(format)))
	m.invoiceRenders.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"source":   {},
	"category": {},
	"format":   {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
