package telemetry

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/nalgeon/be"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestObserver(t *testing.T) (*Observer, *tracetest.InMemoryExporter, *sdkmetric.ManualReader) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	o, err := NewObserver(mp.Meter("test"), tp.Tracer("test"))
	be.Err(t, err, nil)
	return o, exporter, reader
}

func sum(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	be.Err(t, reader.Collect(context.Background(), &rm), nil)
	var total int64
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != name {
				continue
			}
			data, ok := m.Data.(metricdata.Sum[int64])
			be.True(t, ok)
			for _, dp := range data.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

func TestObserverRecordsCalls(t *testing.T) {
	o, exporter, reader := newTestObserver(t)

	_, end := o.Start(context.Background(), "reminders", "list")
	end("")
	_, end = o.Start(context.Background(), "reminders", "complete")
	end("not_found")

	spans := exporter.GetSpans()
	be.Equal(t, len(spans), 2)
	be.Equal(t, spans[0].Name, "tool.call")
	be.Equal(t, spans[0].Status.Code, codes.Ok)
	be.Equal(t, spans[1].Status.Code, codes.Error)
	be.Equal(t, spans[1].Status.Description, "not_found")

	be.Equal(t, sum(t, reader, "deskmcp.tool.calls"), int64(2))
	be.Equal(t, sum(t, reader, "deskmcp.tool.errors"), int64(1))
}

func TestNilObserver(t *testing.T) {
	var o *Observer
	ctx, end := o.Start(context.Background(), "notes", "lookup")
	be.True(t, ctx != nil)
	end("")
}

func TestSetupWithoutEndpoint(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{})
	be.Err(t, err, nil)
	be.Err(t, shutdown(context.Background()), nil)
}

func TestSetupExportsTracesAndMetrics(t *testing.T) {
	var (
		mu    sync.Mutex
		paths = map[string]int{}
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		mu.Lock()
		paths[r.URL.Path]++
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	prevTracer, prevMeter := otel.GetTracerProvider(), otel.GetMeterProvider()
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTracer)
		otel.SetMeterProvider(prevMeter)
	})

	shutdown, err := Setup(context.Background(), Config{
		Endpoint:       srv.URL,
		ServiceName:    "deskmcp-test",
		Version:        "test",
		MetricInterval: time.Hour,
	})
	be.Err(t, err, nil)
	_, isSDK := otel.GetMeterProvider().(*sdkmetric.MeterProvider)
	be.True(t, isSDK)

	o, err := Global()
	be.Err(t, err, nil)
	_, end := o.Start(context.Background(), "calendar", "list")
	end("")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	be.Err(t, shutdown(ctx), nil)

	mu.Lock()
	defer mu.Unlock()
	be.True(t, paths["/v1/traces"] > 0)
	be.True(t, paths["/v1/metrics"] > 0)
}
