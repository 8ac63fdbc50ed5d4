package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ValentinKolb/dMem/lib/registry"
	"github.com/ValentinKolb/dMem/rpc/common"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var metricsLogger = logger.GetLogger("metrics")

// serverMetrics holds the prometheus metrics of one server instance.
// A dedicated metrics.Set is used so several servers (e.g. in tests) can coexist.
type serverMetrics struct {
	set      *metrics.Set
	counters *xsync.MapOf[string, *metrics.Counter]
	latency  *xsync.MapOf[common.Command, *metrics.Histogram]
}

func newServerMetrics(reg registry.IRegistry) *serverMetrics {
	set := metrics.NewSet()

	set.NewGauge(`dmem_registry_entries`, func() float64 {
		return float64(reg.Info().Entries)
	})
	set.NewGauge(`dmem_registry_bytes`, func() float64 {
		return float64(reg.Info().SizeBytes)
	})
	set.NewGauge(`dmem_registry_median_allocation_bytes`, func() float64 {
		return float64(reg.Info().MedianSize)
	})

	return &serverMetrics{
		set:      set,
		counters: xsync.NewMapOf[string, *metrics.Counter](),
		latency:  xsync.NewMapOf[common.Command, *metrics.Histogram](),
	}
}

// metricCommand maps unknown commands to a single label value to bound the cardinality
func metricCommand(cmd common.Command) common.Command {
	if cmd.Known() {
		return cmd
	}
	return "unknown"
}

// observe records one handled request
func (m *serverMetrics) observe(cmd common.Command, resp *common.Response, start time.Time) {
	cmd = metricCommand(cmd)

	result := "ok"
	if !resp.Ok {
		result = resp.Err
	}

	name := fmt.Sprintf(`dmem_commands_total{command=%q,result=%q}`, cmd, result)
	counter, _ := m.counters.LoadOrCompute(name, func() *metrics.Counter {
		return m.set.GetOrCreateCounter(name)
	})
	counter.Inc()

	histogram, _ := m.latency.LoadOrCompute(cmd, func() *metrics.Histogram {
		return m.set.GetOrCreateHistogram(fmt.Sprintf(`dmem_command_duration_seconds{command=%q}`, cmd))
	})
	histogram.UpdateDuration(start)
}

// commandCount returns how often cmd was answered with result ("ok" or an error token)
func (m *serverMetrics) commandCount(cmd common.Command, result string) uint64 {
	name := fmt.Sprintf(`dmem_commands_total{command=%q,result=%q}`, metricCommand(cmd), result)
	counter, ok := m.counters.Load(name)
	if !ok {
		return 0
	}
	return counter.Get()
}

// WritePrometheus writes the server and process metrics in prometheus text format
func (m *serverMetrics) WritePrometheus(w io.Writer) {
	m.set.WritePrometheus(w)
	metrics.WriteProcessMetrics(w)
}

// serveMetrics runs the prometheus endpoint until ctx is cancelled
func (m *serverMetrics) serveMetrics(ctx context.Context, endpoint string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		m.WritePrometheus(w)
	})

	srv := &http.Server{
		Addr:              endpoint,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	metricsLogger.Infof("Serving metrics on http://%s/metrics", endpoint)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics endpoint failed: %w", err)
	}
	return nil
}
