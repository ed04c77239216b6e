// Package metrics exposes pipeline counters via Prometheus.
package metrics

import (
	"context"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once            sync.Once
	fetchSuccess    *prometheus.CounterVec
	fetchError      *prometheus.CounterVec
	validationValid *prometheus.CounterVec
	validationInval *prometheus.CounterVec
	server          *http.Server
)

// Init registers the pipeline's counters and serves them on addr (e.g.
// ":2112") under /metrics. Safe to call multiple times; only the first
// call takes effect.
func Init(addr string) {
	once.Do(func() {
		fetchSuccess = prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "pairdiscovery_fetch_success_total", Help: "Successful inventory fetches"},
			[]string{"source"},
		)
		fetchError = prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "pairdiscovery_fetch_error_total", Help: "Failed inventory fetches"},
			[]string{"source"},
		)
		validationValid = prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "pairdiscovery_validation_valid_total", Help: "Symbols validated live by the validator"},
			[]string{"source"},
		)
		validationInval = prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "pairdiscovery_validation_invalid_total", Help: "Symbols rejected by the validator"},
			[]string{"source", "reason"},
		)

		_ = prometheus.Register(fetchSuccess)
		_ = prometheus.Register(fetchError)
		_ = prometheus.Register(validationValid)
		_ = prometheus.Register(validationInval)
		_ = prometheus.Register(collectors.NewGoCollector())
		_ = prometheus.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		server = &http.Server{Addr: addr, Handler: mux}
		go func() {
			_ = server.ListenAndServe()
		}()
	})
}

// Shutdown stops the metrics HTTP server, if running.
func Shutdown(ctx context.Context) {
	if server != nil {
		_ = server.Shutdown(ctx)
	}
}

// IncrementFetchSuccess records one successful inventory fetch for source.
func IncrementFetchSuccess(source string) {
	if fetchSuccess != nil {
		fetchSuccess.WithLabelValues(source).Inc()
	}
}

// IncrementFetchError records one failed inventory fetch for source.
func IncrementFetchError(source string) {
	if fetchError != nil {
		fetchError.WithLabelValues(source).Inc()
	}
}

// AddValidationResult records n valid and, per reason, invalid outcomes for source.
func AddValidationResult(source string, valid int, invalidByReason map[string]int) {
	if validationValid != nil {
		validationValid.WithLabelValues(source).Add(float64(valid))
	}
	if validationInval != nil {
		for reason, n := range invalidByReason {
			validationInval.WithLabelValues(source, reason).Add(float64(n))
		}
	}
}
