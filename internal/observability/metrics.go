package observability

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/lecturegate-backend/internal/platform/envutil"
	"github.com/yungbote/lecturegate-backend/internal/platform/logger"
)

// Metrics is a small Prometheus text registry for the gating API.
type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge

	gateDecisions *CounterVec
	submissions   *CounterVec
	submitScore   *HistogramVec
	viewEvents    *CounterVec
	authoring     *CounterVec

	examRequests *CounterVec
	examLatency  *HistogramVec

	aggregateOps      *CounterVec
	aggregateLatency  *HistogramVec
	aggregateConflict *CounterVec
	aggregateRetry    *CounterVec

	pgStats *GaugeVec

	all []collector
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	return envutil.Bool("METRICS_ENABLED", false)
}

func Current() *Metrics {
	return instance
}

// Init builds the process-wide registry once. It returns nil when metrics are
// disabled; every method is nil-safe.
func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = New()
		if log != nil {
			log.Info("metrics enabled")
		}
	})
	return instance
}

// New returns an unregistered Metrics, mostly for tests.
func New() *Metrics {
	m := &Metrics{
		apiRequests: NewCounterVec("lg_api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"lg_api_request_duration_seconds",
			"API request latency in seconds by method/route.",
			[]string{"method", "route"},
			[]float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		),
		apiInflight: NewGauge("lg_api_inflight_requests", "In-flight API requests."),

		gateDecisions: NewCounterVec("lg_gate_decisions_total", "Access gate decisions by action/outcome/reason.", []string{"action", "outcome", "reason"}),
		submissions:   NewCounterVec("lg_submissions_total", "Recorded assessment submissions by source/passed.", []string{"source", "passed"}),
		submitScore: NewHistogramVec(
			"lg_submission_score",
			"Assessment submission scores by source.",
			[]string{"source"},
			[]float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		),
		viewEvents: NewCounterVec("lg_view_events_total", "Recorded lecture view events by completed.", []string{"completed"}),
		authoring:  NewCounterVec("lg_authoring_validations_total", "Authoring validations by kind/result.", []string{"kind", "result"}),

		examRequests: NewCounterVec("lg_exam_service_requests_total", "Exam service calls by op/status.", []string{"op", "status"}),
		examLatency: NewHistogramVec(
			"lg_exam_service_request_duration_seconds",
			"Exam service call latency by op.",
			[]string{"op"},
			[]float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		),

		aggregateOps: NewCounterVec("lg_aggregate_operations_total", "Aggregate writes by aggregate/status.", []string{"aggregate", "status"}),
		aggregateLatency: NewHistogramVec(
			"lg_aggregate_operation_duration_seconds",
			"Aggregate write latency by aggregate.",
			[]string{"aggregate"},
			[]float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		),
		aggregateConflict: NewCounterVec("lg_aggregate_conflicts_total", "Aggregate version conflicts.", []string{"aggregate"}),
		aggregateRetry:    NewCounterVec("lg_aggregate_retries_total", "Aggregate retryable failures.", []string{"aggregate"}),

		pgStats: NewGaugeVec("lg_postgres_pool", "database/sql pool stats.", []string{"stat"}),
	}
	m.all = []collector{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.gateDecisions, m.submissions, m.submitScore, m.viewEvents, m.authoring,
		m.examRequests, m.examLatency,
		m.aggregateOps, m.aggregateLatency, m.aggregateConflict, m.aggregateRetry,
		m.pgStats,
	}
	return m
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, c := range m.all {
		if err := c.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unmatched"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route)
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Add(1)
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Add(-1)
}

// IncGateDecision records one access gate outcome. reason is empty for allowed.
func (m *Metrics) IncGateDecision(action string, allowed bool, reason string) {
	if m == nil {
		return
	}
	outcome := "denied"
	if allowed {
		outcome = "allowed"
		reason = "none"
	}
	m.gateDecisions.Inc(action, outcome, reason)
}

func (m *Metrics) GateDecisionCount(action string, allowed bool, reason string) float64 {
	if m == nil {
		return 0
	}
	outcome := "denied"
	if allowed {
		outcome = "allowed"
		reason = "none"
	}
	return m.gateDecisions.Value(action, outcome, reason)
}

func (m *Metrics) ObserveSubmission(source string, passed bool, score int) {
	if m == nil {
		return
	}
	m.submissions.Inc(source, strconv.FormatBool(passed))
	m.submitScore.Observe(float64(score), source)
}

func (m *Metrics) IncViewEvent(completed bool) {
	if m == nil {
		return
	}
	m.viewEvents.Inc(strconv.FormatBool(completed))
}

func (m *Metrics) IncAuthoringValidation(kind, result string) {
	if m == nil {
		return
	}
	m.authoring.Inc(kind, result)
}

func (m *Metrics) ObserveExamCall(op, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.examRequests.Inc(op, status)
	m.examLatency.Observe(dur.Seconds(), op)
}

func (m *Metrics) ObserveAggregateOperation(name, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.aggregateOps.Inc(name, status)
	m.aggregateLatency.Observe(dur.Seconds(), name)
}

func (m *Metrics) IncAggregateConflict(name string) {
	if m == nil {
		return
	}
	m.aggregateConflict.Inc(name)
}

func (m *Metrics) IncAggregateRetry(name string) {
	if m == nil {
		return
	}
	m.aggregateRetry.Inc(name)
}

func scrapeInterval() time.Duration {
	n := envutil.Int("METRICS_SCRAPE_INTERVAL_SECONDS", 10)
	if n <= 0 {
		n = 10
	}
	return time.Duration(n) * time.Second
}

func (m *Metrics) StartPostgresCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	interval := scrapeInterval()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sqlDB, err := db.DB()
				if err != nil {
					if log != nil {
						log.Warn("metrics: postgres stats unavailable", "error", err)
					}
					continue
				}
				stats := sqlDB.Stats()
				m.pgStats.Set(float64(stats.OpenConnections), "open_connections")
				m.pgStats.Set(float64(stats.InUse), "in_use")
				m.pgStats.Set(float64(stats.Idle), "idle")
				m.pgStats.Set(float64(stats.WaitCount), "wait_count")
				m.pgStats.Set(stats.WaitDuration.Seconds(), "wait_duration_seconds")
			}
		}
	}()
}
