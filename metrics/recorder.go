package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"go.uber.org/zap"
)

const namespace = "ec2_scheduler"

// Recorder collects the counters of one invocation and pushes them to a
// Pushgateway at the end. The job is short-lived, so nothing is scraped.
type Recorder struct {
	registry *prometheus.Registry
	gateway  string
	job      string
	logger   *zap.Logger

	started  *prometheus.CounterVec
	stopped  *prometheus.CounterVec
	untagged *prometheus.CounterVec
	failures *prometheus.CounterVec
	lastRun  prometheus.Gauge
}

// NewRecorder creates a recorder; an empty gateway disables pushing
func NewRecorder(gateway, job string, logger *zap.Logger) *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		gateway:  gateway,
		job:      job,
		logger:   logger,
		started: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "instances_started_total",
			Help:      "Instances started by a successful start call.",
		}, []string{"account"}),
		stopped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "instances_stopped_total",
			Help:      "Scheduled instances stopped by a successful stop call.",
		}, []string{"account"}),
		untagged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "untagged_stopped_total",
			Help:      "Untagged instances stopped by a successful stop call.",
		}, []string{"account"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "account_failures_total",
			Help:      "Accounts whose start/stop cycle failed.",
		}, []string{"account"}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last invocation finished.",
		}),
	}
	r.registry.MustRegister(r.started, r.stopped, r.untagged, r.failures, r.lastRun)
	return r
}

func (r *Recorder) InstancesStarted(account string, count int) {
	r.started.WithLabelValues(account).Add(float64(count))
}

func (r *Recorder) InstancesStopped(account string, count int) {
	r.stopped.WithLabelValues(account).Add(float64(count))
}

func (r *Recorder) UntaggedStopped(account string, count int) {
	r.untagged.WithLabelValues(account).Add(float64(count))
}

func (r *Recorder) AccountFailed(account string) {
	r.failures.WithLabelValues(account).Inc()
}

func (r *Recorder) RunCompleted(at time.Time) {
	r.lastRun.Set(float64(at.Unix()))
}

// Registry exposes the underlying registry, mostly for tests
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Push sends every collected metric to the gateway
func (r *Recorder) Push(ctx context.Context) error {
	if r.gateway == "" {
		return nil
	}

	err := push.New(r.gateway, r.job).
		Gatherer(r.registry).
		PushContext(ctx)
	if err != nil {
		return err
	}

	r.logger.Info("Metrics pushed",
		zap.String("operation", "metrics_push"),
		zap.String("gateway", r.gateway),
		zap.String("job", r.job),
	)
	return nil
}
