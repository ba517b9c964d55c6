package metrics

import "github.com/prometheus/client_golang/prometheus"

// Prometheus is a Collector backed by github.com/prometheus/client_golang,
// grounded on the same stack carried directly by nabbar-golib and
// backube-volsync.
type Prometheus struct {
	sessionsAcquired  *prometheus.CounterVec
	sessionsCreated   *prometheus.CounterVec
	sessionsClosed    *prometheus.CounterVec
	tasksDispatched   *prometheus.CounterVec
	tasksRetried      *prometheus.CounterVec
	taskResults       *prometheus.CounterVec
	taskDuration      *prometheus.HistogramVec
	queueDepth        prometheus.Gauge
}

// NewPrometheus registers a fresh set of collectors with reg and returns a
// Collector backed by them. Pass prometheus.DefaultRegisterer to wire into
// the default /metrics endpoint.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	p := &Prometheus{
		sessionsAcquired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ftpclient",
			Subsystem: "pool",
			Name:      "sessions_acquired_total",
			Help:      "Sessions handed out by Acquire, partitioned by reuse.",
		}, []string{"reused"}),
		sessionsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ftpclient",
			Subsystem: "pool",
			Name:      "sessions_created_total",
			Help:      "Sessions created by the pool factory, partitioned by success.",
		}, []string{"success"}),
		sessionsClosed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ftpclient",
			Subsystem: "pool",
			Name:      "sessions_closed_total",
			Help:      "Sessions closed or evicted, partitioned by reason.",
		}, []string{"reason"}),
		tasksDispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ftpclient",
			Subsystem: "scheduler",
			Name:      "tasks_dispatched_total",
			Help:      "Tasks handed to a worker, partitioned by kind.",
		}, []string{"kind"}),
		tasksRetried: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ftpclient",
			Subsystem: "scheduler",
			Name:      "tasks_retried_total",
			Help:      "Tasks reinjected by the retry monitor, partitioned by kind.",
		}, []string{"kind"}),
		taskResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ftpclient",
			Subsystem: "scheduler",
			Name:      "task_results_total",
			Help:      "Terminal task outcomes, partitioned by kind and success.",
		}, []string{"kind", "success"}),
		taskDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ftpclient",
			Subsystem: "scheduler",
			Name:      "task_duration_seconds",
			Help:      "Task execution duration, partitioned by kind.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ftpclient",
			Subsystem: "scheduler",
			Name:      "queue_depth",
			Help:      "Number of tasks currently queued but not yet dispatched.",
		}),
	}

	reg.MustRegister(
		p.sessionsAcquired, p.sessionsCreated, p.sessionsClosed,
		p.tasksDispatched, p.tasksRetried, p.taskResults, p.taskDuration,
		p.queueDepth,
	)

	return p
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func (p *Prometheus) RecordSessionAcquired(reused bool) {
	p.sessionsAcquired.WithLabelValues(boolLabel(reused)).Inc()
}

func (p *Prometheus) RecordSessionCreated(success bool) {
	p.sessionsCreated.WithLabelValues(boolLabel(success)).Inc()
}

func (p *Prometheus) RecordSessionClosed(reason string) {
	p.sessionsClosed.WithLabelValues(reason).Inc()
}

func (p *Prometheus) RecordTaskDispatched(kind string) {
	p.tasksDispatched.WithLabelValues(kind).Inc()
}

func (p *Prometheus) RecordTaskRetried(kind string) {
	p.tasksRetried.WithLabelValues(kind).Inc()
}

func (p *Prometheus) RecordTaskResult(kind string, success bool, duration float64) {
	p.taskResults.WithLabelValues(kind, boolLabel(success)).Inc()
	p.taskDuration.WithLabelValues(kind).Observe(duration)
}

func (p *Prometheus) RecordQueueDepth(depth int) {
	p.queueDepth.Set(float64(depth))
}
