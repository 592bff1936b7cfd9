package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements Collector backed by Prometheus.
type PrometheusCollector struct {
	statusRepairs      *prometheus.CounterVec
	assignmentRequests *prometheus.CounterVec
	overloadChecks     *prometheus.CounterVec
	reconcileRuns      prometheus.Counter
	reconcileTasks     *prometheus.CounterVec
	reconcileDuration  prometheus.Histogram
	eventsDropped      prometheus.Counter
}

var _ Collector = (*PrometheusCollector)(nil)

// NewPrometheus registers the collectors on reg (prometheus.DefaultRegisterer
// when nil) under namespace ("taskboard" when empty).
func NewPrometheus(reg prometheus.Registerer, namespace string) (*PrometheusCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "taskboard"
	}
	p := &PrometheusCollector{
		statusRepairs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "task",
			Name:      "status_repairs_total",
			Help:      "Cached task statuses rewritten to match the resolver, by source.",
		}, []string{"source"}),
		assignmentRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "assignment",
			Name:      "requests_total",
			Help:      "Assignment request lifecycle actions.",
		}, []string{"action"}),
		overloadChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "assignment",
			Name:      "overload_checks_total",
			Help:      "Overload classifications by outcome.",
		}, []string{"overloaded"}),
		reconcileRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "runs_total",
			Help:      "Completed reconciliation passes.",
		}),
		reconcileTasks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "tasks_total",
			Help:      "Tasks visited by reconciliation, by result.",
		}, []string{"result"}),
		reconcileDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "duration_seconds",
			Help:      "Duration of reconciliation passes.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
		eventsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "dropped_total",
			Help:      "Events dropped because a subscriber buffer was full.",
		}),
	}
	for _, c := range []prometheus.Collector{
		p.statusRepairs,
		p.assignmentRequests,
		p.overloadChecks,
		p.reconcileRuns,
		p.reconcileTasks,
		p.reconcileDuration,
		p.eventsDropped,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *PrometheusCollector) RecordStatusRepair(source string) {
	p.statusRepairs.WithLabelValues(source).Inc()
}

func (p *PrometheusCollector) RecordAssignmentRequest(action string) {
	p.assignmentRequests.WithLabelValues(action).Inc()
}

func (p *PrometheusCollector) RecordOverloadCheck(overloaded bool) {
	p.overloadChecks.WithLabelValues(strconv.FormatBool(overloaded)).Inc()
}

func (p *PrometheusCollector) RecordReconcile(scanned, repaired, failed int, duration time.Duration) {
	p.reconcileRuns.Inc()
	p.reconcileTasks.WithLabelValues("scanned").Add(float64(scanned))
	p.reconcileTasks.WithLabelValues("repaired").Add(float64(repaired))
	p.reconcileTasks.WithLabelValues("failed").Add(float64(failed))
	p.reconcileDuration.Observe(duration.Seconds())
}

func (p *PrometheusCollector) RecordEventDropped() {
	p.eventsDropped.Inc()
}
