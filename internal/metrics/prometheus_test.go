package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counterValue sums the counter samples of family name whose labels include
// every pair in labels.
func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			matched := 0
			for _, lp := range m.GetLabel() {
				if v, ok := labels[lp.GetName()]; ok && v == lp.GetValue() {
					matched++
				}
			}
			if matched == len(labels) {
				total += m.GetCounter().GetValue()
			}
		}
	}
	return total
}

func TestPrometheusCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	p, err := NewPrometheus(reg, "")
	require.NoError(t, err)

	p.RecordStatusRepair("read")
	p.RecordStatusRepair("read")
	p.RecordAssignmentRequest("approved")
	p.RecordOverloadCheck(true)
	p.RecordReconcile(10, 2, 1, 50*time.Millisecond)
	p.RecordEventDropped()

	assert.InDelta(t, 2, counterValue(t, reg, "taskboard_task_status_repairs_total", map[string]string{"source": "read"}), 0)
	assert.InDelta(t, 1, counterValue(t, reg, "taskboard_assignment_requests_total", map[string]string{"action": "approved"}), 0)
	assert.InDelta(t, 1, counterValue(t, reg, "taskboard_assignment_overload_checks_total", map[string]string{"overloaded": "true"}), 0)
	assert.InDelta(t, 10, counterValue(t, reg, "taskboard_reconcile_tasks_total", map[string]string{"result": "scanned"}), 0)
	assert.InDelta(t, 1, counterValue(t, reg, "taskboard_reconcile_runs_total", nil), 0)
	assert.InDelta(t, 1, counterValue(t, reg, "taskboard_events_dropped_total", nil), 0)

	// A second registration on the same registry collides.
	_, err = NewPrometheus(reg, "")
	require.Error(t, err)
}

func TestNopMetrics(t *testing.T) {
	var c Collector = NewNop()
	require.NotPanics(t, func() {
		c.RecordStatusRepair("reconcile")
		c.RecordAssignmentRequest("created")
		c.RecordOverloadCheck(false)
		c.RecordReconcile(0, 0, 0, 0)
		c.RecordEventDropped()
	})
}
