package metrics

import "time"

// NopMetrics discards everything.
type NopMetrics struct{}

var _ Collector = (*NopMetrics)(nil)

func NewNop() *NopMetrics {
	return &NopMetrics{}
}

func (n *NopMetrics) RecordStatusRepair(string) {}

func (n *NopMetrics) RecordAssignmentRequest(string) {}

func (n *NopMetrics) RecordOverloadCheck(bool) {}

func (n *NopMetrics) RecordReconcile(int, int, int, time.Duration) {}

func (n *NopMetrics) RecordEventDropped() {}
