package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNoOpNeverPanics(t *testing.T) {
	c := NoOp()
	c.RecordSessionAcquired(true)
	c.RecordSessionCreated(false)
	c.RecordSessionClosed("idle_timeout")
	c.RecordTaskDispatched("UPLOAD")
	c.RecordTaskRetried("UPLOAD")
	c.RecordTaskResult("UPLOAD", true, 1.5)
	c.RecordQueueDepth(4)
}

func TestPrometheusRecordsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg)

	p.RecordSessionAcquired(true)
	p.RecordSessionAcquired(false)
	p.RecordTaskResult("UPLOAD", true, 0.5)
	p.RecordQueueDepth(7)

	metricFamilies, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}

	found := map[string]bool{}
	for _, mf := range metricFamilies {
		found[mf.GetName()] = true
	}

	for _, want := range []string{
		"ftpclient_pool_sessions_acquired_total",
		"ftpclient_scheduler_task_results_total",
		"ftpclient_scheduler_queue_depth",
	} {
		if !found[want] {
			t.Errorf("missing metric family %q", want)
		}
	}
}

func TestBoolLabel(t *testing.T) {
	if boolLabel(true) != "true" {
		t.Errorf("boolLabel(true) = %q", boolLabel(true))
	}
	if boolLabel(false) != "false" {
		t.Errorf("boolLabel(false) = %q", boolLabel(false))
	}
}
