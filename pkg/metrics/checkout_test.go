package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCheckoutMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewCheckoutMetrics(reg)

	metrics.ObserveSettlement("success", 120*time.Millisecond)
	metrics.IncSettled("Lagos")
	metrics.IncFailure("commit")
	metrics.IncAnomaly("missing_product")
	metrics.IncAnomaly("")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "checkout_orders_settled", "delivery_zone", "Lagos"); err != nil {
		t.Fatalf("fetch settled: %v", err)
	} else if got != 1 {
		t.Fatalf("expected settled=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "checkout_settlement_failures", "reason", "commit"); err != nil {
		t.Fatalf("fetch failures: %v", err)
	} else if got != 1 {
		t.Fatalf("expected failures=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "checkout_inventory_anomalies", "kind", "unknown"); err != nil {
		t.Fatalf("fetch anomalies: %v", err)
	} else if got != 1 {
		t.Fatalf("expected unlabeled anomaly normalized to unknown, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "checkout_settlement_duration_seconds", "outcome", "success"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestCheckoutMetricsNilRegistererIsNoop(t *testing.T) {
	metrics := NewCheckoutMetrics(nil)
	metrics.ObserveSettlement("success", time.Second)
	metrics.IncSettled("Lagos")
	metrics.IncFailure("commit")
	metrics.IncAnomaly("zero_stock")
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
