package prommetrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/goliatone/go-sections/internal/adapters/prommetrics"
)

// sample returns the counter or gauge value of name whose labels include
// label=value, or -1 when absent.
func sample(t *testing.T, registry *prometheus.Registry, name, label, value string) float64 {
	t.Helper()
	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			matched := label == ""
			for _, pair := range metric.GetLabel() {
				if pair.GetName() == label && pair.GetValue() == value {
					matched = true
				}
			}
			if !matched {
				continue
			}
			if counter := metric.GetCounter(); counter != nil {
				return counter.GetValue()
			}
			if gauge := metric.GetGauge(); gauge != nil {
				return gauge.GetValue()
			}
			if histogram := metric.GetHistogram(); histogram != nil {
				return float64(histogram.GetSampleCount())
			}
		}
	}
	return -1
}

func TestRecorderCounts(t *testing.T) {
	registry := prometheus.NewRegistry()
	recorder := prommetrics.New(registry, "test")

	recorder.IncrementCatalogReload("success")
	recorder.IncrementCatalogReload("error")
	recorder.IncrementCatalogReload("error")
	recorder.IncrementValidationFailure("hero")
	recorder.IncrementGuardRejection("characters")
	recorder.ObserveDocumentBytes(512)
	recorder.ObserveCommand("sections.section.create", "success", 3*time.Millisecond)

	cases := []struct {
		name, label, value string
		want               float64
	}{
		{"test_catalog_reloads_total", "outcome", "error", 2},
		{"test_catalog_reloads_total", "outcome", "success", 1},
		{"test_validation_failures_total", "template_key", "hero", 1},
		{"test_richtext_guard_rejections_total", "guard", "characters", 1},
		{"test_richtext_document_bytes", "", "", 1},
		{"test_command_duration_seconds", "status", "success", 1},
	}
	for _, tc := range cases {
		if got := sample(t, registry, tc.name, tc.label, tc.value); got != tc.want {
			t.Fatalf("%s{%s=%q}: expected %v, got %v", tc.name, tc.label, tc.value, tc.want, got)
		}
	}
	if sample(t, registry, "test_catalog_last_reload_timestamp_seconds", "", "") <= 0 {
		t.Fatalf("expected last reload timestamp to be set")
	}
}

func TestRecorderDefaultsNamespace(t *testing.T) {
	registry := prometheus.NewRegistry()
	recorder := prommetrics.New(registry, "")
	recorder.IncrementValidationFailure("faq")

	if got := sample(t, registry, "sections_validation_failures_total", "template_key", "faq"); got != 1 {
		t.Fatalf("expected default namespace, got %v", got)
	}
}
