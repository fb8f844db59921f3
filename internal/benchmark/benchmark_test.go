package benchmark

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/tulznet/tulz/internal/catalog"
	"github.com/tulznet/tulz/internal/search"
)

func testEntries() []catalog.Entry {
	return []catalog.Entry{
		{ID: "t1", Type: catalog.EntryTool, Title: "JSON Formatter", Description: "Format JSON", Tags: []string{"json"}},
		{ID: "t2", Type: catalog.EntryTool, Title: "Image Compressor", Description: "Shrink images", Tags: []string{"image"}},
		{ID: "t3", Type: catalog.EntryTool, Title: "Password Generator", Description: "Strong passwords", Tags: []string{"security"}},
	}
}

func TestRunBothBackends(t *testing.T) {
	backends := []string{search.BackendBleve, search.BackendSubsequence}
	report, err := Run(testEntries(), []string{"json", "image", "nothing-matches"}, backends, search.DefaultConfig(), 3)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.Entries != 3 || report.Iterations != 3 {
		t.Errorf("unexpected report header: %+v", report)
	}
	if len(report.Results) != 2 {
		t.Fatalf("expected 2 backend results, got %d", len(report.Results))
	}

	for i, res := range report.Results {
		if res.Backend != backends[i] {
			t.Errorf("result %d: expected backend %s, got %s", i, backends[i], res.Backend)
		}
		if res.Runs != 9 {
			t.Errorf("%s: expected 9 runs, got %d", res.Backend, res.Runs)
		}
		if res.ZeroHit != 1 {
			t.Errorf("%s: expected 1 zero-hit query, got %d", res.Backend, res.ZeroHit)
		}
		if res.P50 > res.P95 || res.P95 > res.Max {
			t.Errorf("%s: percentiles out of order: %+v", res.Backend, res)
		}
	}
}

func TestRunUnknownBackend(t *testing.T) {
	if _, err := Run(testEntries(), nil, []string{"trigram"}, search.DefaultConfig(), 1); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestRunDefaultsQueriesAndIterations(t *testing.T) {
	report, err := Run(testEntries(), nil, []string{search.BackendBleve}, search.DefaultConfig(), 0)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Iterations != DefaultIterations {
		t.Errorf("expected default iterations, got %d", report.Iterations)
	}
	if report.Results[0].Queries != len(DefaultQueries(testEntries())) {
		t.Errorf("expected derived queries, got %d", report.Results[0].Queries)
	}
}

func TestDefaultQueries(t *testing.T) {
	got := DefaultQueries(testEntries())
	want := []string{"json", "image", "ima", "iamge", "password", "pas", "paswsord"}

	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("query %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestSummarize(t *testing.T) {
	var samples []time.Duration
	for i := 1; i <= 20; i++ {
		samples = append(samples, time.Duration(i)*time.Millisecond)
	}

	mean, p50, p95, max := summarize(samples)
	if mean != 10500*time.Microsecond {
		t.Errorf("mean = %v", mean)
	}
	if p50 != 10*time.Millisecond {
		t.Errorf("p50 = %v", p50)
	}
	if p95 != 19*time.Millisecond {
		t.Errorf("p95 = %v", p95)
	}
	if max != 20*time.Millisecond {
		t.Errorf("max = %v", max)
	}

	if m, _, _, _ := summarize(nil); m != 0 {
		t.Error("empty samples should summarize to zero")
	}
}

func TestReportJSON(t *testing.T) {
	report := &Report{Entries: 1, Iterations: 2, Results: []BackendResult{{Backend: "bleve"}}}
	data, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if _, ok := decoded["results"]; !ok {
		t.Error("missing results field")
	}
}
