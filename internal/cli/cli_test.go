package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tulznet/tulz/internal/catalog"
	"github.com/tulznet/tulz/internal/storage"
)

// isolateHome points HOME at a temp dir so config, history and exports
// never touch the real home directory.
func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("TULZ_LOG_LEVEL", "error")
	return home
}

func executeCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func toolIDs(tools []catalog.ToolRecord) []string {
	ids := make([]string, len(tools))
	for i, t := range tools {
		ids[i] = t.ID
	}
	return ids
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRootCommandTree(t *testing.T) {
	root := NewRootCmd()

	for _, name := range []string{"search", "tools", "recent", "history", "export-index", "serve", "benchmark", "config", "version"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
	if root.PersistentFlags().Lookup(ConfigFlag) == nil {
		t.Error("persistent --config flag not registered")
	}
}

func TestSearchCommandJSON(t *testing.T) {
	home := isolateHome(t)

	out, err := executeCmd(t, "search", "json", "--json")
	if err != nil {
		t.Fatalf("search failed: %v\n%s", err, out)
	}

	var res searchOutput
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if res.Query != "json" {
		t.Errorf("expected query json, got %q", res.Query)
	}
	if len(res.Tools) == 0 || res.Tools[0].ID != "json-formatter" {
		t.Errorf("expected json-formatter first, got %v", toolIDs(res.Tools))
	}
	if res.URL != "search=json" {
		t.Errorf("unexpected URL %q", res.URL)
	}

	// The search was recorded in the history database
	if _, err := os.Stat(filepath.Join(home, ".tulz", "history.db")); err != nil {
		t.Errorf("history database not created: %v", err)
	}

	out, err = executeCmd(t, "recent", "--json")
	if err != nil {
		t.Fatalf("recent failed: %v", err)
	}
	var recent []string
	if err := json.Unmarshal([]byte(out), &recent); err != nil {
		t.Fatalf("recent output is not JSON: %v", err)
	}
	if !equalStrings(recent, []string{"json"}) {
		t.Errorf("expected recent [json], got %v", recent)
	}

	out, err = executeCmd(t, "history", "stats", "--json")
	if err != nil {
		t.Fatalf("history stats failed: %v", err)
	}
	var stats storage.SearchStats
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("stats output is not JSON: %v", err)
	}
	if stats.Total != 1 || stats.DistinctQuery != 1 {
		t.Errorf("expected one recorded search, got %+v", stats)
	}
}

func TestSearchCommandFilters(t *testing.T) {
	isolateHome(t)

	out, err := executeCmd(t, "search", "--category", "image tools", "--sort", "a-z", "--json", "--no-history")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	var res searchOutput
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}

	want := []string{"image-compressor", "image-resizer", "image-to-text"}
	if got := toolIDs(res.Tools); !equalStrings(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if res.URL != "category=Image+Tools&sort=a-z" {
		t.Errorf("unexpected URL %q", res.URL)
	}

	out, _ = executeCmd(t, "recent", "list")
	if !strings.Contains(out, "No recent searches") {
		t.Errorf("--no-history should not record, got %q", out)
	}
}

func TestSearchCommandTextOutput(t *testing.T) {
	isolateHome(t)

	out, err := executeCmd(t, "search", "pdf", "--no-history")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	for _, want := range []string{"PDF Merger", "PDF Metadata Editor", "Link: /tools?search=pdf"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	out, err = executeCmd(t, "search", "zzzzqqqq", "--no-history")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if !strings.Contains(out, "No tools found") {
		t.Errorf("expected empty state message, got:\n%s", out)
	}
}

func TestSearchCommandRejectsBadFlags(t *testing.T) {
	isolateHome(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"sort", []string{"search", "--sort", "sideways"}, "unknown sort order"},
		{"category", []string{"search", "--category", "Video Tools"}, "unknown category"},
		{"limit", []string{"search", "x", "--limit", "-1"}, "--limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeCmd(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestToolsCommand(t *testing.T) {
	isolateHome(t)

	out, err := executeCmd(t, "tools", "--features", "new", "--sort", "a-z", "--json")
	if err != nil {
		t.Fatalf("tools failed: %v", err)
	}

	var tools []catalog.ToolRecord
	if err := json.Unmarshal([]byte(out), &tools); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	want := []string{"ai-paraphraser", "ai-summarizer", "htaccess-generator", "image-to-text", "text-to-speech"}
	if got := toolIDs(tools); !equalStrings(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	out, err = executeCmd(t, "tools")
	if err != nil {
		t.Fatalf("tools failed: %v", err)
	}
	cat, _ := catalog.Default()
	if !strings.Contains(out, "Tools (") || strings.Count(out, "\n") < cat.Len() {
		t.Errorf("expected every tool listed, got:\n%s", out)
	}
}

func TestRecentClear(t *testing.T) {
	isolateHome(t)

	if _, err := executeCmd(t, "search", "regex"); err != nil {
		t.Fatalf("search failed: %v", err)
	}

	out, err := executeCmd(t, "recent", "clear")
	if err != nil {
		t.Fatalf("recent clear failed: %v", err)
	}
	if !strings.Contains(out, "cleared") {
		t.Errorf("unexpected output %q", out)
	}

	out, _ = executeCmd(t, "recent", "--json")
	if strings.TrimSpace(out) != "[]" {
		t.Errorf("expected empty list, got %q", out)
	}
}

func TestHistoryCleanup(t *testing.T) {
	isolateHome(t)

	out, err := executeCmd(t, "history", "cleanup", "--retention", "30")
	if err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}
	if !strings.Contains(out, "30 days") {
		t.Errorf("unexpected output %q", out)
	}

	if _, err := executeCmd(t, "history", "stats", "--days", "0"); err == nil {
		t.Error("expected error for non-positive --days")
	}
}

func TestConfigInitAndShow(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "tulz.json")

	out, err := executeCmd(t, "config", "init", "--config", path)
	if err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if !strings.Contains(out, path) {
		t.Errorf("expected path in output, got %q", out)
	}

	if _, err := executeCmd(t, "config", "init", "--config", path); err == nil {
		t.Error("second init without --force should fail")
	}
	if _, err := executeCmd(t, "config", "init", "--config", path, "--force"); err != nil {
		t.Errorf("init --force failed: %v", err)
	}
	if _, err := os.Stat(path + ".bak"); err != nil {
		t.Errorf("expected backup after --force: %v", err)
	}

	out, err = executeCmd(t, "config", "show", "--config", path)
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	if !strings.Contains(out, `"debounceMs": 300`) {
		t.Errorf("unexpected config output:\n%s", out)
	}
}

func TestConfigShowMissingExplicitFile(t *testing.T) {
	isolateHome(t)

	_, err := executeCmd(t, "config", "show", "--config", filepath.Join(t.TempDir(), "missing.json"))
	if err == nil || !strings.Contains(err.Error(), "config file not found") {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestBenchmarkCommand(t *testing.T) {
	isolateHome(t)

	out, err := executeCmd(t, "benchmark", "-n", "2", "--query", "json", "--query", "imgae", "--json")
	if err != nil {
		t.Fatalf("benchmark failed: %v", err)
	}

	var report struct {
		Iterations int `json:"iterations"`
		Results    []struct {
			Backend string `json:"backend"`
			Runs    int    `json:"runs"`
		} `json:"results"`
	}
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if report.Iterations != 2 || len(report.Results) != 2 {
		t.Fatalf("unexpected report: %+v", report)
	}
	for _, r := range report.Results {
		if r.Runs != 4 {
			t.Errorf("%s: expected 4 runs, got %d", r.Backend, r.Runs)
		}
	}

	if _, err := executeCmd(t, "benchmark", "--backend", "trigram"); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := executeCmd(t, "version", "--json")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}

	var info map[string]string
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if info["version"] == "" || info["go_version"] == "" {
		t.Errorf("incomplete version info: %v", info)
	}
}

func TestServeCommand(t *testing.T) {
	isolateHome(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to reserve port: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd := NewRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetArgs([]string{"serve", "--addr", addr})

	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	ready := false
	for deadline := time.Now().Add(5 * time.Second); time.Now().Before(deadline); time.Sleep(25 * time.Millisecond) {
		resp, err := http.Get("http://" + addr + "/health")
		if err != nil {
			continue
		}
		var health struct {
			IndexReady bool `json:"index_ready"`
		}
		json.NewDecoder(resp.Body).Decode(&health)
		resp.Body.Close()
		if health.IndexReady {
			ready = true
			break
		}
	}
	if !ready {
		t.Fatal("server never reported a ready index")
	}

	resp, err := http.Get("http://" + addr + "/api/search?search=uuid")
	if err != nil {
		t.Fatalf("search request failed: %v", err)
	}
	var res struct {
		Tools []catalog.ToolRecord `json:"tools"`
	}
	json.NewDecoder(resp.Body).Decode(&res)
	resp.Body.Close()
	if len(res.Tools) == 0 || res.Tools[0].ID != "uuid-generator" {
		t.Errorf("expected uuid-generator first, got %v", toolIDs(res.Tools))
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("serve returned error: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not shut down")
	}
}
