package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing manifest: %v", err)
	}
	return path
}

// isolatedConfig returns a -config flag pointing at an empty config file, so
// tests run on defaults and never pick up the developer's own ~/.pipeline
// settings.
func isolatedConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestRunReportsDuplicateProducts(t *testing.T) {
	manifest := writeManifest(t, `
tasks:
  - name: first
    product:
      file: out/data.csv
  - name: second
    product:
      file: out/data.csv
`)

	var out bytes.Buffer
	err := run(context.Background(), []string{
		"-pipeline", manifest,
		"-config", isolatedConfig(t),
	}, &out)
	if err == nil {
		t.Fatal("expected duplicate product error")
	}
	for _, want := range []string{"first", "second", "out/data.csv"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err.Error(), want)
		}
	}
}

func TestRunCleanPipeline(t *testing.T) {
	manifest := writeManifest(t, `
tasks:
  - name: raw
    product:
      file: data/raw.csv
  - name: clean
    upstream: [raw]
    product:
      file: data/clean.csv
`)

	var out bytes.Buffer
	err := run(context.Background(), []string{
		"-pipeline", manifest,
		"-config", isolatedConfig(t),
	}, &out)
	if err != nil {
		t.Fatalf("run() error: %v", err)
	}
	if !strings.Contains(out.String(), "unique across 2 tasks") {
		t.Errorf("output = %q", out.String())
	}
}

func TestRunPrintsPrefixes(t *testing.T) {
	base := t.TempDir()
	manifest := writeManifest(t, `
tasks:
  - name: raw
    product:
      file: `+filepath.Join(base, "data", "raw.csv")+`
  - name: report
    upstream: [raw]
    product:
      file: `+filepath.Join(base, "out", "report.html")+`
`)

	var out bytes.Buffer
	err := run(context.Background(), []string{
		"-pipeline", manifest,
		"-config", isolatedConfig(t),
		"-prefixes",
		"-base-dir", base,
	}, &out)
	if err != nil {
		t.Fatalf("run() error: %v", err)
	}
	for _, want := range []string{"data", "out"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output %q missing prefix %q", out.String(), want)
		}
	}
}

func TestRunSyncWithoutBucketFails(t *testing.T) {
	manifest := writeManifest(t, `
tasks:
  - name: raw
    product:
      file: data/raw.csv
`)

	var out bytes.Buffer
	err := run(context.Background(), []string{
		"-pipeline", manifest,
		"-config", isolatedConfig(t),
		"-sync",
	}, &out)
	if err == nil || !strings.Contains(err.Error(), "bucket") {
		t.Errorf("expected bucket configuration error, got %v", err)
	}
}

func TestRunRejectsMissingConfigFlag(t *testing.T) {
	manifest := writeManifest(t, `
tasks:
  - name: raw
    product:
      file: data/raw.csv
`)

	missing := filepath.Join(t.TempDir(), "typo.json")
	var out bytes.Buffer
	err := run(context.Background(), []string{
		"-pipeline", manifest,
		"-config", missing,
	}, &out)
	if err == nil || !strings.Contains(err.Error(), missing) {
		t.Errorf("expected error naming the missing config file, got %v", err)
	}
}

func TestRunMissingManifest(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), []string{
		"-pipeline", filepath.Join(t.TempDir(), "nope.yaml"),
		"-config", isolatedConfig(t),
	}, &out)
	if err == nil {
		t.Error("expected error for missing manifest")
	}
}
