package interpreter

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"sicp/interpreter-go/pkg/driver"
	"sicp/interpreter-go/pkg/runtime"
)

// fixtureManifest describes one directory under testdata/fixtures.
type fixtureManifest struct {
	Description string   `json:"description"`
	Entry       string   `json:"entry"`
	Setup       []string `json:"setup"`
	Expect      struct {
		Result *string  `json:"result"`
		Values []string `json:"values"`
		Errors []string `json:"errors"`
		Kind   string   `json:"kind"`
	} `json:"expect"`
}

func TestFixtures(t *testing.T) {
	root := filepath.Join("testdata", "fixtures")
	walkFixtures(t, root, func(dir string) {
		rel, _ := filepath.Rel(root, dir)
		t.Run(filepath.ToSlash(rel), func(t *testing.T) {
			runFixture(t, dir)
		})
	})
}

func walkFixtures(t *testing.T, dir string, fn func(string)) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir %s: %v", dir, err)
	}
	for _, entry := range entries {
		if entry.Type().IsRegular() && entry.Name() == "manifest.json" {
			fn(dir)
		}
	}
	for _, entry := range entries {
		if entry.IsDir() {
			walkFixtures(t, filepath.Join(dir, entry.Name()), fn)
		}
	}
}

func readFixtureManifest(t *testing.T, dir string) fixtureManifest {
	t.Helper()
	manifestPath := filepath.Join(dir, "manifest.json")
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		t.Fatalf("read manifest %s: %v", manifestPath, err)
	}
	var manifest fixtureManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		t.Fatalf("parse manifest %s: %v", manifestPath, err)
	}
	return manifest
}

func runFixture(t *testing.T, dir string) {
	t.Helper()
	manifest := readFixtureManifest(t, dir)
	entry := manifest.Entry
	if entry == "" {
		entry = "main.scm"
	}
	var files []string
	for _, setup := range manifest.Setup {
		files = append(files, filepath.Join(dir, setup))
	}
	files = append(files, filepath.Join(dir, entry))

	program, err := driver.NewLoader("").LoadFiles(files...)
	if err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	interp, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var values []string
	result, err := interp.EvaluateProgram(program, func(v runtime.Expression) {
		if v.Kind() != runtime.KindVoid {
			values = append(values, v.String())
		}
	})

	if len(manifest.Expect.Errors) > 0 {
		if err == nil {
			t.Fatalf("expected evaluation error")
		}
		var srcErr *SourceError
		msg := err.Error()
		if errors.As(err, &srcErr) {
			msg = srcErr.Err.Error()
		}
		if !contains(manifest.Expect.Errors, msg) {
			t.Fatalf("expected error in %v, got %s", manifest.Expect.Errors, msg)
		}
		return
	}
	if err != nil {
		t.Fatalf("evaluation error: %v", err)
	}
	if manifest.Expect.Result != nil && result.String() != *manifest.Expect.Result {
		t.Fatalf("expected result %q, got %q", *manifest.Expect.Result, result.String())
	}
	if manifest.Expect.Kind != "" && result.Kind().String() != manifest.Expect.Kind {
		t.Fatalf("expected result kind %s, got %s", manifest.Expect.Kind, result.Kind())
	}
	if manifest.Expect.Values != nil && !equalStrings(values, manifest.Expect.Values) {
		t.Fatalf("expected values %v, got %v", manifest.Expect.Values, values)
	}
}

func contains(list []string, target string) bool {
	for _, item := range list {
		if item == target {
			return true
		}
	}
	return false
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
