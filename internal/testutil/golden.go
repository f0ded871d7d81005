package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// GoldenString compares got with testdata/<name>.golden.
// With GOLDEN_UPDATE set, the golden file is rewritten instead.
func GoldenString(t *testing.T, name string, got string) {
	t.Helper()

	path := filepath.Join("testdata", name+".golden")
	if os.Getenv("GOLDEN_UPDATE") != "" {
		if err := os.MkdirAll("testdata", 0755); err != nil {
			t.Fatalf("failed to create testdata dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(got), 0644); err != nil {
			t.Fatalf("failed to update golden file: %v", err)
		}
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read golden file %s: %v\nGot:\n%s", path, err, got)
	}
	want := string(data)
	if got == want {
		return
	}

	wantLines := strings.Split(want, "\n")
	gotLines := strings.Split(got, "\n")
	for i := 0; i < len(wantLines) || i < len(gotLines); i++ {
		var w, g string
		if i < len(wantLines) {
			w = wantLines[i]
		}
		if i < len(gotLines) {
			g = gotLines[i]
		}
		if w != g {
			t.Errorf("output mismatch for %s at line %d\nwant: %q\ngot:  %q\n\nWant:\n%s\nGot:\n%s", name, i+1, w, g, want, got)
			return
		}
	}
	t.Errorf("output mismatch for %s\nWant:\n%s\nGot:\n%s", name, want, got)
}
