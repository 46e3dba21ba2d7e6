package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolveLogDir(t *testing.T) {
	tests := []struct {
		configured, exeDir, want string
	}{
		{"/var/log/fairness", "/opt/bin", "/var/log/fairness"},
		{"", "/opt/bin", filepath.Join("/opt/bin", "logs")},
		{"", "", "logs"},
	}
	for _, tt := range tests {
		if got := resolveLogDir(tt.configured, tt.exeDir); got != tt.want {
			t.Errorf("resolveLogDir(%q, %q) = %q, want %q", tt.configured, tt.exeDir, got, tt.want)
		}
	}
}

func TestNewFileWriter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")
	w, err := newFileWriter(dir)
	if err != nil {
		t.Fatalf("newFileWriter failed: %v", err)
	}
	defer w.Close()

	if w.Filename != filepath.Join(dir, LogFileName) {
		t.Errorf("Unexpected log file %s", w.Filename)
	}
	if _, err := w.Write([]byte("hello\n")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, err := os.Stat(w.Filename); err != nil {
		t.Errorf("Expected log file to exist: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, ".write-test")); !os.IsNotExist(err) {
		t.Error("Expected the write probe to be removed")
	}
}

func TestNew_FansOut(t *testing.T) {
	var a, b bytes.Buffer
	logger := New(&a, &b)
	logger.Info().Str("kind", "custodios").Msg("report computed")

	for _, buf := range []*bytes.Buffer{&a, &b} {
		if !strings.Contains(buf.String(), `"kind":"custodios"`) {
			t.Errorf("Expected structured field in output, got %q", buf.String())
		}
	}
}
