package debug

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogWritesCategoryLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "debug.log")
	if err := Enable(path); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(Disable)

	Log("grid", "state %s -> %s", "idle", "drag")
	for i := 0; i < 4; i++ {
		LogEvery(2, "move", "pointer at %d", i)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if !strings.Contains(out, "state idle -> drag") {
		t.Errorf("missing grid line in:\n%s", out)
	}
	if got := strings.Count(out, "pointer at"); got != 2 {
		t.Errorf("LogEvery(2) wrote %d lines, want 2", got)
	}
}

func TestLogDisabledIsNoop(t *testing.T) {
	Disable()
	if Enabled() {
		t.Fatal("expected disabled")
	}
	Log("grid", "nothing %d", 1)
	LogEvery(1, "grid", "nothing")
}
