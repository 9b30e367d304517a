package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveSweep(t *testing.T) {
	before := testutil.ToFloat64(deadlineNotifications)
	sweepsBefore := testutil.ToFloat64(deadlineSweeps)
	ObserveSweep(3, 1700000000)
	if got := testutil.ToFloat64(deadlineNotifications) - before; got != 3 {
		t.Fatalf("expected 3 notifications, got %v", got)
	}
	if got := testutil.ToFloat64(deadlineSweeps) - sweepsBefore; got != 1 {
		t.Fatalf("expected one sweep, got %v", got)
	}
	if got := testutil.ToFloat64(lastSweep); got != 1700000000 {
		t.Fatalf("unexpected last sweep %v", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	ObserveFallback("users", "decode")
	path := filepath.Join(t.TempDir(), "taskdesk.prom")
	if err := WriteTextfile(path); err != nil {
		t.Fatalf("write textfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	if !strings.Contains(string(data), `taskdesk_store_fallbacks_total{key="users",reason="decode"}`) {
		t.Fatalf("fallback series missing:\n%s", data)
	}
}
