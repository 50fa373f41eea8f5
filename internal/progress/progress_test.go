package progress

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestVerbosePrintsEverything(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewWriter(&buf, true, false, false)
	p.Printf("loading %d", 1)
	p.PersistentPrintf("saved %s", "feed")
	p.Debugf("debug %s", "line")
	p.DebugSincef(time.Now(), "timed")
	_, _ = p.Write([]byte("from log\n"))
	p.Close()

	out := buf.String()
	for _, want := range []string{"loading 1", "saved feed", "Debug: debug line", "Debug Timing", "from log"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output %q does not contain %q", out, want)
		}
	}
}

func TestQuietKeepsPersistentLines(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewWriter(&buf, false, true, false)
	p.Printf("transient")
	p.Debugf("hidden")
	_, _ = p.Write([]byte("log line\n"))
	p.Okf("done %d", 2)
	p.Errorf("failed")

	out := buf.String()
	if strings.Contains(out, "transient") || strings.Contains(out, "hidden") || strings.Contains(out, "log line") {
		t.Fatalf("quiet output leaked: %q", out)
	}
	if !strings.Contains(out, "done 2") || !strings.Contains(out, "failed") {
		t.Fatalf("missing persistent lines: %q", out)
	}
}
