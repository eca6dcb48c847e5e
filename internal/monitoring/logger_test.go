package monitoring

import (
	"fmt"
	"testing"
)

func TestSetLogger_Capture(t *testing.T) {
	original := Logf
	t.Cleanup(func() { Logf = original })

	var got []string
	SetLogger(func(format string, v ...interface{}) {
		got = append(got, fmt.Sprintf(format, v...))
	})
	Logf("geo: fetch %s: status %d", "counties", 502)

	if len(got) != 1 || got[0] != "geo: fetch counties: status 502" {
		t.Errorf("captured %q", got)
	}
}

func TestSetLogger_NilMutes(t *testing.T) {
	original := Logf
	t.Cleanup(func() { Logf = original })

	calls := 0
	SetLogger(func(string, ...interface{}) { calls++ })
	SetLogger(nil)
	Logf("dropped")

	if calls != 0 {
		t.Errorf("expected muted logger, previous logger called %d times", calls)
	}
	if Logf == nil {
		t.Error("SetLogger(nil) must leave a callable logger")
	}
}
