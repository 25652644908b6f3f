package extract

import (
	"strings"
	"testing"
)

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("got %q", got)
	}
	got := truncate(strings.Repeat("e", 20), 8)
	if !strings.HasPrefix(got, "eeeeeeee") || !strings.Contains(got, "+12 bytes") {
		t.Errorf("got %q", got)
	}
}
