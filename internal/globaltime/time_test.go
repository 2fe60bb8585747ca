package globaltime

import (
	"testing"
	"time"
)

func TestFreezeAndRestore(t *testing.T) {
	pinned := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("IST", 5*3600+1800))
	restore := Freeze(pinned)

	if got := Now(); !got.Equal(pinned) {
		t.Fatalf("unexpected frozen time: %s", got)
	}
	if got := UTC(); got.Location() != time.UTC || !got.Equal(pinned) {
		t.Fatalf("unexpected UTC time: %s", got)
	}
	if got := Since(pinned.Add(-time.Minute)); got != time.Minute {
		t.Fatalf("unexpected elapsed time: %s", got)
	}

	restore()
	if got := Now(); got.Equal(pinned) {
		t.Fatalf("expected clock to move after restore")
	}
}
