package maintenance

import (
	"sync"
	"testing"
	"time"
)

type fakePurger struct {
	mu      sync.Mutex
	cutoffs []int64
	purged  int64
	err     error
}

func (f *fakePurger) PurgeCancelledBefore(cutoffMillis int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cutoffs = append(f.cutoffs, cutoffMillis)
	return f.purged, f.err
}

func (f *fakePurger) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cutoffs)
}

func TestSweepUsesRetentionCutoff(t *testing.T) {
	purger := &fakePurger{purged: 3}
	s := NewSweeper(purger, 30)

	before := time.Now().UTC().Add(-30 * 24 * time.Hour).UnixMilli()
	s.sweep()
	after := time.Now().UTC().Add(-30 * 24 * time.Hour).UnixMilli()

	if len(purger.cutoffs) != 1 {
		t.Fatalf("expected one purge call, got %d", len(purger.cutoffs))
	}
	cutoff := purger.cutoffs[0]
	if cutoff < before || cutoff > after {
		t.Errorf("cutoff %d outside expected range [%d, %d]", cutoff, before, after)
	}
}

func TestStartRunsAnImmediateSweep(t *testing.T) {
	purger := &fakePurger{}
	s := NewSweeper(purger, 7)

	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer s.Stop()

	deadline := time.After(time.Second)
	for purger.calls() == 0 {
		select {
		case <-deadline:
			t.Fatal("no sweep ran after Start")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
