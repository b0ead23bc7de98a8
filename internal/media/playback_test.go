package media

import (
	"sync"
	"testing"
	"time"
)

type recordingSink struct {
	mu     sync.Mutex
	chunks [][]byte
}

func (r *recordingSink) Play(pcm []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chunks = append(r.chunks, pcm)
	return nil
}

func (r *recordingSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.chunks)
}

// pcmOfDuration builds a chunk whose playback length is exactly d.
func pcmOfDuration(d time.Duration) []byte {
	samples := int(d * PlaybackRateHz / time.Second)
	return make([]byte, samples*bytesPerSample)
}

func TestScheduler_GaplessSequentialStarts(t *testing.T) {
	base := time.Date(2026, 3, 1, 19, 30, 0, 0, time.UTC)
	s := NewScheduler(&recordingSink{})
	s.now = func() time.Time { return base }
	defer s.Flush()

	first := s.Schedule(pcmOfDuration(1 * time.Second))
	second := s.Schedule(pcmOfDuration(1500 * time.Millisecond))

	if !first.Equal(base) {
		t.Errorf("first start = %v, want %v", first, base)
	}
	if want := base.Add(1 * time.Second); !second.Equal(want) {
		t.Errorf("second start = %v, want %v (no gap, no overlap)", second, want)
	}

	third := s.Schedule(pcmOfDuration(500 * time.Millisecond))
	if want := base.Add(2500 * time.Millisecond); !third.Equal(want) {
		t.Errorf("third start = %v, want %v", third, want)
	}
}

func TestScheduler_CursorCatchesUpToClock(t *testing.T) {
	base := time.Date(2026, 3, 1, 19, 30, 0, 0, time.UTC)
	clock := base
	s := NewScheduler(&recordingSink{})
	s.now = func() time.Time { return clock }
	defer s.Flush()

	s.Schedule(pcmOfDuration(100 * time.Millisecond))

	// The stream went quiet; the next chunk starts now, not at the stale
	// cursor.
	clock = base.Add(5 * time.Second)
	start := s.Schedule(pcmOfDuration(100 * time.Millisecond))
	if !start.Equal(clock) {
		t.Errorf("start after idle = %v, want %v", start, clock)
	}
}

func TestScheduler_PlaysThroughSink(t *testing.T) {
	sink := &recordingSink{}
	s := NewScheduler(sink)

	chunk := pcmOfDuration(10 * time.Millisecond)
	s.Schedule(chunk)

	deadline := time.Now().Add(2 * time.Second)
	for sink.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(2 * time.Millisecond)
	}
	if sink.count() != 1 {
		t.Fatalf("sink received %d chunks, want 1", sink.count())
	}
	if s.Pending() != 0 {
		t.Errorf("pending = %d after playback, want 0", s.Pending())
	}
}

func TestScheduler_FlushCancelsPending(t *testing.T) {
	sink := &recordingSink{}
	s := NewScheduler(sink)

	// Push the cursor far into the future so nothing plays before Flush.
	s.mu.Lock()
	s.cursor = time.Now().Add(time.Hour)
	s.mu.Unlock()

	s.Schedule(pcmOfDuration(time.Second))
	s.Schedule(pcmOfDuration(time.Second))
	if s.Pending() != 2 {
		t.Fatalf("pending = %d, want 2", s.Pending())
	}

	s.Flush()
	if s.Pending() != 0 {
		t.Errorf("pending after flush = %d, want 0", s.Pending())
	}
	time.Sleep(20 * time.Millisecond)
	if sink.count() != 0 {
		t.Errorf("flushed chunks still played: %d", sink.count())
	}
}
