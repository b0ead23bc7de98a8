package media

import (
	"encoding/binary"
	"math"
	"testing"
	"time"
)

func TestRMS(t *testing.T) {
	if got := RMS(nil); got != 0 {
		t.Errorf("RMS(nil) = %v, want 0", got)
	}

	silence := make([]byte, BlockBytes)
	if got := RMS(silence); got != 0 {
		t.Errorf("RMS(silence) = %v, want 0", got)
	}

	// A constant full-scale signal has RMS 1 (within float tolerance).
	full := make([]byte, 1024)
	fullScale := int16(-32768)
	for i := 0; i < len(full); i += 2 {
		binary.LittleEndian.PutUint16(full[i:], uint16(fullScale))
	}
	if got := RMS(full); math.Abs(got-1) > 1e-9 {
		t.Errorf("RMS(full scale) = %v, want 1", got)
	}

	// Half scale lands at 0.5.
	half := make([]byte, 1024)
	for i := 0; i < len(half); i += 2 {
		binary.LittleEndian.PutUint16(half[i:], uint16(int16(16384)))
	}
	if got := RMS(half); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("RMS(half scale) = %v, want 0.5", got)
	}
}

func TestDuration(t *testing.T) {
	// One second of 24 kHz mono s16le is 48000 bytes.
	if got := Duration(48000, PlaybackRateHz); got != time.Second {
		t.Errorf("Duration(48000, 24k) = %v, want 1s", got)
	}
	if got := Duration(BlockBytes, CaptureRateHz); got != 256*time.Millisecond {
		t.Errorf("Duration(block, 16k) = %v, want 256ms", got)
	}
	if got := Duration(100, 0); got != 0 {
		t.Errorf("Duration with zero rate = %v, want 0", got)
	}
}
