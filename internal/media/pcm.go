// Package media owns the capture and playback hardware boundary: the
// microphone, the video frame source and the speaker. Everything is raw
// PCM or JPEG bytes; encoding to and from the session wire format happens
// elsewhere.
package media

import (
	"math"
	"time"
)

const (
	// CaptureRateHz is the mono PCM rate sent upstream.
	CaptureRateHz = 16000

	// PlaybackRateHz is the mono PCM rate the model speaks at.
	PlaybackRateHz = 24000

	// BlockSamples is the mic block size. At 16 kHz one block is 256 ms.
	BlockSamples = 4096

	bytesPerSample = 2
)

// BlockBytes is the byte length of one mic block.
const BlockBytes = BlockSamples * bytesPerSample

// RMS computes the root-mean-square level of little-endian 16-bit PCM,
// normalized to [0,1]. Used for the input level meter.
func RMS(pcm []byte) float64 {
	n := len(pcm) / bytesPerSample
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		s := int16(pcm[2*i]) | int16(pcm[2*i+1])<<8
		v := float64(s) / 32768
		sum += v * v
	}
	return math.Sqrt(sum / float64(n))
}

// Duration converts a PCM byte count at the given sample rate to wall time.
func Duration(nbytes int, rateHz int) time.Duration {
	if rateHz <= 0 {
		return 0
	}
	samples := nbytes / bytesPerSample
	return time.Duration(samples) * time.Second / time.Duration(rateHz)
}
