package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"runtime"
)

// MicCapture reads mono s16le PCM from the default microphone through an
// ffmpeg subprocess.
type MicCapture struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
}

// OpenMic spawns the capture process. Failing to acquire the device is
// surfaced here, before any session work begins.
func OpenMic() (*MicCapture, error) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return nil, errors.New("ffmpeg is required for mic capture (install ffmpeg and ensure it is in PATH)")
	}
	args, err := micArgs(runtime.GOOS)
	if err != nil {
		return nil, err
	}
	cmd := exec.Command("ffmpeg", args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("open ffmpeg stdout: %w", err)
	}
	cmd.Stderr = io.Discard
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg mic capture: %w", err)
	}
	return &MicCapture{cmd: cmd, stdout: stdout}, nil
}

func micArgs(goos string) ([]string, error) {
	switch goos {
	case "darwin":
		return []string{
			"-hide_banner", "-loglevel", "error",
			"-f", "avfoundation", "-i", ":0",
			"-ac", "1", "-ar", fmt.Sprintf("%d", CaptureRateHz),
			"-f", "s16le", "-",
		}, nil
	case "linux":
		return []string{
			"-hide_banner", "-loglevel", "error",
			"-f", "pulse", "-i", "default",
			"-ac", "1", "-ar", fmt.Sprintf("%d", CaptureRateHz),
			"-f", "s16le", "-",
		}, nil
	default:
		return nil, fmt.Errorf("mic capture is not implemented for %s; supported platforms: darwin, linux", goos)
	}
}

// Run reads fixed-size PCM blocks and hands each to fn along with its RMS
// level until the context is cancelled or the capture process exits. The
// slice passed to fn is reused between calls.
func (m *MicCapture) Run(ctx context.Context, fn func(pcm []byte, level float64)) error {
	buf := make([]byte, BlockBytes)
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		n, err := io.ReadFull(m.stdout, buf)
		if n > 0 {
			fn(buf[:n], RMS(buf[:n]))
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return io.EOF
			}
			return fmt.Errorf("read mic block: %w", err)
		}
	}
}

// Close kills the capture process. Safe on a nil receiver so teardown can
// run against subsystems that never started.
func (m *MicCapture) Close() error {
	if m == nil {
		return nil
	}
	if m.cmd != nil && m.cmd.Process != nil {
		_ = m.cmd.Process.Kill()
		_ = m.cmd.Wait()
	}
	return nil
}
