package media

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"runtime"
)

// VideoSource selects what the frame pipeline films.
type VideoSource string

const (
	SourceCamera VideoSource = "camera"
	SourceScreen VideoSource = "screen"
)

// DefaultFrameRate is frames per second sent to the session. Court action
// reads fine at 5; higher rates only burn upstream bandwidth.
const DefaultFrameRate = 5

// FrameSource emits JPEG frames from the camera or the screen through an
// ffmpeg subprocess. Frames are halved in resolution before encoding.
type FrameSource struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
}

// OpenFrames spawns the capture process for the given source at fps.
func OpenFrames(source VideoSource, fps int) (*FrameSource, error) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return nil, errors.New("ffmpeg is required for video capture (install ffmpeg and ensure it is in PATH)")
	}
	if fps <= 0 {
		fps = DefaultFrameRate
	}
	args, err := frameArgs(runtime.GOOS, source, fps)
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
		return nil, fmt.Errorf("start ffmpeg video capture: %w", err)
	}
	return &FrameSource{cmd: cmd, stdout: stdout}, nil
}

func frameArgs(goos string, source VideoSource, fps int) ([]string, error) {
	var input []string
	switch goos {
	case "darwin":
		switch source {
		case SourceScreen:
			input = []string{"-f", "avfoundation", "-capture_cursor", "1", "-i", "1:none"}
		default:
			input = []string{"-f", "avfoundation", "-framerate", "30", "-i", "0:none"}
		}
	case "linux":
		switch source {
		case SourceScreen:
			input = []string{"-f", "x11grab", "-i", ":0.0"}
		default:
			input = []string{"-f", "v4l2", "-i", "/dev/video0"}
		}
	default:
		return nil, fmt.Errorf("video capture is not implemented for %s; supported platforms: darwin, linux", goos)
	}

	args := []string{"-hide_banner", "-loglevel", "error"}
	args = append(args, input...)
	args = append(args,
		"-vf", fmt.Sprintf("fps=%d,scale=iw/2:ih/2", fps),
		"-f", "mjpeg", "-q:v", "5", "-",
	)
	return args, nil
}

var (
	jpegSOI = []byte{0xFF, 0xD8}
	jpegEOI = []byte{0xFF, 0xD9}
)

// Run splits the mjpeg byte stream into individual JPEG frames and hands
// each to fn until the context is cancelled or the process exits. Each
// frame slice is owned by the callee.
func (f *FrameSource) Run(ctx context.Context, fn func(jpeg []byte)) error {
	r := bufio.NewReaderSize(f.stdout, 1<<16)
	var frame bytes.Buffer
	inFrame := false
	window := make([]byte, 0, 2)

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		b, err := r.ReadByte()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				return io.EOF
			}
			return fmt.Errorf("read video stream: %w", err)
		}

		window = append(window, b)
		if len(window) > 2 {
			window = window[1:]
		}

		if !inFrame {
			if bytes.Equal(window, jpegSOI) {
				inFrame = true
				frame.Reset()
				frame.Write(jpegSOI)
			}
			continue
		}

		frame.WriteByte(b)
		if bytes.Equal(window, jpegEOI) {
			out := make([]byte, frame.Len())
			copy(out, frame.Bytes())
			fn(out)
			inFrame = false
			window = window[:0]
		}
	}
}

// Close kills the capture process. Safe on a nil receiver.
func (f *FrameSource) Close() error {
	if f == nil {
		return nil
	}
	if f.cmd != nil && f.cmd.Process != nil {
		_ = f.cmd.Process.Kill()
		_ = f.cmd.Wait()
	}
	return nil
}
