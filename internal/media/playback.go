package media

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"
)

// Sink consumes scheduled PCM. Implemented by Speaker; tests substitute a
// recorder.
type Sink interface {
	Play(pcm []byte) error
}

// Scheduler serializes model audio chunks into gapless playback. It keeps a
// single monotonic cursor: each chunk starts at max(cursor, now) and the
// cursor advances by the chunk's duration, so chunks never overlap and
// arrival jitter turns into silence, not distortion.
type Scheduler struct {
	mu       sync.Mutex
	sink     Sink
	cursor   time.Time
	inflight map[int]*time.Timer
	nextID   int

	// now is swappable in tests.
	now func() time.Time
}

// NewScheduler builds a scheduler over the given sink.
func NewScheduler(sink Sink) *Scheduler {
	return &Scheduler{
		sink:     sink,
		inflight: make(map[int]*time.Timer),
		now:      time.Now,
	}
}

// Schedule queues one PCM chunk at PlaybackRateHz and returns its start
// time. The write to the sink is deferred until that moment.
func (s *Scheduler) Schedule(pcm []byte) time.Time {
	d := Duration(len(pcm), PlaybackRateHz)

	s.mu.Lock()
	defer s.mu.Unlock()

	start := s.now()
	if s.cursor.After(start) {
		start = s.cursor
	}
	s.cursor = start.Add(d)

	id := s.nextID
	s.nextID++
	delay := start.Sub(s.now())
	s.inflight[id] = time.AfterFunc(delay, func() {
		_ = s.sink.Play(pcm)
		s.mu.Lock()
		delete(s.inflight, id)
		s.mu.Unlock()
	})
	return start
}

// Pending reports how many chunks are scheduled but not yet played.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inflight)
}

// Flush cancels everything not yet played and rewinds the cursor, for
// barge-in and teardown. Chunks already handed to the sink are unaffected.
func (s *Scheduler) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.inflight {
		t.Stop()
		delete(s.inflight, id)
	}
	s.cursor = time.Time{}
}

// Speaker plays mono s16le PCM at PlaybackRateHz through an ffplay
// subprocess.
type Speaker struct {
	mu    sync.Mutex
	cmd   *exec.Cmd
	stdin io.WriteCloser
}

// OpenSpeaker spawns the playback process.
func OpenSpeaker() (*Speaker, error) {
	if _, err := exec.LookPath("ffplay"); err != nil {
		return nil, errors.New("ffplay is required for audio playback (install ffmpeg/ffplay and ensure it is in PATH)")
	}
	sp := &Speaker{}
	if err := sp.startLocked(); err != nil {
		return nil, err
	}
	return sp, nil
}

func (p *Speaker) startLocked() error {
	p.cmd = exec.Command("ffplay",
		"-nodisp",
		"-autoexit",
		"-loglevel", "error",
		"-f", "s16le",
		"-ar", fmt.Sprintf("%d", PlaybackRateHz),
		"-ac", "1",
		"-i", "pipe:0",
	)
	stdin, err := p.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("open ffplay stdin: %w", err)
	}
	p.cmd.Stdout = io.Discard
	p.cmd.Stderr = io.Discard
	if err := p.cmd.Start(); err != nil {
		return fmt.Errorf("start ffplay: %w", err)
	}
	p.stdin = stdin
	return nil
}

// Play writes one chunk to the playback pipe.
func (p *Speaker) Play(pcm []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stdin == nil {
		return errors.New("ffplay stdin is not initialized")
	}
	_, err := p.stdin.Write(pcm)
	return err
}

// Reset restarts the playback process, discarding buffered audio.
func (p *Speaker) Reset() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cmd != nil && p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
		_ = p.cmd.Wait()
	}
	p.stdin = nil
	return p.startLocked()
}

// Close kills the playback process. Safe on a nil receiver.
func (p *Speaker) Close() error {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cmd != nil && p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
		_ = p.cmd.Wait()
	}
	p.stdin = nil
	return nil
}
