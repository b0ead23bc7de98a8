package session

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"

	"github.com/courtside-ai/courtside/internal/game"
	"github.com/courtside-ai/courtside/internal/media"
)

// ConnState is the connectivity lifecycle of the live session, distinct
// from the game status.
type ConnState string

const (
	StateDisconnected ConnState = "DISCONNECTED"
	StateConnecting   ConnState = "CONNECTING"
	StateConnected    ConnState = "CONNECTED"
)

// ErrSessionActive is returned by Start while a session is connecting or
// connected.
var ErrSessionActive = errors.New("session already active")

// micSource, frameSource and speaker abstract the hardware handles so the
// manager can be exercised without devices.
type micSource interface {
	Run(ctx context.Context, fn func(pcm []byte, level float64)) error
	Close() error
}

type frameSource interface {
	Run(ctx context.Context, fn func(jpeg []byte)) error
	Close() error
}

type speaker interface {
	media.Sink
	Close() error
}

// Manager owns the live session and its media handles for their whole
// lifetime. One session at a time; teardown is idempotent and reachable
// from every failure path.
type Manager struct {
	dialer      Dialer
	store       *game.Store
	dispatcher  *Dispatcher
	logger      *slog.Logger
	videoSource media.VideoSource
	frameRate   int

	openMic     func() (micSource, error)
	openFrames  func(media.VideoSource, int) (frameSource, error)
	openSpeaker func() (speaker, error)

	mu      sync.Mutex
	state   ConnState
	current *liveSession

	level     atomic.Uint64 // float64 bits of the latest mic RMS
	frameMu   sync.Mutex
	lastFrame []byte
}

// ManagerConfig carries the manager's wiring.
type ManagerConfig struct {
	Dialer      Dialer
	Store       *game.Store
	Logger      *slog.Logger
	VideoSource media.VideoSource
	FrameRate   int
}

// NewManager builds a manager bound to real capture and playback devices.
func NewManager(cfg ManagerConfig) *Manager {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		dialer:      cfg.Dialer,
		store:       cfg.Store,
		dispatcher:  NewDispatcher(cfg.Store, logger),
		logger:      logger,
		videoSource: cfg.VideoSource,
		frameRate:   cfg.FrameRate,
		state:       StateDisconnected,
	}
	m.openMic = func() (micSource, error) { return media.OpenMic() }
	m.openFrames = func(src media.VideoSource, fps int) (frameSource, error) { return media.OpenFrames(src, fps) }
	m.openSpeaker = func() (speaker, error) { return media.OpenSpeaker() }
	return m
}

// liveSession bundles everything torn down together.
type liveSession struct {
	cancel    context.CancelFunc
	stream    Stream
	mic       micSource
	frames    frameSource
	speaker   speaker
	scheduler *media.Scheduler
	teardown  sync.Once
}

// State reports the connectivity state.
func (m *Manager) State() ConnState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Level is the most recent mic RMS, for the input meter.
func (m *Manager) Level() float64 {
	return math.Float64frombits(m.level.Load())
}

// LastFrame returns a copy of the most recent captured frame, or nil before
// the first frame arrives. Feeds the deep-analysis snapshot.
func (m *Manager) LastFrame() []byte {
	m.frameMu.Lock()
	defer m.frameMu.Unlock()
	return append([]byte(nil), m.lastFrame...)
}

// Start acquires every device first, then dials. A failure at any point
// releases whatever was acquired and leaves no partial session behind. ctx
// bounds only the dial; the running session lives until Stop or transport
// failure.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.state != StateDisconnected {
		m.mu.Unlock()
		return ErrSessionActive
	}
	m.state = StateConnecting
	m.mu.Unlock()

	abort := func(err error, what string) error {
		m.logger.Error("session start failed", "stage", what, "error", err)
		m.store.AddLog("Failed to access inputs or connect to API.", game.LogInfo)
		m.mu.Lock()
		m.state = StateDisconnected
		m.mu.Unlock()
		return err
	}

	mic, err := m.openMic()
	if err != nil {
		return abort(err, "mic")
	}
	frames, err := m.openFrames(m.videoSource, m.frameRate)
	if err != nil {
		mic.Close()
		return abort(err, "video")
	}
	spk, err := m.openSpeaker()
	if err != nil {
		mic.Close()
		frames.Close()
		return abort(err, "speaker")
	}
	stream, err := m.dialer.Dial(ctx)
	if err != nil {
		mic.Close()
		frames.Close()
		spk.Close()
		return abort(err, "connect")
	}

	sessCtx, cancel := context.WithCancel(context.Background())
	sess := &liveSession{
		cancel:    cancel,
		stream:    stream,
		mic:       mic,
		frames:    frames,
		speaker:   spk,
		scheduler: media.NewScheduler(spk),
	}

	m.mu.Lock()
	m.current = sess
	m.state = StateConnected
	m.mu.Unlock()

	m.store.Apply(game.SetStatus{Status: game.StatusLive})
	m.store.AddLog("Connected to Gemini Live. Analyzing court...", game.LogInfo)

	go m.runMic(sessCtx, sess)
	go m.runFrames(sessCtx, sess)
	go m.runReceive(sess)
	return nil
}

// Stop tears the current session down. Safe to call when nothing is
// running.
func (m *Manager) Stop() {
	m.mu.Lock()
	sess := m.current
	m.mu.Unlock()
	if sess == nil {
		return
	}
	m.teardownSession(sess, "stopped")
}

func (m *Manager) runMic(ctx context.Context, sess *liveSession) {
	err := sess.mic.Run(ctx, func(pcm []byte, level float64) {
		m.level.Store(math.Float64bits(level))
		// The mic loop reuses its buffer; the stream gets its own copy.
		out := make([]byte, len(pcm))
		copy(out, pcm)
		if sendErr := sess.stream.SendAudio(out); sendErr != nil {
			m.logger.Warn("mic send failed", "error", sendErr)
		}
	})
	if err != nil && ctx.Err() == nil {
		m.logger.Error("mic capture ended", "error", err)
		m.teardownSession(sess, "mic capture ended")
	}
}

func (m *Manager) runFrames(ctx context.Context, sess *liveSession) {
	err := sess.frames.Run(ctx, func(jpeg []byte) {
		m.frameMu.Lock()
		m.lastFrame = jpeg
		m.frameMu.Unlock()
		if sendErr := sess.stream.SendFrame(jpeg); sendErr != nil {
			m.logger.Warn("frame send failed", "error", sendErr)
		}
	})
	if err != nil && ctx.Err() == nil {
		m.logger.Error("video capture ended", "error", err)
		m.teardownSession(sess, "video capture ended")
	}
}

// runReceive drives the inbound side. Tool calls are applied before their
// acknowledgments are sent; an ack must never race ahead of its mutation.
func (m *Manager) runReceive(sess *liveSession) {
	for {
		msg, err := sess.stream.Recv()
		if err != nil {
			m.teardownSession(sess, "transport closed")
			return
		}
		if len(msg.Audio) > 0 {
			sess.scheduler.Schedule(msg.Audio)
		}
		if len(msg.ToolCalls) > 0 {
			acks := m.dispatcher.Dispatch(msg.ToolCalls)
			if err := sess.stream.SendToolAcks(acks); err != nil {
				m.logger.Warn("tool ack send failed", "error", err)
			}
		}
	}
}

// teardownSession releases everything exactly once per session: timers,
// subprocesses, the transport. It is reachable from Stop, from transport
// failure and from either capture loop dying.
func (m *Manager) teardownSession(sess *liveSession, reason string) {
	sess.teardown.Do(func() {
		sess.cancel()
		sess.stream.Close()
		sess.mic.Close()
		sess.frames.Close()
		sess.scheduler.Flush()
		sess.speaker.Close()
		m.level.Store(0)

		m.mu.Lock()
		m.state = StateDisconnected
		m.current = nil
		m.mu.Unlock()

		m.store.Apply(game.SetStatus{Status: game.StatusPaused})
		m.store.AddLog("Session disconnected.", game.LogInfo)
		m.logger.Info("live session ended", "reason", reason)
	})
}
