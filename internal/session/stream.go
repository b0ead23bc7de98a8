// Package session runs the live AI boundary: the bidirectional stream fed
// microphone audio and court video, the tool-call dispatch that folds model
// observations into game state, and the one-shot deep-analysis call.
package session

import "context"

// ToolCall is one inbound function invocation from the model.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]any
}

// ToolAck answers exactly one ToolCall, keyed by its ID.
type ToolAck struct {
	ID       string
	Name     string
	Response map[string]any
}

// ServerMessage is one decoded inbound message: model speech, a batch of
// tool calls, or both.
type ServerMessage struct {
	Audio     []byte // mono s16le PCM at the playback rate, may be nil
	ToolCalls []ToolCall
}

// Stream is an open live session. Send methods may be called concurrently
// with each other; Recv is driven by a single reader.
type Stream interface {
	SendAudio(pcm []byte) error
	SendFrame(jpeg []byte) error
	SendToolAcks(acks []ToolAck) error
	Recv() (*ServerMessage, error)
	Close() error
}

// Dialer opens live sessions. The production implementation talks to the
// Gemini Live API; tests substitute a fake.
type Dialer interface {
	Dial(ctx context.Context) (Stream, error)
}
