package session

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const (
	audioMIMEType = "audio/pcm;rate=16000"
	frameMIMEType = "image/jpeg"
)

// GeminiDialer opens live sessions against the Gemini Live API.
type GeminiDialer struct {
	APIKey string
	Model  string
}

// Dial connects one live session with the fixed tool schema and system
// instruction.
func (d *GeminiDialer) Dial(ctx context.Context) (Stream, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  d.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	sess, err := client.Live.Connect(ctx, d.Model, &genai.LiveConnectConfig{
		ResponseModalities: []genai.Modality{genai.ModalityAudio},
		SystemInstruction:  genai.NewContentFromText(systemInstruction, genai.RoleUser),
		Tools:              toolDeclarations(),
	})
	if err != nil {
		return nil, fmt.Errorf("connect live session: %w", err)
	}
	return &geminiStream{sess: sess}, nil
}

// geminiStream adapts a genai live session to the neutral Stream shape.
type geminiStream struct {
	sess *genai.Session
}

func (g *geminiStream) SendAudio(pcm []byte) error {
	return g.sess.SendRealtimeInput(genai.LiveRealtimeInput{
		Audio: &genai.Blob{Data: pcm, MIMEType: audioMIMEType},
	})
}

func (g *geminiStream) SendFrame(jpeg []byte) error {
	return g.sess.SendRealtimeInput(genai.LiveRealtimeInput{
		Video: &genai.Blob{Data: jpeg, MIMEType: frameMIMEType},
	})
}

func (g *geminiStream) SendToolAcks(acks []ToolAck) error {
	if len(acks) == 0 {
		return nil
	}
	responses := make([]*genai.FunctionResponse, 0, len(acks))
	for _, a := range acks {
		responses = append(responses, &genai.FunctionResponse{
			ID:       a.ID,
			Name:     a.Name,
			Response: a.Response,
		})
	}
	return g.sess.SendToolResponse(genai.LiveToolResponseInput{FunctionResponses: responses})
}

func (g *geminiStream) Recv() (*ServerMessage, error) {
	msg, err := g.sess.Receive()
	if err != nil {
		return nil, err
	}

	out := &ServerMessage{}
	if sc := msg.ServerContent; sc != nil && sc.ModelTurn != nil {
		for _, part := range sc.ModelTurn.Parts {
			if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
				out.Audio = append(out.Audio, part.InlineData.Data...)
			}
		}
	}
	if tc := msg.ToolCall; tc != nil {
		for _, fc := range tc.FunctionCalls {
			if fc == nil {
				continue
			}
			out.ToolCalls = append(out.ToolCalls, ToolCall{
				ID:   fc.ID,
				Name: fc.Name,
				Args: fc.Args,
			})
		}
	}
	return out, nil
}

func (g *geminiStream) Close() error {
	return g.sess.Close()
}
