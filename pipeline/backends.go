package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"minute/gemini"
	"minute/transcript"
	"minute/whisper"
)

// GeminiLive adapts the live session to the LiveTranscriber interface. Each
// Transcribe call runs a fresh session from scratch, so the orchestrator can
// re-invoke it without inherited state.
type GeminiLive struct {
	APIKey        string
	Model         string
	ChunkSize     int
	PaceInterval  time.Duration
	FallbackDelay time.Duration
	Policy        transcript.Policy
	Callbacks     Callbacks
	Logger        *log.Logger
}

func (g *GeminiLive) Transcribe(ctx context.Context, samples []float32, rate int) (string, error) {
	session := gemini.NewSession(gemini.SessionConfig{
		APIKey:        g.APIKey,
		Model:         g.Model,
		SampleRate:    rate,
		ChunkSize:     g.ChunkSize,
		PaceInterval:  g.PaceInterval,
		FallbackDelay: g.FallbackDelay,
		Policy:        g.Policy,
		OnTranscript:  g.Callbacks.OnTranscript,
		OnProgress:    g.Callbacks.OnProgress,
	}, g.Logger)

	result, err := session.Run(ctx, samples)
	if err != nil {
		return "", err
	}
	return result.FullTranscription, nil
}

// WhisperBatch adapts the single-shot client to the BatchTranscriber
// interface.
type WhisperBatch struct {
	client *whisper.Client
}

func NewWhisperBatch(apiKey, model, baseURL string, callbacks Callbacks, logger *log.Logger) *WhisperBatch {
	return &WhisperBatch{
		client: whisper.NewClient(whisper.Config{
			APIKey:     apiKey,
			Model:      model,
			BaseURL:    baseURL,
			OnProgress: callbacks.OnProgress,
		}, logger),
	}
}

func (w *WhisperBatch) Transcribe(ctx context.Context, wavData []byte) (string, error) {
	return w.client.Transcribe(ctx, wavData)
}
