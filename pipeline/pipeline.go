// Package pipeline sequences a full job: decode the file's audio track,
// condition it for the chosen transcription backend, run the transcription,
// and summarize the result. Progress and duration telemetry flow out through
// callbacks; each stage failure short-circuits the rest.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"minute/llm"
	"minute/pcm"
	"minute/wav"
)

// Backend picks the transcription path.
type Backend string

const (
	// BackendLive streams packets over the bidirectional session.
	BackendLive Backend = "live"
	// BackendBatch uploads one WAV container in a single request.
	BackendBatch Backend = "batch"
)

// Decoder turns a media file into a PCM buffer.
type Decoder interface {
	Decode(ctx context.Context, path string) (*pcm.Buffer, error)
}

// LiveTranscriber runs a streaming session over a flat mono sample array at
// the given rate. One call is one session; a retry is a fresh call.
type LiveTranscriber interface {
	Transcribe(ctx context.Context, samples []float32, rate int) (string, error)
}

// BatchTranscriber sends a whole encoded container in one request.
type BatchTranscriber interface {
	Transcribe(ctx context.Context, wavData []byte) (string, error)
}

// Callbacks is the contract with the external UI collaborator. All fields
// are optional.
type Callbacks struct {
	OnTranscript func(text string, final bool)
	OnProgress   func(percent float64)
	OnDuration   func(d time.Duration)
}

type Config struct {
	Backend    Backend
	TargetRate int
}

type Result struct {
	Transcript string
	Summary    string
	Duration   time.Duration
}

type Pipeline struct {
	cfg        Config
	decoder    Decoder
	live       LiveTranscriber
	batch      BatchTranscriber
	summarizer llm.Summarizer
	callbacks  Callbacks
	logger     *log.Logger
}

func New(
	cfg Config,
	decoder Decoder,
	live LiveTranscriber,
	batch BatchTranscriber,
	summarizer llm.Summarizer,
	callbacks Callbacks,
	logger *log.Logger,
) *Pipeline {
	if cfg.TargetRate == 0 {
		cfg.TargetRate = 16000
	}
	return &Pipeline{
		cfg:        cfg,
		decoder:    decoder,
		live:       live,
		batch:      batch,
		summarizer: summarizer,
		callbacks:  callbacks,
		logger:     logger,
	}
}

// Process runs the whole job for one file.
func (p *Pipeline) Process(ctx context.Context, path string) (*Result, error) {
	start := time.Now()

	buf, err := p.decoder.Decode(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("extract audio: %w", err)
	}
	duration := buf.Duration()
	p.logger.Info("audio decoded",
		"path", path,
		"duration", duration,
		"rate", buf.Rate,
		"channels", buf.NumChannels(),
	)
	if p.callbacks.OnDuration != nil {
		p.callbacks.OnDuration(duration)
	}

	var text string
	switch p.cfg.Backend {
	case BackendBatch:
		text, err = p.batch.Transcribe(ctx, wav.Encode(buf))
		if err != nil {
			return nil, fmt.Errorf("transcribe: %w", err)
		}
		// The batch backend delivers everything at once, so there is exactly
		// one transcript update and it is final.
		if p.callbacks.OnTranscript != nil {
			p.callbacks.OnTranscript(text, true)
		}
	default:
		mono := pcm.Resample(buf, p.cfg.TargetRate).Mono()
		text, err = p.live.Transcribe(ctx, mono.Channels[0], p.cfg.TargetRate)
		if err != nil {
			return nil, fmt.Errorf("transcribe: %w", err)
		}
	}

	result := &Result{Transcript: text, Duration: duration}

	if p.summarizer != nil {
		summary, err := p.summarizer.Summarize(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("summarize: %w", err)
		}
		result.Summary = summary
	}

	p.logger.Info("processing complete",
		"path", path,
		"transcript_chars", len(text),
		"took", time.Since(start),
	)
	return result, nil
}
