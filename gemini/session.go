// Package gemini drives a live transcription session: audio chunks are paced
// out over a bidirectional websocket while partial and final transcript
// events stream back, and the session resolves exactly once even when the
// backend never sends its completion signal.
package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"minute/pcm"
	"minute/transcript"
)

const (
	DefaultEndpoint = "wss://generativelanguage.googleapis.com/ws/" +
		"google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent"
	DefaultModel         = "models/gemini-2.0-flash-live-001"
	DefaultSampleRate    = 16000
	DefaultPaceInterval  = 200 * time.Millisecond
	DefaultFallbackDelay = 5 * time.Second
)

// Transport is the bidirectional message connection the session runs over.
// *websocket.Conn satisfies it; tests substitute a scripted fake.
type Transport interface {
	WriteJSON(v any) error
	ReadJSON(v any) error
	Close() error
}

// Dialer opens a Transport to the given endpoint.
type Dialer func(ctx context.Context, endpoint string) (Transport, error)

func websocketDialer(ctx context.Context, endpoint string) (Transport, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

type SessionConfig struct {
	APIKey        string
	Model         string
	Endpoint      string
	SampleRate    int
	ChunkSize     int
	PaceInterval  time.Duration
	FallbackDelay time.Duration
	Policy        transcript.Policy

	// Dial is overridable for tests; nil means a real websocket dial.
	Dial Dialer

	// OnTranscript receives the current joined transcript whenever new text
	// arrives; final is true when a turn boundary was just crossed. Never
	// invoked after the session resolves.
	OnTranscript func(text string, final bool)

	// OnProgress receives the fraction of outbound audio sent, in [0, 100].
	OnProgress func(percent float64)
}

func (c *SessionConfig) withDefaults() SessionConfig {
	out := *c
	if out.Model == "" {
		out.Model = DefaultModel
	}
	if out.Endpoint == "" {
		out.Endpoint = DefaultEndpoint
	}
	if out.SampleRate == 0 {
		out.SampleRate = DefaultSampleRate
	}
	if out.ChunkSize == 0 {
		out.ChunkSize = pcm.DefaultChunkSize
	}
	if out.PaceInterval == 0 {
		out.PaceInterval = DefaultPaceInterval
	}
	if out.FallbackDelay == 0 {
		out.FallbackDelay = DefaultFallbackDelay
	}
	if out.Dial == nil {
		out.Dial = websocketDialer
	}
	return out
}

// Result is the terminal output of a session.
type Result struct {
	FullTranscription string
}

// Session runs one live transcription from start to resolution. All mutable
// state (sent offset, transcript builder, lifecycle state, the resolution
// guard) is owned by the event loop goroutine inside Run; correctness rests
// on the strict ordering of timer and message events, not on locks.
type Session struct {
	cfg     SessionConfig
	logger  *log.Logger
	conn    Transport
	state   State
	chunker *pcm.Chunker
	builder *transcript.Builder

	resolved  bool
	closeOnce sync.Once
	done      chan struct{}
}

func NewSession(cfg SessionConfig, logger *log.Logger) *Session {
	return &Session{
		cfg:     cfg.withDefaults(),
		logger:  logger,
		state:   StateConnecting,
		builder: transcript.NewBuilder(cfg.Policy),
	}
}

// State reports the current lifecycle position.
func (s *Session) State() State {
	return s.state
}

// Run connects, streams the samples, and blocks until the session resolves.
// samples is a flat mono array at the configured sample rate.
func (s *Session) Run(ctx context.Context, samples []float32) (*Result, error) {
	s.chunker = pcm.NewChunker(samples, s.cfg.SampleRate, s.cfg.ChunkSize)
	s.done = make(chan struct{})
	defer close(s.done)

	msgs := make(chan serverMessage)
	readErrs := make(chan error, 1)

	if err := s.connect(ctx, msgs, readErrs); err != nil {
		s.state = StateClosed
		return nil, err
	}

	ticker := time.NewTicker(s.cfg.PaceInterval)
	defer ticker.Stop()

	var fallback *time.Timer
	var fallbackC <-chan time.Time
	defer func() {
		if fallback != nil {
			fallback.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			s.closeTransport()
			s.state = StateClosed
			return nil, ctx.Err()

		case <-ticker.C:
			if s.state != StateOpen {
				continue
			}
			if s.chunker.Remaining() {
				if err := s.sendChunk(); err != nil {
					ticker.Stop()
					s.closeTransport()
					s.state = StateClosed
					return nil, err
				}
			}
			if !s.chunker.Remaining() {
				ticker.Stop()
				s.state = StateDraining
				s.logger.Debug("all audio sent, draining",
					"sent", s.chunker.Sent(),
					"total", s.chunker.Total(),
					"fallback", s.cfg.FallbackDelay)
				if err := s.conn.WriteJSON(realtimeInputMessage{
					RealtimeInput: realtimeInput{AudioStreamEnd: true},
				}); err != nil {
					s.closeTransport()
					s.state = StateClosed
					return nil, &TransmissionError{Err: err}
				}
				fallback = time.NewTimer(s.cfg.FallbackDelay)
				fallbackC = fallback.C
			}

		case <-fallbackC:
			// No completion signal arrived in time; force the close and
			// accept that the transcript may be incomplete.
			s.logger.Warn("no completion signal, closing session",
				"waited", s.cfg.FallbackDelay)
			s.state = StateClosing
			s.closeTransport()

		case m := <-msgs:
			s.handleServerMessage(m, fallback)

		case err := <-readErrs:
			return s.finish(err, fallback)
		}
	}
}

// connect dials the transport, sends the setup message, and waits for the
// backend's ready signal. Any failure rejects the session immediately.
func (s *Session) connect(ctx context.Context, msgs chan serverMessage, readErrs chan error) error {
	endpoint := s.cfg.Endpoint
	if s.cfg.APIKey != "" {
		endpoint = fmt.Sprintf("%s?key=%s", endpoint, s.cfg.APIKey)
	}

	conn, err := s.cfg.Dial(ctx, endpoint)
	if err != nil {
		return &ConnectionError{Err: err}
	}
	s.conn = conn

	setup := setupMessage{
		Setup: setupPayload{
			Model: s.cfg.Model,
			// The backend requires a response modality even though only the
			// input transcription matters here.
			GenerationConfig: generationConfig{
				ResponseModalities: []string{"AUDIO"},
			},
		},
	}
	if err := s.conn.WriteJSON(setup); err != nil {
		s.closeTransport()
		return &ConnectionError{Err: err}
	}

	go s.readLoop(msgs, readErrs)

	select {
	case <-ctx.Done():
		s.closeTransport()
		return &ConnectionError{Err: ctx.Err()}
	case err := <-readErrs:
		s.closeTransport()
		return &ConnectionError{Err: err}
	case m := <-msgs:
		if m.SetupComplete == nil {
			s.closeTransport()
			return &ConnectionError{
				Err: fmt.Errorf("expected setup ack, got %+v", m),
			}
		}
	}

	s.state = StateOpen
	s.logger.Debug("live session open", "model", s.cfg.Model)
	return nil
}

func (s *Session) readLoop(msgs chan serverMessage, readErrs chan error) {
	for {
		var m serverMessage
		if err := s.conn.ReadJSON(&m); err != nil {
			readErrs <- err
			return
		}
		select {
		case msgs <- m:
		case <-s.done:
			return
		}
	}
}

func (s *Session) sendChunk() error {
	chunk, ok := s.chunker.Next()
	if !ok {
		return nil
	}
	msg := realtimeInputMessage{
		RealtimeInput: realtimeInput{
			MediaChunks: []mediaChunk{{
				MimeType: chunk.MimeType,
				Data:     base64.StdEncoding.EncodeToString(chunk.Data),
			}},
		},
	}
	if err := s.conn.WriteJSON(msg); err != nil {
		return &TransmissionError{Err: err}
	}
	s.reportProgress(s.chunker.Progress())
	return nil
}

func (s *Session) handleServerMessage(m serverMessage, fallback *time.Timer) {
	if m.ServerContent == nil {
		return
	}
	sc := m.ServerContent

	if sc.InputTranscription != nil && sc.InputTranscription.Text != "" {
		s.builder.Write(sc.InputTranscription.Text)
		s.reportTranscript(false)
	}

	if sc.TurnComplete {
		s.builder.EndTurn()
		s.reportTranscript(true)
		if s.state == StateDraining {
			// Completion signal won the race: disarm the fallback before it
			// can double-close, then close gracefully.
			if fallback != nil {
				fallback.Stop()
			}
			s.state = StateClosing
			s.closeTransport()
		}
	}
}

// finish is the single resolution point, entered when the read loop ends.
func (s *Session) finish(readErr error, fallback *time.Timer) (*Result, error) {
	if fallback != nil {
		fallback.Stop()
	}
	s.closeTransport()

	if s.resolved {
		return nil, fmt.Errorf("session already resolved")
	}
	s.resolved = true

	graceful := s.state == StateClosing || isNormalClose(readErr)
	s.state = StateClosed

	if !graceful {
		return nil, &BackendError{Err: readErr}
	}

	s.reportProgress(100)
	return &Result{FullTranscription: s.builder.Final()}, nil
}

// closeTransport is safe to call any number of times from any path.
func (s *Session) closeTransport() {
	s.closeOnce.Do(func() {
		if s.conn == nil {
			return
		}
		if wc, ok := s.conn.(*websocket.Conn); ok {
			wc.WriteMessage(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			)
		}
		if err := s.conn.Close(); err != nil {
			s.logger.Debug("transport close", "error", err)
		}
	})
}

func (s *Session) reportTranscript(final bool) {
	if s.cfg.OnTranscript == nil || s.resolved {
		return
	}
	s.cfg.OnTranscript(s.builder.Text(), final)
}

func (s *Session) reportProgress(percent float64) {
	if s.cfg.OnProgress == nil {
		return
	}
	s.cfg.OnProgress(percent)
}

func isNormalClose(err error) bool {
	if errors.Is(err, io.EOF) {
		return true
	}
	return websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
	)
}
