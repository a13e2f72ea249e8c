package pipeline

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"minute/pcm"
	"minute/wav"
)

type fakeDecoder struct {
	buf *pcm.Buffer
	err error
}

func (f *fakeDecoder) Decode(ctx context.Context, path string) (*pcm.Buffer, error) {
	return f.buf, f.err
}

type fakeLive struct {
	text    string
	err     error
	samples []float32
	rate    int
}

func (f *fakeLive) Transcribe(ctx context.Context, samples []float32, rate int) (string, error) {
	f.samples = samples
	f.rate = rate
	return f.text, f.err
}

type fakeBatch struct {
	text string
	err  error
	data []byte
}

func (f *fakeBatch) Transcribe(ctx context.Context, wavData []byte) (string, error) {
	f.data = wavData
	return f.text, f.err
}

type fakeSummarizer struct {
	summary string
	err     error
	input   string
}

func (f *fakeSummarizer) Summarize(ctx context.Context, transcription string) (string, error) {
	f.input = transcription
	return f.summary, f.err
}

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func stereoBuffer(t *testing.T, samples, rate int) *pcm.Buffer {
	t.Helper()
	buf, err := pcm.NewBuffer([][]float32{
		make([]float32, samples),
		make([]float32, samples),
	}, rate)
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}
	return buf
}

func TestProcessLive(t *testing.T) {
	// Ten seconds of 44.1kHz stereo.
	dec := &fakeDecoder{buf: stereoBuffer(t, 441000, 44100)}
	live := &fakeLive{text: "the live transcript"}
	sum := &fakeSummarizer{summary: "- a summary"}

	var gotDuration time.Duration
	p := New(
		Config{Backend: BackendLive},
		dec, live, nil, sum,
		Callbacks{OnDuration: func(d time.Duration) { gotDuration = d }},
		testLogger(),
	)

	res, err := p.Process(context.Background(), "talk.mp4")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Transcript != "the live transcript" {
		t.Errorf("Transcript = %q", res.Transcript)
	}
	if res.Summary != "- a summary" {
		t.Errorf("Summary = %q", res.Summary)
	}
	if gotDuration != 10*time.Second || res.Duration != 10*time.Second {
		t.Errorf("duration callback %v, result %v, want 10s", gotDuration, res.Duration)
	}
	if sum.input != "the live transcript" {
		t.Errorf("summarizer input = %q", sum.input)
	}

	// Conditioning: resampled to the 16kHz default and mixed down to mono.
	if live.rate != 16000 {
		t.Errorf("live rate = %d, want 16000", live.rate)
	}
	if len(live.samples) != 160000 {
		t.Errorf("live samples = %d, want 160000", len(live.samples))
	}
}

func TestProcessBatch(t *testing.T) {
	dec := &fakeDecoder{buf: stereoBuffer(t, 4410, 44100)}
	batch := &fakeBatch{text: "the batch transcript"}

	var updates []string
	var finals int
	p := New(
		Config{Backend: BackendBatch},
		dec, nil, batch, nil,
		Callbacks{OnTranscript: func(text string, final bool) {
			updates = append(updates, text)
			if final {
				finals++
			}
		}},
		testLogger(),
	)

	res, err := p.Process(context.Background(), "talk.mp4")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Transcript != "the batch transcript" {
		t.Errorf("Transcript = %q", res.Transcript)
	}
	if res.Summary != "" {
		t.Errorf("Summary = %q, want empty without a summarizer", res.Summary)
	}
	if len(updates) != 1 || finals != 1 {
		t.Errorf("updates = %v, finals = %d, want exactly one final update", updates, finals)
	}

	// The uploaded container keeps the source rate and channel count.
	decoded, err := wav.Decode(batch.data)
	if err != nil {
		t.Fatalf("uploaded data is not a valid container: %v", err)
	}
	if decoded.Rate != 44100 || decoded.NumChannels() != 2 {
		t.Errorf("uploaded %dHz x%d, want 44100Hz x2", decoded.Rate, decoded.NumChannels())
	}
}

func TestProcessDecodeFailure(t *testing.T) {
	dec := &fakeDecoder{err: errors.New("no audio track")}
	p := New(Config{}, dec, &fakeLive{}, nil, nil, Callbacks{}, testLogger())

	_, err := p.Process(context.Background(), "slides.pdf")
	if err == nil || !strings.Contains(err.Error(), "extract audio") {
		t.Fatalf("error = %v, want extract audio stage", err)
	}
}

func TestProcessTranscribeFailure(t *testing.T) {
	dec := &fakeDecoder{buf: stereoBuffer(t, 100, 16000)}
	live := &fakeLive{err: errors.New("session rejected")}
	sum := &fakeSummarizer{summary: "untouched"}
	p := New(Config{}, dec, live, nil, sum, Callbacks{}, testLogger())

	_, err := p.Process(context.Background(), "talk.mp4")
	if err == nil || !strings.Contains(err.Error(), "transcribe") {
		t.Fatalf("error = %v, want transcribe stage", err)
	}
	if sum.input != "" {
		t.Error("summarizer should not run after a transcription failure")
	}
}

func TestProcessSummarizeFailure(t *testing.T) {
	dec := &fakeDecoder{buf: stereoBuffer(t, 100, 16000)}
	live := &fakeLive{text: "transcript"}
	sum := &fakeSummarizer{err: errors.New("quota exceeded")}
	p := New(Config{}, dec, live, nil, sum, Callbacks{}, testLogger())

	_, err := p.Process(context.Background(), "talk.mp4")
	if err == nil || !strings.Contains(err.Error(), "summarize") {
		t.Fatalf("error = %v, want summarize stage", err)
	}
}
