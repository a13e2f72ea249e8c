package pcm

import (
	"math"
	"testing"
)

func TestResampleLength(t *testing.T) {
	tests := []struct {
		name       string
		sourceRate int
		targetRate int
		samples    int
	}{
		{"44100 to 16000", 44100, 16000, 441000},
		{"48000 to 16000", 48000, 16000, 96000},
		{"16000 to 48000", 16000, 48000, 16000},
		{"8000 to 16000", 8000, 16000, 12345},
		{"odd ratio", 22050, 16000, 999},
		{"single sample", 44100, 16000, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := make([]float32, tt.samples)
			buf, err := NewBuffer([][]float32{in}, tt.sourceRate)
			if err != nil {
				t.Fatalf("NewBuffer: %v", err)
			}

			out := Resample(buf, tt.targetRate)

			want := int(math.Ceil(
				float64(tt.samples) * float64(tt.targetRate) / float64(tt.sourceRate),
			))
			if out.Len() != want {
				t.Errorf("Len() = %d, want %d", out.Len(), want)
			}
			if out.Rate != tt.targetRate {
				t.Errorf("Rate = %d, want %d", out.Rate, tt.targetRate)
			}
		})
	}
}

func TestResampleIdentity(t *testing.T) {
	in := []float32{0.1, 0.2, 0.3}
	buf, err := NewBuffer([][]float32{in}, 16000)
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}

	out := Resample(buf, 16000)
	if out != buf {
		t.Error("same-rate resample should return the input buffer unchanged")
	}
}

func TestResampleKeepsChannelCount(t *testing.T) {
	left := make([]float32, 1000)
	right := make([]float32, 1000)
	buf, err := NewBuffer([][]float32{left, right}, 48000)
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}

	out := Resample(buf, 16000)
	if out.NumChannels() != 2 {
		t.Errorf("NumChannels() = %d, want 2", out.NumChannels())
	}
	if len(out.Channels[0]) != len(out.Channels[1]) {
		t.Errorf("channel lengths differ: %d vs %d",
			len(out.Channels[0]), len(out.Channels[1]))
	}
}

func TestResamplePreservesConstantSignal(t *testing.T) {
	in := make([]float32, 4410)
	for i := range in {
		in[i] = 0.5
	}
	buf, err := NewBuffer([][]float32{in}, 44100)
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}

	out := Resample(buf, 16000)
	for i, s := range out.Channels[0] {
		if math.Abs(float64(s)-0.5) > 1e-6 {
			t.Fatalf("sample %d = %v, want 0.5", i, s)
		}
	}
}

func TestMono(t *testing.T) {
	left := []float32{1, 0, 0.5}
	right := []float32{0, 0, -0.5}
	buf, err := NewBuffer([][]float32{left, right}, 16000)
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}

	mono := buf.Mono()
	if mono.NumChannels() != 1 {
		t.Fatalf("NumChannels() = %d, want 1", mono.NumChannels())
	}
	want := []float32{0.5, 0, 0}
	for i, s := range mono.Channels[0] {
		if s != want[i] {
			t.Errorf("sample %d = %v, want %v", i, s, want[i])
		}
	}

	if mono.Mono() != mono {
		t.Error("Mono() on a mono buffer should be a pass-through")
	}
}

func TestBufferInvariants(t *testing.T) {
	if _, err := NewBuffer(nil, 16000); err == nil {
		t.Error("expected error for zero channels")
	}
	if _, err := NewBuffer([][]float32{{1}, {1, 2}}, 16000); err == nil {
		t.Error("expected error for mismatched channel lengths")
	}
	if _, err := NewBuffer([][]float32{{1}}, 0); err == nil {
		t.Error("expected error for zero rate")
	}
}

func TestBufferDuration(t *testing.T) {
	buf, err := NewBuffer([][]float32{make([]float32, 44100)}, 44100)
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}
	if got := buf.Duration().Seconds(); got != 1.0 {
		t.Errorf("Duration() = %vs, want 1s", got)
	}
}
