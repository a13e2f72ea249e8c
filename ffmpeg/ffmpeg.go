// Package ffmpeg decodes the audio track of arbitrary media containers into
// PCM buffers by shelling out to ffprobe and ffmpeg.
package ffmpeg

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"minute/pcm"
)

// DecodeError means the input media could not be probed or decoded. The
// Reason is safe to show to a user; tool stderr stays in the wrapped error.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode: %s", e.Reason)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Runner executes an external command, feeding it stdin and returning stdout.
// It exists so tests can substitute the ffmpeg/ffprobe binaries.
type Runner interface {
	Run(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return stdout.Bytes(), nil
}

type Decoder struct {
	runner Runner
}

func NewDecoder() *Decoder {
	return &Decoder{runner: execRunner{}}
}

// NewDecoderWithRunner is used by tests to fake the external tools.
func NewDecoderWithRunner(r Runner) *Decoder {
	return &Decoder{runner: r}
}

// Probe reads the native sample rate and channel count of the first audio
// stream in the file.
func (d *Decoder) Probe(ctx context.Context, path string) (rate, channels int, err error) {
	out, err := d.runner.Run(ctx, nil, "ffprobe",
		"-v", "error",
		"-select_streams", "a:0",
		"-show_entries", "stream=sample_rate,channels",
		"-of", "csv=p=0",
		path,
	)
	if err != nil {
		return 0, 0, &DecodeError{
			Reason: "could not read audio stream info, is this a media file?",
			Err:    err,
		}
	}

	fields := strings.Split(strings.TrimSpace(string(out)), ",")
	if len(fields) < 2 {
		return 0, 0, &DecodeError{
			Reason: "file has no audio track",
			Err:    fmt.Errorf("ffprobe output %q", strings.TrimSpace(string(out))),
		}
	}
	rate, err = strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return 0, 0, &DecodeError{Reason: "unreadable sample rate", Err: err}
	}
	channels, err = strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil {
		return 0, 0, &DecodeError{Reason: "unreadable channel count", Err: err}
	}
	if rate <= 0 || channels <= 0 {
		return 0, 0, &DecodeError{
			Reason: fmt.Sprintf("implausible audio stream (rate=%d channels=%d)", rate, channels),
		}
	}
	return rate, channels, nil
}

// Decode extracts the full audio track at its native rate and channel count
// as 32-bit float PCM.
func (d *Decoder) Decode(ctx context.Context, path string) (*pcm.Buffer, error) {
	rate, channels, err := d.Probe(ctx, path)
	if err != nil {
		return nil, err
	}

	raw, err := d.runner.Run(ctx, nil, "ffmpeg",
		"-i", path,
		"-vn",
		"-f", "f32le",
		"-acodec", "pcm_f32le",
		"-ar", strconv.Itoa(rate),
		"-ac", strconv.Itoa(channels),
		"-",
	)
	if err != nil {
		return nil, &DecodeError{
			Reason: "audio track could not be decoded, the file may be corrupt",
			Err:    err,
		}
	}

	return deinterleave(raw, rate, channels)
}

// deinterleave splits an interleaved f32le byte stream into per-channel
// sample slices.
func deinterleave(raw []byte, rate, channels int) (*pcm.Buffer, error) {
	frameSize := channels * 4
	numFrames := len(raw) / frameSize
	if numFrames == 0 {
		return nil, &DecodeError{Reason: "audio track is empty"}
	}

	out := make([][]float32, channels)
	for c := range out {
		out[c] = make([]float32, numFrames)
	}
	for i := 0; i < numFrames; i++ {
		base := i * frameSize
		for c := 0; c < channels; c++ {
			bits := binary.LittleEndian.Uint32(raw[base+c*4 : base+c*4+4])
			out[c][i] = math.Float32frombits(bits)
		}
	}

	return pcm.NewBuffer(out, rate)
}
