package pcm

import (
	"fmt"
	"time"
)

// Buffer holds decoded linear PCM audio as one float32 slice per channel,
// samples in [-1, 1]. All channels have the same length. Buffers are treated
// as immutable once created; operations that change the audio return a new
// Buffer.
type Buffer struct {
	Channels [][]float32
	Rate     int
}

func NewBuffer(channels [][]float32, rate int) (*Buffer, error) {
	if len(channels) == 0 {
		return nil, fmt.Errorf("buffer needs at least one channel")
	}
	if rate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", rate)
	}
	n := len(channels[0])
	for i, ch := range channels {
		if len(ch) != n {
			return nil, fmt.Errorf(
				"channel %d has %d samples, channel 0 has %d",
				i, len(ch), n,
			)
		}
	}
	return &Buffer{Channels: channels, Rate: rate}, nil
}

// Len returns the per-channel sample count.
func (b *Buffer) Len() int {
	return len(b.Channels[0])
}

func (b *Buffer) NumChannels() int {
	return len(b.Channels)
}

func (b *Buffer) Duration() time.Duration {
	return time.Duration(float64(b.Len()) / float64(b.Rate) * float64(time.Second))
}

// Mono returns a single-channel mixdown by averaging channels. A buffer that
// is already mono is returned as is.
func (b *Buffer) Mono() *Buffer {
	if len(b.Channels) == 1 {
		return b
	}
	mixed := make([]float32, b.Len())
	for _, ch := range b.Channels {
		for i, s := range ch {
			mixed[i] += s
		}
	}
	n := float32(len(b.Channels))
	for i := range mixed {
		mixed[i] /= n
	}
	return &Buffer{Channels: [][]float32{mixed}, Rate: b.Rate}
}
