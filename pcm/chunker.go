package pcm

import "fmt"

// DefaultChunkSize is the number of samples per streaming packet.
const DefaultChunkSize = 4096

// Chunk is one outbound audio packet: little-endian 16-bit PCM bytes plus the
// mime tag the streaming backend expects. Chunks are transient; they are
// produced and consumed within one pacing tick.
type Chunk struct {
	Data     []byte
	MimeType string
	Samples  int
}

// Chunker slices a flat mono sample array into fixed-size packets in sample
// order. The last chunk may be shorter.
type Chunker struct {
	samples []float32
	rate    int
	size    int
	offset  int
}

func NewChunker(samples []float32, rate, size int) *Chunker {
	if size <= 0 {
		size = DefaultChunkSize
	}
	return &Chunker{samples: samples, rate: rate, size: size}
}

// NumChunks returns ceil(len(samples) / size).
func (c *Chunker) NumChunks() int {
	return (len(c.samples) + c.size - 1) / c.size
}

// Total returns the total sample count.
func (c *Chunker) Total() int {
	return len(c.samples)
}

// Sent returns how many samples have been emitted so far.
func (c *Chunker) Sent() int {
	return c.offset
}

// Remaining reports whether any unsent samples remain.
func (c *Chunker) Remaining() bool {
	return c.offset < len(c.samples)
}

// Next emits the next chunk, advancing the offset. It returns false once all
// samples have been emitted.
func (c *Chunker) Next() (Chunk, bool) {
	if c.offset >= len(c.samples) {
		return Chunk{}, false
	}
	end := c.offset + c.size
	if end > len(c.samples) {
		end = len(c.samples)
	}
	slice := c.samples[c.offset:end]
	chunk := Chunk{
		Data:     EncodeInt16LE(slice),
		MimeType: MimeType(c.rate),
		Samples:  len(slice),
	}
	c.offset = end
	return chunk, true
}

// Progress returns the fraction of samples emitted, in [0, 100]. An empty
// input counts as fully sent.
func (c *Chunker) Progress() float64 {
	if len(c.samples) == 0 {
		return 100
	}
	return float64(c.offset) / float64(len(c.samples)) * 100
}

// MimeType is the wire tag for raw 16-bit PCM at the given rate.
func MimeType(rate int) string {
	return fmt.Sprintf("audio/pcm;rate=%d", rate)
}
