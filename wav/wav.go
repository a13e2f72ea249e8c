// Package wav encodes and decodes canonical uncompressed PCM WAVE files with
// the standard 44-byte header.
package wav

import (
	"encoding/binary"
	"fmt"
	"math"

	"minute/pcm"
)

const headerSize = 44

// Encode serializes the buffer as a 16-bit PCM WAVE file, keeping the source
// channel count and sample rate. Samples are scaled asymmetrically around
// zero (s*0x8000 for negative, s*0x7FFF for non-negative) so -1.0 maps to
// -32768 without overflow.
func Encode(b *pcm.Buffer) []byte {
	numChannels := b.NumChannels()
	numSamples := b.Len()
	dataSize := numSamples * numChannels * 2
	out := make([]byte, headerSize+dataSize)

	copy(out[0:4], "RIFF")
	binary.LittleEndian.PutUint32(out[4:8], uint32(36+dataSize))
	copy(out[8:12], "WAVE")

	copy(out[12:16], "fmt ")
	binary.LittleEndian.PutUint32(out[16:20], 16)
	binary.LittleEndian.PutUint16(out[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(out[22:24], uint16(numChannels))
	binary.LittleEndian.PutUint32(out[24:28], uint32(b.Rate))
	binary.LittleEndian.PutUint32(out[28:32], uint32(b.Rate*numChannels*2))
	binary.LittleEndian.PutUint16(out[32:34], uint16(numChannels*2))
	binary.LittleEndian.PutUint16(out[34:36], 16)

	copy(out[36:40], "data")
	binary.LittleEndian.PutUint32(out[40:44], uint32(dataSize))

	pos := headerSize
	for i := 0; i < numSamples; i++ {
		for _, ch := range b.Channels {
			binary.LittleEndian.PutUint16(
				out[pos:pos+2],
				uint16(scaleSample(ch[i])),
			)
			pos += 2
		}
	}

	return out
}

// scaleSample clamps to [-1, 1] and scales negative and non-negative samples
// by different factors so the full int16 range is used at both ends.
func scaleSample(s float32) int16 {
	if s > 1 {
		s = 1
	} else if s < -1 {
		s = -1
	}
	if s < 0 {
		return int16(math.Round(float64(s) * 0x8000))
	}
	return int16(math.Round(float64(s) * 0x7FFF))
}

// Decode parses a 16-bit PCM WAVE file produced by Encode (or any canonical
// 44-byte-header writer) back into a buffer.
func Decode(data []byte) (*pcm.Buffer, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("wav: file too short (%d bytes)", len(data))
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, fmt.Errorf("wav: missing RIFF/WAVE magic")
	}
	if format := binary.LittleEndian.Uint16(data[20:22]); format != 1 {
		return nil, fmt.Errorf("wav: unsupported format %d, want PCM", format)
	}
	if bits := binary.LittleEndian.Uint16(data[34:36]); bits != 16 {
		return nil, fmt.Errorf("wav: unsupported bit depth %d", bits)
	}

	numChannels := int(binary.LittleEndian.Uint16(data[22:24]))
	rate := int(binary.LittleEndian.Uint32(data[24:28]))
	dataSize := int(binary.LittleEndian.Uint32(data[40:44]))
	if numChannels == 0 || rate == 0 {
		return nil, fmt.Errorf(
			"wav: invalid header (channels=%d rate=%d)",
			numChannels, rate,
		)
	}
	if headerSize+dataSize > len(data) {
		dataSize = len(data) - headerSize
	}

	numSamples := dataSize / (numChannels * 2)
	channels := make([][]float32, numChannels)
	for c := range channels {
		channels[c] = make([]float32, numSamples)
	}

	pos := headerSize
	for i := 0; i < numSamples; i++ {
		for c := 0; c < numChannels; c++ {
			v := int16(binary.LittleEndian.Uint16(data[pos : pos+2]))
			channels[c][i] = unscaleSample(v)
			pos += 2
		}
	}

	return pcm.NewBuffer(channels, rate)
}

func unscaleSample(v int16) float32 {
	if v < 0 {
		return float32(v) / 0x8000
	}
	return float32(v) / 0x7FFF
}
