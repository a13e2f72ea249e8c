package pcm

import "math"

// Resample converts b to the target sample rate using linear interpolation.
// The output length per channel is exactly ceil(n * target / source). When
// the rates already match, b itself is returned unchanged so callers can rely
// on the no-op being a pure pass-through.
func Resample(b *Buffer, targetRate int) *Buffer {
	if b.Rate == targetRate {
		return b
	}

	n := b.Len()
	outLen := int(math.Ceil(float64(n) * float64(targetRate) / float64(b.Rate)))
	ratio := float64(b.Rate) / float64(targetRate)

	channels := make([][]float32, len(b.Channels))
	for c, ch := range b.Channels {
		out := make([]float32, outLen)
		for i := range out {
			pos := float64(i) * ratio
			j := int(pos)
			if j >= n-1 {
				out[i] = ch[n-1]
				continue
			}
			frac := float32(pos - float64(j))
			out[i] = ch[j] + (ch[j+1]-ch[j])*frac
		}
		channels[c] = out
	}

	return &Buffer{Channels: channels, Rate: targetRate}
}
