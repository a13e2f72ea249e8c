package pcm

import "math"

// Int16 converts a float sample to a 16-bit signed integer using symmetric
// scaling: round(clamp(s, -1, 1) * 32767). Both extremes map to ±32767.
func Int16(s float32) int16 {
	if s > 1 {
		s = 1
	} else if s < -1 {
		s = -1
	}
	return int16(math.Round(float64(s) * 32767))
}

// EncodeInt16LE converts samples to a little-endian 16-bit PCM byte stream.
func EncodeInt16LE(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		v := uint16(Int16(s))
		out[i*2] = byte(v)
		out[i*2+1] = byte(v >> 8)
	}
	return out
}
