package audio

import (
	"encoding/binary"
	"time"
)

// FrameSamples is the sample count covering duration at the given rate and
// channel count.
func FrameSamples(duration time.Duration, rate, channels int) int {
	return int(duration.Seconds() * float64(channels) * float64(rate))
}

// BytesForDuration is the PCM16 byte count covering duration.
func BytesForDuration(duration time.Duration, rate, channels int) int {
	return FrameSamples(duration, rate, channels) * 2
}

// Duration reports how long the given PCM16 byte slice plays for.
func Duration(byteCount, rate, channels int) time.Duration {
	if rate == 0 || channels == 0 {
		return 0
	}
	samples := byteCount / 2
	return time.Duration(float64(samples) / float64(channels) / float64(rate) * float64(time.Second))
}

// Int16ToBytes converts samples to little-endian PCM16 bytes.
func Int16ToBytes(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

// BytesToInt16 converts little-endian PCM16 bytes to samples. A trailing
// odd byte is ignored.
func BytesToInt16(data []byte) []int16 {
	n := len(data) / 2
	out := make([]int16, n)
	for i := range n {
		out[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return out
}
