package sound

import (
	"encoding/binary"
	"math"
)

const (
	bellLength   = 0.8
	bellFreq     = 1200.0
	bellOvertone = 2400.0
	bellMix      = 0.7
	silenceFloor = 0.001
)

// Synthesize renders the notification bell as 16-bit stereo PCM: a 1200 Hz
// tone with a short attack and exponential decay, plus a quieter octave
// that fades out sooner.
func Synthesize() []byte {
	frames := int(bellLength * sampleRate)
	out := make([]byte, frames*channelCount*2)
	for i := range frames {
		t := float64(i) / sampleRate
		v := math.Sin(2*math.Pi*bellFreq*t) * envelope(t, bellLength, 1)
		v += math.Sin(2*math.Pi*bellOvertone*t) * decay(t, 0.3, bellLength*0.8)
		s := toInt16(v * bellMix)
		off := i * channelCount * 2
		binary.LittleEndian.PutUint16(out[off:], uint16(s))
		binary.LittleEndian.PutUint16(out[off+2:], uint16(s))
	}
	return out
}

// envelope ramps linearly to peak over the first tenth of length, then
// decays exponentially to the silence floor at length.
func envelope(t, length, peak float64) float64 {
	attack := length * 0.1
	if t < attack {
		return peak * t / attack
	}
	return exponentialRamp(peak, silenceFloor, (t-attack)/(length-attack))
}

// decay falls exponentially from start to the silence floor over length
// and is silent after.
func decay(t, start, length float64) float64 {
	if t >= length {
		return 0
	}
	return exponentialRamp(start, silenceFloor, t/length)
}

func exponentialRamp(from, to, frac float64) float64 {
	frac = min(max(frac, 0), 1)
	return from * math.Pow(to/from, frac)
}

func toInt16(v float64) int16 {
	v = min(max(v, -1), 1)
	return int16(math.Round(v * 32767))
}
