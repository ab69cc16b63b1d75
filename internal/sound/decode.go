package sound

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
)

// maxChime bounds how much of a chime file is kept.
const maxChime = 5 * bytesPerSec

var (
	// ErrUnsupportedFormat is returned for a chime file with an unknown extension.
	ErrUnsupportedFormat = errors.New("unsupported chime format")
	// ErrEmptyChime is returned when a file decodes to no audio.
	ErrEmptyChime = errors.New("chime has no audio")
)

// SupportedExts lists the chime file extensions Decode accepts.
func SupportedExts() []string {
	return []string{".mp3", ".wav", ".flac", ".ogg"}
}

// pcm is decoded audio: interleaved 16-bit samples.
type pcm struct {
	samples  []int16
	channels int
	rate     int
}

// Decode reads a chime file and returns it as 16-bit stereo PCM at the
// output rate, truncated to five seconds.
func Decode(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening chime: %w", err)
	}
	defer f.Close()

	var p pcm
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".mp3":
		p, err = decodeMP3(f)
	case ".wav":
		p, err = decodeWAV(f)
	case ".flac":
		p, err = decodeFLAC(f)
	case ".ogg":
		p, err = decodeOGG(f)
	default:
		return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedFormat, ext, strings.Join(SupportedExts(), ", "))
	}
	if err != nil {
		return nil, fmt.Errorf("decoding chime %s: %w", filepath.Base(path), err)
	}
	if len(p.samples) == 0 || p.channels <= 0 || p.rate <= 0 {
		return nil, ErrEmptyChime
	}
	out := p.toOutput()
	if len(out) > maxChime {
		out = out[:maxChime]
	}
	return out, nil
}

func decodeMP3(r io.Reader) (pcm, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return pcm{}, err
	}
	raw, err := io.ReadAll(io.LimitReader(dec, int64(maxChime)*4))
	if err != nil {
		return pcm{}, err
	}
	samples := make([]int16, len(raw)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(raw[i*2:]))
	}
	// go-mp3 always produces 16-bit stereo.
	return pcm{samples: samples, channels: 2, rate: dec.SampleRate()}, nil
}

func decodeWAV(r io.ReadSeeker) (pcm, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return pcm{}, fmt.Errorf("invalid WAV file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return pcm{}, fmt.Errorf("reading WAV PCM data: %w", err)
	}
	depth := int(dec.BitDepth)
	samples := make([]int16, len(buf.Data))
	for i, v := range buf.Data {
		switch depth {
		case 8:
			// 8-bit WAV is unsigned
			v = (v - 128) << 8
		case 24:
			v >>= 8
		case 32:
			v >>= 16
		}
		samples[i] = clamp16(v)
	}
	return pcm{samples: samples, channels: int(dec.NumChans), rate: int(dec.SampleRate)}, nil
}

func decodeFLAC(r io.Reader) (pcm, error) {
	stream, err := flac.New(r)
	if err != nil {
		return pcm{}, err
	}
	channels := int(stream.Info.NChannels)
	bps := int(stream.Info.BitsPerSample)
	var samples []int16
	for len(samples) < maxChime {
		frame, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return pcm{}, err
		}
		n := frame.Subframes[0].NSamples
		for i := range n {
			for ch := range channels {
				s := int(frame.Subframes[ch].Samples[i])
				switch {
				case bps > 16:
					s >>= bps - 16
				case bps < 16:
					s <<= 16 - bps
				}
				samples = append(samples, clamp16(s))
			}
		}
	}
	return pcm{samples: samples, channels: channels, rate: int(stream.Info.SampleRate)}, nil
}

func decodeOGG(r io.Reader) (pcm, error) {
	reader, err := oggvorbis.NewReader(r)
	if err != nil {
		return pcm{}, err
	}
	var samples []int16
	buf := make([]float32, 4096)
	for len(samples) < maxChime {
		n, err := reader.Read(buf)
		for _, s := range buf[:n] {
			samples = append(samples, toInt16(float64(s)))
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return pcm{}, err
		}
		if n == 0 {
			break
		}
	}
	return pcm{samples: samples, channels: reader.Channels(), rate: reader.SampleRate()}, nil
}

// toOutput maps channels to stereo and linearly resamples to the output
// rate, returning little-endian bytes.
func (p pcm) toOutput() []byte {
	inFrames := len(p.samples) / p.channels
	outFrames := int(int64(inFrames) * sampleRate / int64(p.rate))
	out := make([]byte, outFrames*channelCount*2)
	step := float64(p.rate) / sampleRate
	for i := range outFrames {
		pos := float64(i) * step
		j := int(pos)
		frac := pos - float64(j)
		k := min(j+1, inFrames-1)
		for ch := range channelCount {
			src := min(ch, p.channels-1)
			a := float64(p.samples[j*p.channels+src])
			b := float64(p.samples[k*p.channels+src])
			s := int16(a + (b-a)*frac)
			binary.LittleEndian.PutUint16(out[(i*channelCount+ch)*2:], uint16(s))
		}
	}
	return out
}

func clamp16(v int) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}
