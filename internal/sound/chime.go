// Package sound plays the short chime a counter makes when it settles.
package sound

import (
	"bytes"
	"sync"

	"github.com/ebitengine/oto/v3"
)

const (
	sampleRate   = 44100
	channelCount = 2
	bytesPerSec  = sampleRate * channelCount * 2
)

// Chime plays a short sound. Play must not block.
type Chime interface {
	Play()
}

// Silent is a Chime that does nothing.
type Silent struct{}

func (Silent) Play() {}

var (
	globalOtoCtx *oto.Context
	otoOnce      sync.Once
	otoInitErr   error
)

func initOto() (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channelCount,
			Format:       oto.FormatSignedInt16LE,
		}
		var ready chan struct{}
		globalOtoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr == nil {
			<-ready
		}
	})
	return globalOtoCtx, otoInitErr
}

// Player plays one preloaded sound through the shared audio context.
type Player struct {
	ctx    *oto.Context
	pcm    []byte
	volume float64

	mu      sync.Mutex
	playing []*oto.Player
	closed  bool
}

// NewChime loads the chime at path, or the synthesized bell when path is
// empty, and opens the audio device. volume is clamped to [0, 1].
func NewChime(path string, volume float64) (*Player, error) {
	pcm := Synthesize()
	if path != "" {
		var err error
		pcm, err = Decode(path)
		if err != nil {
			return nil, err
		}
	}
	ctx, err := initOto()
	if err != nil {
		return nil, err
	}
	return &Player{ctx: ctx, pcm: pcm, volume: min(max(volume, 0), 1)}, nil
}

// Play starts the sound and returns immediately. Overlapping plays mix.
func (p *Player) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.reap()
	op := p.ctx.NewPlayer(bytes.NewReader(p.pcm))
	op.SetVolume(p.volume)
	op.Play()
	p.playing = append(p.playing, op)
}

// Close stops every sound in flight. Later plays are ignored.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	for _, op := range p.playing {
		op.Pause()
		op.Close()
	}
	p.playing = nil
}

// reap closes players that have finished.
func (p *Player) reap() {
	live := p.playing[:0]
	for _, op := range p.playing {
		if op.IsPlaying() {
			live = append(live, op)
			continue
		}
		op.Close()
	}
	p.playing = live
}
