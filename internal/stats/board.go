// Package stats loads the statistics board shown by countup.
package stats

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/olivier-w/countup/internal/counter"
	"github.com/olivier-w/countup/internal/spring"
	"gopkg.in/yaml.v3"
)

var (
	// ErrNoStats is returned for a board without any statistic.
	ErrNoStats = errors.New("board has no stats")
	// ErrUnknownMethod is returned for an unrecognized integration method.
	ErrUnknownMethod = errors.New("unknown spring method")
)

const defaultVolume = 0.5

// Board is a titled list of statistics.
type Board struct {
	Title    string   `yaml:"title"`
	Settings Settings `yaml:"settings"`
	Stats    []Stat   `yaml:"stats"`
}

// Settings are board-wide preferences.
type Settings struct {
	AnimationSpeed float64  `yaml:"animation_speed"`
	ReducedMotion  bool     `yaml:"reduced_motion"`
	Sound          bool     `yaml:"sound"`
	Chime          string   `yaml:"chime"`
	Volume         *float64 `yaml:"volume"`
	Margin         *float64 `yaml:"margin"`
	Method         string   `yaml:"method"`
}

// Stat is one counter on the board.
type Stat struct {
	Label    string   `yaml:"label"`
	End      float64  `yaml:"end"`
	Duration *float64 `yaml:"duration"`
	Prefix   string   `yaml:"prefix"`
	Suffix   string   `yaml:"suffix"`
}

// Load reads a board from a YAML file.
func Load(path string) (Board, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Board{}, fmt.Errorf("reading board: %w", err)
	}
	b, err := Parse(data)
	if err != nil {
		return Board{}, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// Parse decodes and validates a board. Unknown keys are rejected so typos
// do not silently fall back to defaults.
func Parse(data []byte) (Board, error) {
	var b Board
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&b); err != nil && !errors.Is(err, io.EOF) {
		return Board{}, fmt.Errorf("parsing board: %w", err)
	}
	if err := b.Validate(); err != nil {
		return Board{}, err
	}
	return b, nil
}

// Validate checks the parts of a board that cannot be normalized.
// Out-of-range numbers are left to the counters, which fall back to
// defaults on their own.
func (b Board) Validate() error {
	if len(b.Stats) == 0 {
		return ErrNoStats
	}
	if _, err := b.Settings.SpringMethod(); err != nil {
		return err
	}
	return nil
}

// Counter returns the counter configuration for s. A duration given as
// zero or less is passed on as invalid so the counter reports it.
func (s Stat) Counter() counter.Config {
	return counter.Config{
		End:      s.End,
		Duration: s.duration(),
		Prefix:   s.Prefix,
		Suffix:   s.Suffix,
	}
}

func (s Stat) duration() time.Duration {
	if s.Duration == nil {
		return 0
	}
	if d := counter.Seconds(*s.Duration); d > 0 {
		return d
	}
	return -1
}

// Counter returns the animation preferences.
func (s Settings) Counter() counter.Settings {
	return counter.Settings{
		AnimationSpeed: s.AnimationSpeed,
		ReducedMotion:  s.ReducedMotion,
	}
}

// MarginPx returns the visibility margin, defaulting to counter.DefaultMargin.
func (s Settings) MarginPx() float64 {
	if s.Margin == nil {
		return counter.DefaultMargin
	}
	return *s.Margin
}

// ChimeVolume returns the chime volume clamped to [0, 1].
func (s Settings) ChimeVolume() float64 {
	if s.Volume == nil {
		return defaultVolume
	}
	return min(max(*s.Volume, 0), 1)
}

// SpringMethod parses the integration method name.
func (s Settings) SpringMethod() (spring.Method, error) {
	switch strings.ToLower(strings.TrimSpace(s.Method)) {
	case "", "euler":
		return spring.Euler, nil
	case "analytic":
		return spring.Analytic, nil
	default:
		return 0, fmt.Errorf("%w: %q (want euler or analytic)", ErrUnknownMethod, s.Method)
	}
}

// Default returns the board shown when no file is given.
func Default() Board {
	return Board{
		Title: "About",
		Stats: []Stat{
			{Label: "Years building software", End: 8, Suffix: "+"},
			{Label: "Projects shipped", End: 42},
			{Label: "Open source commits", End: 12500, Suffix: "+"},
			{Label: "Countries visited", End: 17},
			{Label: "Lines of Go written", End: 180000, Suffix: "+", Duration: ptr(3.0)},
			{Label: "Coffee budget", End: 1200, Prefix: "$"},
			{Label: "Uptime", End: 99, Suffix: "%"},
			{Label: "Bugs introduced this year", End: -50},
		},
	}
}

func ptr[T any](v T) *T { return &v }
