package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/olivier-w/countup/internal/sound"
	"github.com/olivier-w/countup/internal/stats"
	"github.com/rs/zerolog"
)

const defaultTitle = "countup"

// openLog returns a debug logger writing to path, or a disabled logger when
// path is empty. The returned closer is never nil.
func openLog(path string) (zerolog.Logger, io.Closer, error) {
	if path == "" {
		return zerolog.Nop(), io.NopCloser(nil), nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), io.NopCloser(nil), fmt.Errorf("opening log: %w", err)
	}
	log := zerolog.New(f).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	return log, f, nil
}

// loadBoard reads the board named by the first argument, or the built-in
// board when there is none.
func loadBoard(args []string) (stats.Board, error) {
	if len(args) == 0 {
		return stats.Default(), nil
	}
	if len(args) > 1 {
		return stats.Board{}, fmt.Errorf("usage: countup [board.yaml]")
	}

	path := args[0]
	info, err := os.Stat(path)
	if err != nil {
		return stats.Board{}, err
	}
	if info.IsDir() {
		return stats.Board{}, fmt.Errorf("%s is a directory", path)
	}
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".yaml" && ext != ".yml" {
		return stats.Board{}, fmt.Errorf("unsupported board format %s (supported: .yaml, .yml)", ext)
	}

	board, err := stats.Load(path)
	if err != nil {
		return stats.Board{}, err
	}
	if board.Title == "" {
		board.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return board, nil
}

// openChime opens the settle chime. Audio problems are not fatal: they are
// logged and the board runs silently.
func openChime(s stats.Settings, log zerolog.Logger) (sound.Chime, func()) {
	if !s.Sound {
		return sound.Silent{}, func() {}
	}
	p, err := sound.NewChime(s.Chime, s.ChimeVolume())
	if err != nil {
		log.Warn().Err(err).Str("chime", s.Chime).Msg("chime disabled")
		return sound.Silent{}, func() {}
	}
	log.Debug().Str("chime", s.Chime).Float64("volume", s.ChimeVolume()).Msg("chime ready")
	return p, p.Close
}
