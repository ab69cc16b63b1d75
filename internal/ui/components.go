package ui

import (
	"fmt"

	"github.com/olivier-w/countup/internal/stats"
)

func renderChimeStatus(s stats.Settings) string {
	if !s.Sound {
		return "chime off"
	}
	return fmt.Sprintf("chime %d%%", int(s.ChimeVolume()*100))
}

func renderSubtitle(rows int, s stats.Settings) string {
	if s.ReducedMotion {
		return fmt.Sprintf("%d stats · reduced motion", rows)
	}
	return fmt.Sprintf("%d stats · scroll to reveal", rows)
}
