package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const frameRate = 60

type frameMsg time.Time

func frameCmd() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}
