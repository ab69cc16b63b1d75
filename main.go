package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/countup/internal/ui"
)

func main() {
	log, logFile, err := openLog(os.Getenv("COUNTUP_LOG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	board, err := loadBoard(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if board.Title == "" {
		board.Title = defaultTitle
	}

	chime, closeChime := openChime(board.Settings, log)
	defer closeChime()

	model := ui.New(board, ui.WithChime(chime), ui.WithLogger(log))
	defer model.Close()

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := program.Run(); err != nil {
		log.Error().Err(err).Msg("program exited")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
