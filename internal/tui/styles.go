package tui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	colorWhite     = lipgloss.Color("#FFFFFF")
	colorLightGray = lipgloss.Color("#CCCCCC")
	colorGray      = lipgloss.Color("#888888")
	colorDarkGray  = lipgloss.Color("#444444")
	colorPurple    = lipgloss.Color("#8524a6")
	colorBlue      = lipgloss.Color("#336791")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBlue).
			Align(lipgloss.Center).
			MarginTop(1).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(colorLightGray).
			Align(lipgloss.Center).
			MarginBottom(2)

	promptStyle = lipgloss.NewStyle().
			Foreground(colorLightGray)

	borderStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(colorGray)

	suggestionStyle = lipgloss.NewStyle().
			Foreground(colorDarkGray).
			Italic(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(colorGray).
			Italic(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorDarkGray).
			Italic(true).
			MarginTop(1)
)

const logo = `
                                                        _
   _ __   __ _ ___ _   _  __ _  __ _  ___  ___| |_
  | '_ \ / _' / __| | | |/ _' |/ _' |/ _ \/ __| __|
  | |_) | (_| \__ \ |_| | (_| | (_| |  __/\__ \ |_
  | .__/ \__, |___/\__,_|\__, |\__, |\___||___/\__|
  |_|    |___/           |___/ |___/
`
