package ui

import "github.com/charmbracelet/lipgloss"

// Colors.
var (
	normalDim = lipgloss.AdaptiveColor{Light: "#A49FA5", Dark: "#777777"}
	gray      = lipgloss.AdaptiveColor{Light: "#909090", Dark: "#626262"}
	fuchsia   = lipgloss.Color("#EE6FF8")
	cream     = lipgloss.AdaptiveColor{Light: "#FFFDF5", Dark: "#FFFDF5"}
	red       = lipgloss.AdaptiveColor{Light: "#FF4672", Dark: "#ED567A"}
	yellow    = lipgloss.AdaptiveColor{Light: "#C48A00", Dark: "#ECFD65"}
	green     = lipgloss.Color("#04B575")

	mintGreen = lipgloss.AdaptiveColor{Light: "#89F0CB", Dark: "#89F0CB"}
	darkGreen = lipgloss.AdaptiveColor{Light: "#1C8760", Dark: "#1C8760"}
	darkRed   = lipgloss.AdaptiveColor{Light: "#A3243F", Dark: "#8A2038"}
	pink      = lipgloss.AdaptiveColor{Light: "#FFC2D0", Dark: "#FFC2D0"}
)

var (
	errorTitleStyle = lipgloss.NewStyle().
			Foreground(cream).
			Background(red).
			Padding(0, 1)

	subtleStyle = lipgloss.NewStyle().
			Foreground(gray)

	logoStyle = lipgloss.NewStyle().
			Foreground(cream).
			Background(fuchsia).
			Bold(true)

	issueErrorStyle   = lipgloss.NewStyle().Foreground(red).Render
	issueWarningStyle = lipgloss.NewStyle().Foreground(yellow).Render
	issueInfoStyle    = lipgloss.NewStyle().Foreground(normalDim).Render
)

func tinoLogoView() string {
	return logoStyle.Render(" Tino ")
}
