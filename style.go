package main

import "github.com/charmbracelet/lipgloss"

var (
	keyword   = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Render
	paragraph = lipgloss.NewStyle().Width(78).Padding(0, 0, 0, 2).Render

	errorLabel   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ED567A")).Bold(true).Render
	warningLabel = lipgloss.NewStyle().Foreground(lipgloss.Color("#ECFD65")).Render
	infoLabel    = lipgloss.NewStyle().Foreground(lipgloss.Color("#777777")).Render
	subtle       = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#909090", Dark: "#626262"}).Render
)
