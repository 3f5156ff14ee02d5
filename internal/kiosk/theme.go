package kiosk

import "github.com/charmbracelet/lipgloss"

// Theme is the colour palette of the kiosk.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	Price     lipgloss.Color
	Highlight lipgloss.Color
	SoldOut   lipgloss.Color

	// Commitment states.
	Pending     lipgloss.Color
	Invalidated lipgloss.Color

	// QR modules are painted dark on light whatever the terminal background.
	QRDark  lipgloss.Color
	QRLight lipgloss.Color

	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color
	ErrorText        lipgloss.Color
}

// DefaultTheme targets 256-colour terminals with a dark background.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	Price:     lipgloss.Color("114"), // green
	Highlight: lipgloss.Color("220"), // amber
	SoldOut:   lipgloss.Color("196"), // red

	Pending:     lipgloss.Color("114"),
	Invalidated: lipgloss.Color("208"), // orange

	QRDark:  lipgloss.Color("16"),
	QRLight: lipgloss.Color("231"),

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("241"),
	ErrorText:        lipgloss.Color("196"),
}
