package style

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
)

// --- Reusable Colors ---
var (
	colorPink      = lipgloss.Color("205")
	colorDarkGray  = lipgloss.Color("240")
	colorLightGray = lipgloss.Color("229")
	colorBlue      = lipgloss.Color("57")
	colorCyan      = lipgloss.Color("212")
	colorPurple    = lipgloss.Color("99")
	colorRed       = lipgloss.Color("196")
	colorGreen     = lipgloss.Color("42")
)

// --- General Purpose Styles ---
var (
	ErrorStyle   = lipgloss.NewStyle().Foreground(colorRed)
	SuccessStyle = lipgloss.NewStyle().Foreground(colorGreen)
	HelpStyle    = lipgloss.NewStyle().Faint(true)
)

// --- Dialog Styles ---
var (
	DialogStyle        = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(colorDarkGray).Padding(0, 1)
	TitleStyle         = lipgloss.NewStyle().Bold(true).Foreground(colorPink)
	HighlightFontStyle = lipgloss.NewStyle().Foreground(colorCyan)
	ToggleStyle        = lipgloss.NewStyle().Foreground(colorDarkGray).Padding(0, 1)
	ActiveToggleStyle  = lipgloss.NewStyle().Foreground(colorLightGray).Background(colorBlue).Padding(0, 1)
	SeparatorStyle     = lipgloss.NewStyle().Foreground(colorDarkGray)
)

// --- List Styles ---
var (
	CursorStyle     = lipgloss.NewStyle().Foreground(colorCyan).SetString("> ")
	NoCursorStyle   = lipgloss.NewStyle().SetString("  ")
	SelectedStyle   = lipgloss.NewStyle().Foreground(colorCyan).SetString("[x] ")
	DeselectedStyle = lipgloss.NewStyle().SetString("[ ] ")
	DirStyle        = lipgloss.NewStyle().Foreground(colorPurple)
	DetailStyle     = lipgloss.NewStyle().Foreground(colorDarkGray)
	HeaderStyle     = lipgloss.NewStyle().Bold(true)
)

// --- Common Components ---

// NewSpinner creates a spinner with a consistent style.
func NewSpinner() spinner.Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(colorPink)
	return s
}
