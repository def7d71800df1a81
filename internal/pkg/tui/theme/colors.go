package theme

import "github.com/charmbracelet/lipgloss"

// Brand
var (
	Accent       = lipgloss.Color("#A855F7")
	AccentBright = lipgloss.Color("#C084FC")
)

// Text and borders
var (
	White     = lipgloss.Color("#FFFFFF")
	LightGray = lipgloss.Color("#9CA3AF")
	DimGray   = lipgloss.Color("#6B7280")
	DarkGray  = lipgloss.Color("#374151")
)

// Engagement bands and grades
var (
	Success = lipgloss.Color("#22C55E") // high engagement, grade A
	Info    = lipgloss.Color("#3B82F6") // grade B
	Warning = lipgloss.Color("#F59E0B") // moderate engagement, grade C
	Error   = lipgloss.Color("#EF4444") // low engagement, grade D
)

// Label families
var (
	Disengaged = lipgloss.Color("#06B6D4")
	Phone      = lipgloss.Color("#F97316")
)
