package chatui

import "github.com/charmbracelet/lipgloss"

var (
	colorBlue   = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	colorGreen  = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	colorYellow = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	colorGray   = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	colorWhite  = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
)

type styles struct {
	user      lipgloss.Style
	assistant lipgloss.Style
	text      lipgloss.Style
	warning   lipgloss.Style
	sender    lipgloss.Style
	subject   lipgloss.Style
	unread    lipgloss.Style
	meta      lipgloss.Style
	hint      lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	role := r.NewStyle().Bold(true)
	return styles{
		user:      role.Foreground(colorBlue),
		assistant: role.Foreground(colorGreen),
		text:      r.NewStyle().Foreground(colorWhite),
		warning:   r.NewStyle().Foreground(colorYellow),
		sender:    r.NewStyle().Bold(true).Foreground(colorWhite),
		subject:   r.NewStyle().Foreground(colorWhite),
		unread:    r.NewStyle().Bold(true).Foreground(colorBlue),
		meta:      r.NewStyle().Foreground(colorGray),
		hint:      r.NewStyle().Foreground(colorGray).Italic(true),
	}
}
