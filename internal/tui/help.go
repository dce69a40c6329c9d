package tui

import (
	"strings"
)

type helpItem struct {
	key  string
	desc string
}

var menuHelp = []helpItem{
	{"↑/↓", "Select"},
	{"Enter", "Open"},
	{"q / Ctrl+C", "Quit"},
}

var formHelp = []helpItem{
	{"Tab/↑/↓", "Next field"},
	{"Enter", "Next / Apply"},
	{"Ctrl+S", "Apply"},
	{"Esc", "Cancel"},
}

// renderHelp renders a one-line key legend.
func renderHelp(items []helpItem) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = helpKeyStyle.Render(item.key) + " " + helpDescStyle.Render(item.desc)
	}
	return strings.Join(parts, dimmedStyle.Render("  •  "))
}
