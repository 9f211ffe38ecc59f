package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// BannerInfo is the data shown in the startup banner.
type BannerInfo struct {
	Version string
	Addr    string
	Shards  int
	Routes  []string
}

// RenderBanner renders the startup banner with the active theme.
func RenderBanner(info BannerInfo) string {
	theme := GetCurrentTheme()

	title := lipgloss.NewStyle().Bold(true).Foreground(theme.Accent).
		Render("fibseq " + info.Version)
	label := lipgloss.NewStyle().Foreground(theme.Dim)
	value := lipgloss.NewStyle().Foreground(theme.Text)
	route := lipgloss.NewStyle().Foreground(theme.Success)

	var lines []string
	lines = append(lines, title, "")
	lines = append(lines, label.Render("listening ")+value.Render(info.Addr))
	lines = append(lines, label.Render("shards    ")+value.Render(fmt.Sprint(info.Shards)))
	if len(info.Routes) > 0 {
		lines = append(lines, "")
		for _, r := range info.Routes {
			lines = append(lines, route.Render(r))
		}
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1)
	return box.Render(strings.Join(lines, "\n"))
}

// PrintBanner writes the rendered banner followed by a newline.
func PrintBanner(out io.Writer, info BannerInfo) {
	fmt.Fprintln(out, RenderBanner(info))
}
