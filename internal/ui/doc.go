// Package ui provides theme and color support for the service's terminal
// output. It owns the lipgloss palette and renders the startup banner, so
// the rest of the application never deals with escape codes directly.
package ui
