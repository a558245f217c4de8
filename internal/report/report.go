// Package report renders a catalog snapshot as a styled terminal table.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/woozymasta/steamdex/internal/catalog"
	"github.com/woozymasta/steamdex/internal/models"
)

// Colors
var (
	Primary = lipgloss.Color("#7C3AED") // Purple
	Native  = lipgloss.Color("#06B6D4") // Cyan
	Other   = lipgloss.Color("#F59E0B") // Amber
	Muted   = lipgloss.Color("#6B7280") // Gray
)

// Styles
var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			MarginBottom(1)

	ColumnStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true)

	NativeStyle = lipgloss.NewStyle().Foreground(Native)
	OtherStyle  = lipgloss.NewStyle().Foreground(Other)

	MutedStyle = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true)

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Muted).
			Padding(0, 1)
)

const titleWidth = 40

// Write prints snap as a table: title, kind, playtime and last played.
func Write(w io.Writer, snap *catalog.Snapshot, now time.Time) error {
	var b strings.Builder

	natives := 0
	for _, g := range snap.Games {
		if g.IsNative {
			natives++
		}
	}

	b.WriteString(HeaderStyle.Render(fmt.Sprintf("%s games (%s Steam, %s non-Steam)",
		humanize.Comma(int64(snap.Len())),
		humanize.Comma(int64(natives)),
		humanize.Comma(int64(snap.Len()-natives)),
	)))
	b.WriteString("\n")

	if snap.Len() == 0 {
		b.WriteString(MutedStyle.Render("No games found. Is Steam installed?"))
		b.WriteString("\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	rows := []string{row(
		ColumnStyle.Render("Title"),
		ColumnStyle.Render("Kind"),
		ColumnStyle.Render("Playtime"),
		ColumnStyle.Render("Last played"),
	)}
	for _, g := range snap.Games {
		rows = append(rows, gameRow(g, now))
	}
	b.WriteString(PanelStyle.Render(strings.Join(rows, "\n")))
	b.WriteString("\n")

	if !snap.RefreshedAt.IsZero() {
		b.WriteString(MutedStyle.Render("scanned " + humanize.RelTime(snap.RefreshedAt, now, "ago", "from now")))
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func gameRow(g models.Game, now time.Time) string {
	kind := NativeStyle.Render("steam")
	if !g.IsNative {
		kind = OtherStyle.Render("shortcut")
	}

	return row(truncate(g.Title, titleWidth), kind, Playtime(g.PlaytimeMinutes), LastPlayed(g.LastPlayed, now))
}

func row(title, kind, playtime, last string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(titleWidth+2).Render(title),
		lipgloss.NewStyle().Width(10).Render(kind),
		lipgloss.NewStyle().Width(10).Render(playtime),
		last,
	)
}

// Playtime formats minutes as hours with thousands separators.
func Playtime(minutes int64) string {
	if minutes <= 0 {
		return "-"
	}
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	return humanize.Comma(minutes/60) + "h"
}

// LastPlayed formats an epoch relative to now.
func LastPlayed(epoch int64, now time.Time) string {
	if epoch <= 0 {
		return "never"
	}
	return humanize.RelTime(time.Unix(epoch, 0), now, "ago", "from now")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
