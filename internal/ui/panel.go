package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/habits/internal/model"
)

// ProgressBar renders a bar of width cells followed by the percentage.
func ProgressBar(done, total, width int) string {
	t := Current()
	if width < 5 {
		width = 5
	}
	var filled, pct int
	if total > 0 {
		filled = int(float64(done) / float64(total) * float64(width))
		pct = int(float64(done) / float64(total) * 100)
	}
	if filled > width {
		filled = width
	}
	bar := strings.Repeat(t.Bar, filled) + strings.Repeat(t.BarEmpty, width-filled)
	return fmt.Sprintf("%s %3d%%", bar, pct)
}

// Panel frames lines in the current theme's border.
func Panel(lines []string) string {
	t := Current()
	return PanelStyle(t).Render(strings.Join(lines, "\n"))
}

// PanelStyle is the bordered box every panel uses.
func PanelStyle(t Theme) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(t.Border).
		BorderForeground(t.BorderColor).
		Padding(0, 1)
}

// Box renders a checkbox for done.
func Box(done bool) string {
	t := Current()
	if done {
		return t.Success.Render(t.BoxChecked)
	}
	return t.Muted.Render(t.BoxUnchecked)
}

// DayLabel renders a week row label such as "06/01 (Sat)".
func DayLabel(d model.Day) string {
	return fmt.Sprintf("%s (%s)", d.Short(), d.Weekday().String()[:3])
}

func OK(w io.Writer, msg string) {
	t := Current()
	fmt.Fprintln(w, t.Success.Render(t.SymDone+" "+msg))
}

func Fail(w io.Writer, msg string) {
	t := Current()
	sym := "✖"
	if t.Name == "mono" {
		sym = "!"
	}
	fmt.Fprintln(w, t.Error.Render(sym+" "+msg))
}
