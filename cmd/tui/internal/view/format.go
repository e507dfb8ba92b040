package view

import (
	"context"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/MrJamesThe3rd/pairup/internal/matcher"
)

const dbTimeout = 5 * time.Second

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	faintStyle   = lipgloss.NewStyle().Faint(true)

	kindColors = map[matcher.Kind]lipgloss.Color{
		matcher.KindLeftOnly:  "214",
		matcher.KindRightOnly: "214",
		matcher.KindFuzzy:     "205",
		matcher.KindToken:     "141",
		matcher.KindManual:    "39",
		matcher.KindExact:     "46",
	}
)

// FormatKind renders a match kind in its status colour.
func FormatKind(k matcher.Kind) string {
	return lipgloss.NewStyle().Foreground(kindColors[k]).Render(k.String())
}

// FormatScore shows the similarity only for kinds that carry one.
func FormatScore(k matcher.Kind, score int) string {
	if k != matcher.KindToken && k != matcher.KindFuzzy {
		return ""
	}

	return strconv.Itoa(score) + "%"
}

// FormatSize formats a file size in bytes, e.g. "4.2 MB".
func FormatSize(bytes int64) string {
	if bytes <= 0 {
		return "-"
	}

	return humanize.Bytes(uint64(bytes))
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}
