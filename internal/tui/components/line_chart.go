package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rgehrsitz/flipcalc/internal/tui/tuistyles"
)

// Series is one plotted line
type Series struct {
	Name   string
	Points []float64
	Color  lipgloss.TerminalColor
}

// LineChart plots one or more series against month numbers
type LineChart struct {
	Title  string
	Series []Series
	Width  int
	Height int
}

const yAxisWidth = 10

var seriesGlyphs = []rune{'●', '■', '▲', '♦'}

// NewLineChart creates an empty chart
func NewLineChart(title string) *LineChart {
	return &LineChart{Title: title, Width: 60, Height: 10}
}

// AddSeries adds a data series to the chart
func (c *LineChart) AddSeries(name string, points []float64, color lipgloss.TerminalColor) *LineChart {
	c.Series = append(c.Series, Series{Name: name, Points: points, Color: color})
	return c
}

// WithSize sets the chart dimensions
func (c *LineChart) WithSize(width, height int) *LineChart {
	c.Width = width
	c.Height = height
	return c
}

// Render returns the chart with a y axis and legend
func (c *LineChart) Render() string {
	points := 0
	for _, s := range c.Series {
		points = max(points, len(s.Points))
	}
	if points == 0 {
		return tuistyles.InfoStyle.Render("No data to display")
	}

	var out strings.Builder
	if c.Title != "" {
		out.WriteString(tuistyles.TitleStyle.Render(c.Title))
		out.WriteString("\n")
	}

	lo, hi := c.bounds()
	plotWidth := max(c.Width-yAxisWidth-3, 2)
	height := max(c.Height, 2)

	grid := make([][]rune, height)
	owner := make([][]int, height)
	for y := range grid {
		grid[y] = []rune(strings.Repeat(" ", plotWidth))
		owner[y] = make([]int, plotWidth)
	}

	for si, s := range c.Series {
		glyph := seriesGlyphs[si%len(seriesGlyphs)]
		for i, v := range s.Points {
			x := 0
			if len(s.Points) > 1 {
				x = int(math.Round(float64(i) / float64(len(s.Points)-1) * float64(plotWidth-1)))
			}
			y := height - 1 - int(math.Round((v-lo)/(hi-lo)*float64(height-1)))
			if y >= 0 && y < height {
				grid[y][x] = glyph
				owner[y][x] = si
			}
		}
	}

	axis := lipgloss.NewStyle().Foreground(tuistyles.ColorMuted).Width(yAxisWidth).Align(lipgloss.Right)
	for y, row := range grid {
		label := ""
		if y == 0 || y == height-1 || y == height/2 {
			label = formatAxisValue(hi - float64(y)/float64(height-1)*(hi-lo))
		}
		out.WriteString(axis.Render(label))
		out.WriteString(" │ ")
		for x, r := range row {
			if r == ' ' {
				out.WriteRune(r)
				continue
			}
			out.WriteString(lipgloss.NewStyle().Foreground(c.Series[owner[y][x]].Color).Render(string(r)))
		}
		out.WriteString("\n")
	}
	out.WriteString(strings.Repeat(" ", yAxisWidth+1))
	out.WriteString("└")
	out.WriteString(strings.Repeat("─", plotWidth+1))
	out.WriteString("\n")
	out.WriteString(strings.Repeat(" ", yAxisWidth+3))
	out.WriteString(tuistyles.SubtitleStyle.Render(fmt.Sprintf("month 1 … %d", points)))

	if len(c.Series) > 1 {
		out.WriteString("\n")
		out.WriteString(c.legend())
	}

	return out.String()
}

// bounds returns the plotted range, widened when every point is equal.
func (c *LineChart) bounds() (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range c.Series {
		for _, v := range s.Points {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if hi == lo {
		return lo - 1, hi + 1
	}
	return lo, hi
}

func (c *LineChart) legend() string {
	items := make([]string, len(c.Series))
	for i, s := range c.Series {
		glyph := lipgloss.NewStyle().Foreground(s.Color).Render(string(seriesGlyphs[i%len(seriesGlyphs)]))
		items[i] = glyph + " " + s.Name
	}
	return tuistyles.SubtitleStyle.Render(strings.Join(items, " • "))
}

func formatAxisValue(v float64) string {
	switch {
	case math.Abs(v) >= 1_000_000:
		return fmt.Sprintf("$%.1fM", v/1_000_000)
	case math.Abs(v) >= 1000:
		return fmt.Sprintf("$%.0fK", v/1000)
	default:
		return fmt.Sprintf("$%.0f", v)
	}
}
