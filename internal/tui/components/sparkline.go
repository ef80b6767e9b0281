package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var levels = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline is a one-line scrolling chart of the last Width values.
type Sparkline struct {
	Data  []float64
	Width int
	Style lipgloss.Style
	Label string
	Unit  string
}

func NewSparkline(width int, label, unit string, style lipgloss.Style) Sparkline {
	return Sparkline{
		Width: width,
		Label: label,
		Unit:  unit,
		Style: style,
		Data:  make([]float64, 0, width),
	}
}

// Push appends v and drops values that scrolled out of the window.
func (s *Sparkline) Push(v float64) {
	s.Data = append(s.Data, v)
	if s.Width > 0 && len(s.Data) > s.Width {
		s.Data = s.Data[len(s.Data)-s.Width:]
	}
}

// Max is the largest visible value.
func (s Sparkline) Max() float64 {
	m := 0.0
	for _, v := range s.Data {
		if v > m {
			m = v
		}
	}
	return m
}

func (s Sparkline) Last() float64 {
	if len(s.Data) == 0 {
		return 0
	}
	return s.Data[len(s.Data)-1]
}

func (s Sparkline) View() string {
	if s.Width <= 0 {
		return ""
	}

	top := s.Max()

	var graph strings.Builder
	for _, v := range s.Data {
		idx := 0
		if top > 0 {
			idx = int(v / top * float64(len(levels)-1))
		}
		idx = max(0, min(idx, len(levels)-1))
		graph.WriteRune(levels[idx])
	}

	// Pad if not full
	if pad := s.Width - len(s.Data); pad > 0 {
		graph.WriteString(strings.Repeat(" ", pad))
	}

	header := fmt.Sprintf("%s  %.1f %s (max %.1f)", s.Label, s.Last(), s.Unit, top)
	return s.Style.Render(header) + "\n" + s.Style.Render(graph.String())
}
