package dashboard

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"proby/internal/analytics"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// ValueColor цвет значения относительно диапазона порогов
func ValueColor(v float64, r analytics.Range, hasRange bool) lipgloss.Color {
	if !hasRange {
		return colorLabel
	}
	if v >= r.Min && v <= r.Max {
		return colorOk
	}
	if r.Severity == analytics.SeverityError {
		return colorCrit
	}
	return colorWarn
}

// chartBounds диапазон оси: ряд плюс пороги, с небольшим запасом
func chartBounds(s analytics.Series, r analytics.Range, hasRange bool) (float64, float64) {
	lo, hi := s.Min, s.Peak
	if hasRange {
		lo = math.Min(lo, r.Min)
		hi = math.Max(hi, r.Max)
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = 1
	}
	return lo - pad, hi + pad
}

// RenderSparkline рисует последние width точек ряда, окрашивая точки вне диапазона
func RenderSparkline(points []analytics.Point, width int, rangeMin, rangeMax float64, r analytics.Range, hasRange bool) string {
	if width <= 0 {
		return ""
	}

	dim := lipgloss.NewStyle().Foreground(colorFaint)

	if len(points) == 0 {
		return dim.Render(strings.Repeat("╌", width))
	}

	if len(points) > width {
		points = points[len(points)-width:]
	}

	span := rangeMax - rangeMin
	if span <= 0 {
		span = 1
	}

	var sb strings.Builder
	sb.WriteString(dim.Render(strings.Repeat("╌", width-len(points))))

	for _, p := range points {
		norm := (p.Value - rangeMin) / span
		norm = math.Max(0, math.Min(1, norm))

		idx := int(norm * 7)
		if idx > 7 {
			idx = 7
		}

		style := lipgloss.NewStyle().Foreground(ValueColor(p.Value, r, hasRange))
		if hasRange && r.Severity == analytics.SeverityError && p.Value > r.Max {
			style = style.Bold(true)
		}
		sb.WriteString(style.Render(string(sparkBlocks[idx])))
	}

	return sb.String()
}

// RenderTimeline подписи времени первой и последней точки под графиком
func RenderTimeline(points []analytics.Point, width int) string {
	if len(points) == 0 || width < len("15:04:05") {
		return ""
	}

	if len(points) > width {
		points = points[len(points)-width:]
	}

	first := points[0].Time.Format("15:04:05")
	last := points[len(points)-1].Time.Format("15:04:05")

	pad := width - len(points)
	line := strings.Repeat(" ", pad) + first
	if len(points) > 1 {
		gap := width - lipgloss.Width(line) - len(last)
		if gap >= 1 {
			line += strings.Repeat(" ", gap) + last
		}
	}
	if lipgloss.Width(line) > width {
		line = strings.Repeat(" ", width-len(last)) + last
	}

	return lipgloss.NewStyle().Foreground(colorTick).Render(line)
}

// RenderRangeScale шкала с отметками порогов и текущим значением
func RenderRangeScale(current, rangeMin, rangeMax float64, r analytics.Range, hasRange bool, width int) string {
	if width <= 0 {
		return ""
	}

	span := rangeMax - rangeMin
	if span <= 0 {
		span = 1
	}

	pos := func(v float64) int {
		p := int(float64(width-1) * (v - rangeMin) / span)
		if p < 0 {
			return 0
		}
		if p >= width {
			return width - 1
		}
		return p
	}

	minPos, maxPos := -1, -1
	if hasRange {
		minPos, maxPos = pos(r.Min), pos(r.Max)
	}
	curPos := pos(current)

	var sb strings.Builder
	for i := 0; i < width; i++ {
		switch {
		case i == curPos:
			sb.WriteString(lipgloss.NewStyle().Foreground(ValueColor(current, r, hasRange)).Bold(true).Render("◆"))
		case i == minPos || i == maxPos:
			sb.WriteString(lipgloss.NewStyle().Foreground(colorWarn).Render("▪"))
		case hasRange && i > minPos && i < maxPos:
			sb.WriteString(lipgloss.NewStyle().Foreground(colorOkDim).Render("·"))
		default:
			sb.WriteString(lipgloss.NewStyle().Foreground(colorFaint).Render("·"))
		}
	}

	return sb.String()
}
