package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/theirongolddev/snowball/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders a unicode sparkline from values.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	peak := values[0]
	for _, v := range values[1:] {
		peak = math.Max(peak, v)
	}
	if peak <= 0 {
		peak = 1
	}

	var buf strings.Builder
	for _, v := range values {
		idx := int(v / peak * float64(len(sparkBlocks)-1))
		buf.WriteRune(sparkBlocks[max(0, min(idx, len(sparkBlocks)-1))])
	}
	return lipgloss.NewStyle().Foreground(color).Background(theme.Active.Surface).Render(buf.String())
}

// scale picks a round tick step and the chart ceiling for peak, using at
// most maxTicks intervals.
func scale(peak float64, maxTicks int) (step, ceiling float64, ticks int) {
	if peak <= 0 {
		peak = 1
	}
	rough := peak / 5
	base := math.Pow(10, math.Floor(math.Log10(rough)))
	switch frac := rough / base; {
	case frac < 1.5:
		step = base
	case frac < 3.5:
		step = 2 * base
	default:
		step = 5 * base
	}
	for int(math.Ceil(peak/step)) > max(maxTicks, 2) {
		step *= 2
	}
	ticks = max(1, int(math.Ceil(peak/step)))
	return step, step * float64(ticks), ticks
}

// BarChart renders vertical bars with a y axis. When the bars cannot fit at
// two columns each, values are resampled to fit.
func BarChart(values []float64, labels []string, color lipgloss.Color, width, height int) string {
	if len(values) == 0 {
		return ""
	}
	if width < 15 || height < 3 {
		return Sparkline(values, color)
	}
	t := theme.Active

	peak := 0.0
	for _, v := range values {
		peak = math.Max(peak, v)
	}
	step, ceiling, ticks := scale(peak, height/2)

	rowsPerTick := max(2, height/ticks)
	chartH := rowsPerTick * ticks

	labelW := max(4, len(formatAxis(ceiling))+1)
	plotW := max(5, width-labelW-1)

	values, labels = fitBars(values, labels, plotW)
	n := len(values)
	gap := 0
	barW := plotW
	if n > 1 {
		gap = 1
		barW = min(6, (plotW-(n-1))/n)
	}
	axisLen := n*barW + (n-1)*gap

	axis := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	blank := lipgloss.NewStyle().Background(t.Surface)
	bar := lipgloss.NewStyle().Foreground(color).Background(t.Surface)
	partials := []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	var b strings.Builder
	for row := chartH; row >= 1; row-- {
		top := ceiling * float64(row) / float64(chartH)
		bottom := ceiling * float64(row-1) / float64(chartH)

		tick := ""
		if row%rowsPerTick == 0 {
			tick = formatAxis(step * float64(row/rowsPerTick))
		}
		b.WriteString(axis.Render(fmt.Sprintf("%*s│", labelW, tick)))

		for i, v := range values {
			if i > 0 {
				b.WriteString(blank.Render(strings.Repeat(" ", gap)))
			}
			switch {
			case v >= top:
				b.WriteString(bar.Render(strings.Repeat("█", barW)))
			case v > bottom:
				idx := int((v - bottom) / (top - bottom) * 8)
				b.WriteString(bar.Render(strings.Repeat(string(partials[max(1, min(idx, 8))]), barW)))
			default:
				b.WriteString(blank.Render(strings.Repeat(" ", barW)))
			}
		}
		b.WriteString("\n")
	}
	b.WriteString(axis.Render(fmt.Sprintf("%*s└%s", labelW, "0", strings.Repeat("─", axisLen))))

	if len(labels) == n {
		b.WriteString("\n")
		b.WriteString(blank.Render(strings.Repeat(" ", labelW+1)))
		b.WriteString(axis.Render(strings.TrimRight(axisLabels(labels, barW+gap, axisLen), " ")))
	}
	return b.String()
}

// fitBars resamples values (and labels) so each bar gets at least two columns.
func fitBars(values []float64, labels []string, plotW int) ([]float64, []string) {
	n := len(values)
	if n <= 1 || (plotW-(n-1))/n >= 2 {
		return values, labels
	}
	keep := max(2, (plotW+1)/3)
	outV := make([]float64, keep)
	var outL []string
	if len(labels) == n {
		outL = make([]string, keep)
	}
	for i := range outV {
		src := i * (n - 1) / (keep - 1)
		outV[i] = values[src]
		if outL != nil {
			outL[i] = labels[src]
		}
	}
	return outV, outL
}

// axisLabels lays labels out under their bars, skipping any that would
// overlap the previous one. The last label is always attempted.
func axisLabels(labels []string, pitch, axisLen int) string {
	buf := []byte(strings.Repeat(" ", axisLen))
	lastEnd := -1
	place := func(pos int, lbl string) {
		if pos+len(lbl) > axisLen {
			pos = axisLen - len(lbl)
		}
		if pos <= lastEnd || pos < 0 {
			return
		}
		copy(buf[pos:], lbl)
		lastEnd = pos + len(lbl)
	}
	for i := 0; i < len(labels)-1; i++ {
		place(i*pitch, labels[i])
	}
	place((len(labels)-1)*pitch, labels[len(labels)-1])
	return string(buf)
}

// formatAxis renders tick values compactly: 1500 -> "1.5k", 20000 -> "20k".
func formatAxis(v float64) string {
	unit := ""
	switch {
	case v >= 1e6:
		v, unit = v/1e6, "M"
	case v >= 1e3:
		v, unit = v/1e3, "k"
	case v < 1 && v > 0:
		return fmt.Sprintf("%.2f", v)
	}
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f%s", v, unit)
	}
	return fmt.Sprintf("%.1f%s", v, unit)
}
