package explain

import (
	"fmt"
	"html"
	"math"
	"sort"
	"strings"
)

const (
	// MaxDisplay is the number of rows drawn; extra features are folded
	// into one "N other features" row.
	MaxDisplay = 15

	chartTitle = "How Job Description Keywords Impact the Match Score"

	chartWidth  = 800
	rowHeight   = 28
	labelWidth  = 260
	plotPadding = 40
	headerSpace = 60
	footerSpace = 60
)

type Contribution struct {
	Feature string  `json:"feature"`
	Value   float64 `json:"value"`
}

// Attribution is an additive explanation: Base plus every contribution
// equals Final.
type Attribution struct {
	Base          float64        `json:"base"`
	Final         float64        `json:"final"`
	Contributions []Contribution `json:"contributions"`
}

// rows returns the contributions ordered by magnitude, largest first, with
// everything past MaxDisplay-1 summed into a single trailing row.
func (a *Attribution) rows() []Contribution {
	sorted := make([]Contribution, len(a.Contributions))
	copy(sorted, a.Contributions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return math.Abs(sorted[i].Value) > math.Abs(sorted[j].Value)
	})
	if len(sorted) <= MaxDisplay {
		return sorted
	}

	keep := sorted[:MaxDisplay-1]
	var rest float64
	for _, c := range sorted[MaxDisplay-1:] {
		rest += c.Value
	}
	return append(keep, Contribution{
		Feature: fmt.Sprintf("%d other features", len(sorted)-len(keep)),
		Value:   rest,
	})
}

type bar struct {
	label    string
	value    float64
	from, to float64
}

func (a *Attribution) ChartWidth() int { return chartWidth }

// ChartHeight is the pixel height of the rendered chart.
func (a *Attribution) ChartHeight() int {
	return headerSpace + footerSpace + rowHeight*len(a.rows())
}

// SVG draws the attribution as a waterfall chart. Rows run from the largest
// contribution at the top down to the base value at the bottom axis.
func (a *Attribution) SVG() string {
	rows := a.rows()

	// accumulate from the bottom row up, starting at the base value
	bars := make([]bar, len(rows))
	cum := a.Base
	for i := len(rows) - 1; i >= 0; i-- {
		bars[i] = bar{label: rows[i].Feature, value: rows[i].Value, from: cum, to: cum + rows[i].Value}
		cum += rows[i].Value
	}

	lo, hi := math.Min(a.Base, a.Final), math.Max(a.Base, a.Final)
	for _, b := range bars {
		lo = math.Min(lo, math.Min(b.from, b.to))
		hi = math.Max(hi, math.Max(b.from, b.to))
	}
	if hi-lo < 1e-9 {
		hi = lo + 1
	}

	plotLeft := float64(labelWidth)
	plotRight := float64(chartWidth - plotPadding)
	x := func(v float64) float64 {
		return plotLeft + (v-lo)/(hi-lo)*(plotRight-plotLeft)
	}
	height := a.ChartHeight()
	axisY := headerSpace + rowHeight*len(rows)

	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="Helvetica, Arial, sans-serif">`,
		chartWidth, height, chartWidth, height)
	sb.WriteString(`<rect width="100%" height="100%" fill="#ffffff"/>`)
	fmt.Fprintf(&sb, `<text x="%d" y="28" font-size="14" text-anchor="middle">%s</text>`, chartWidth/2, html.EscapeString(chartTitle))
	fmt.Fprintf(&sb, `<text x="%.1f" y="48" font-size="11" fill="#555555" text-anchor="middle">f(x) = %.3f</text>`, x(a.Final), a.Final)

	for i, b := range bars {
		top := float64(headerSpace + i*rowHeight + 4)
		h := float64(rowHeight - 8)
		left, right := x(math.Min(b.from, b.to)), x(math.Max(b.from, b.to))
		if right-left < 1 {
			right = left + 1
		}
		color := "#ff0051"
		sign := "+"
		if b.value < 0 {
			color = "#008bfb"
			sign = "-"
		}
		fmt.Fprintf(&sb, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#dddddd" stroke-dasharray="2,2"/>`,
			plotLeft, top+h/2, plotRight, top+h/2)
		fmt.Fprintf(&sb, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`, left, top, right-left, h, color)
		fmt.Fprintf(&sb, `<text x="%d" y="%.1f" font-size="12" text-anchor="end">%s</text>`,
			labelWidth-8, top+h/2+4, html.EscapeString(b.label))
		fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" font-size="10" fill="%s">%s%.2f</text>`,
			right+4, top+h/2+4, color, sign, math.Abs(b.value))
	}

	fmt.Fprintf(&sb, `<line x1="%.1f" y1="%d" x2="%.1f" y2="%d" stroke="#333333"/>`, plotLeft, axisY, plotRight, axisY)
	fmt.Fprintf(&sb, `<line x1="%.1f" y1="%d" x2="%.1f" y2="%d" stroke="#888888" stroke-dasharray="4,3"/>`,
		x(a.Base), headerSpace, x(a.Base), axisY)
	fmt.Fprintf(&sb, `<text x="%.1f" y="%d" font-size="11" fill="#555555" text-anchor="middle">E[f(X)] = %.3f</text>`,
		x(a.Base), axisY+20, a.Base)
	sb.WriteString(`</svg>`)
	return sb.String()
}

// HTML wraps the chart in a minimal page for the rasteriser.
func (a *Attribution) HTML() string {
	return `<!DOCTYPE html><html><head><meta charset="utf-8">` +
		`<style>html,body{margin:0;padding:0;background:#fff}</style></head><body>` +
		a.SVG() + `</body></html>`
}
