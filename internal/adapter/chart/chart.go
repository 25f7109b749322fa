// Package chart renders dashboard series as SVG.
package chart

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/couchcryptid/dengue-dashboard/internal/domain"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ErrNoData is returned when a series has no present value to draw.
var ErrNoData = errors.New("series has no data")

const (
	width       = 900
	height      = 360
	barWidth    = 40
	barSpacing  = 24
	headroom    = 1.1
	strokeWidth = 2
)

var (
	lineColor = drawing.Color{R: 31, G: 140, B: 255, A: 255}
	barColor  = drawing.Color{R: 255, G: 61, B: 154, A: 255}
)

// segment is a run of consecutive present points. XValues are point positions
// in the original series.
type segment struct {
	xs []float64
	ys []float64
}

// segments splits a series at missing values so gaps stay gaps.
func segments(s domain.Series) []segment {
	var out []segment
	var cur segment
	for i, p := range s.Points {
		if !p.Value.Valid {
			if len(cur.xs) > 0 {
				out = append(out, cur)
				cur = segment{}
			}
			continue
		}
		cur.xs = append(cur.xs, float64(i))
		cur.ys = append(cur.ys, p.Value.Num)
	}
	if len(cur.xs) > 0 {
		out = append(out, cur)
	}
	return out
}

func maxValue(s domain.Series) (float64, bool) {
	peak, ok := 0.0, false
	for _, p := range s.Points {
		if p.Value.Valid {
			peak = math.Max(peak, p.Value.Num)
			ok = true
		}
	}
	return peak, ok
}

func yRange(peak float64) *chart.ContinuousRange {
	if peak <= 0 {
		peak = 1
	}
	return &chart.ContinuousRange{Min: 0, Max: peak * headroom}
}

func formatter() chart.ValueFormatter {
	p := message.NewPrinter(language.BrazilianPortuguese)
	return func(v interface{}) string {
		if f, ok := v.(float64); ok {
			return p.Sprintf("%d", int64(math.Round(f)))
		}
		return fmt.Sprint(v)
	}
}

// RenderSeries draws a per-year line chart. Each run of present values is
// its own line; missing years leave a gap.
func RenderSeries(w io.Writer, s domain.Series) error {
	peak, ok := maxValue(s)
	if !ok {
		return fmt.Errorf("%s: %w", s.Label, ErrNoData)
	}

	style := chart.Style{
		StrokeColor: lineColor,
		StrokeWidth: strokeWidth,
		DotColor:    lineColor,
		DotWidth:    3,
	}
	var series []chart.Series
	for i, seg := range segments(s) {
		name := s.Label
		if i > 0 {
			name = ""
		}
		series = append(series, chart.ContinuousSeries{Name: name, XValues: seg.xs, YValues: seg.ys, Style: style})
	}

	// go-chart derives the x range from the tick span, so unlabeled ticks
	// half a step outside the points keep a lone year drawable.
	ticks := make([]chart.Tick, 0, len(s.Points)+2)
	ticks = append(ticks, chart.Tick{Value: -0.5})
	for i, p := range s.Points {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: p.Label})
	}
	ticks = append(ticks, chart.Tick{Value: float64(len(s.Points)) - 0.5})

	c := chart.Chart{
		Title:      s.Label,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Range: &chart.ContinuousRange{Min: -0.5, Max: float64(len(s.Points)) - 0.5},
			Ticks: ticks,
		},
		YAxis: chart.YAxis{
			Range:          yRange(peak),
			ValueFormatter: formatter(),
		},
		Series: series,
	}
	if err := c.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("render series %q: %w", s.Label, err)
	}
	return nil
}

// RenderSeasonality draws the monthly bars of one age band. Months without a
// value get no bar.
func RenderSeasonality(w io.Writer, s domain.Series) error {
	peak, ok := maxValue(s)
	if !ok {
		return fmt.Errorf("%s: %w", s.Label, ErrNoData)
	}

	bars := make([]chart.Value, 0, len(s.Points))
	for _, p := range s.Points {
		if !p.Value.Valid {
			continue
		}
		bars = append(bars, chart.Value{
			Label: p.Label,
			Value: p.Value.Num,
			Style: chart.Style{FillColor: barColor, StrokeColor: barColor},
		})
	}

	c := chart.BarChart{
		Title:      s.Label,
		Width:      width,
		Height:     height,
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		YAxis: chart.YAxis{
			Range:          yRange(peak),
			ValueFormatter: formatter(),
		},
		Bars: bars,
	}
	if err := c.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("render seasonality %q: %w", s.Label, err)
	}
	return nil
}
