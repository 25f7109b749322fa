package domain

import (
	"fmt"
	"math"
	"sort"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultBins is the number of color classes on the map.
const DefaultBins = 5

// NoDataFill is the fill of regions without a value.
const NoDataFill = "rgba(255,255,255,.08)"

var (
	lowColor  = [3]float64{31, 140, 255}
	highColor = [3]float64{255, 61, 154}
)

// LegendItem is one bin of the map legend.
type LegendItem struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// QuantileBreaks returns k+1 non-decreasing thresholds splitting values into k
// bins of roughly equal population. Missing values are ignored; with no values
// at all the breaks are 0..k.
func QuantileBreaks(values []Value, k int) []float64 {
	if k < 1 {
		k = 1
	}
	v := finite(values)
	if len(v) == 0 {
		out := make([]float64, k+1)
		for i := range out {
			out[i] = float64(i)
		}
		return out
	}
	sort.Float64s(v)

	breaks := make([]float64, k+1)
	for i := 0; i <= k; i++ {
		p := float64(i) / float64(k)
		breaks[i] = v[int(math.Floor(p*float64(len(v)-1)))]
	}
	for i := 1; i < len(breaks); i++ {
		if breaks[i] < breaks[i-1] {
			breaks[i] = breaks[i-1]
		}
	}
	return breaks
}

// BinFor returns the bin of x: the first i with x <= breaks[i+1], or the last
// bin when x exceeds every break.
func BinFor(x float64, breaks []float64) int {
	k := len(breaks) - 1
	bin := 0
	for i := 0; i < k; i++ {
		bin = i
		if x <= breaks[i+1] {
			break
		}
	}
	return bin
}

// ColorFor maps a value onto the two-color gradient by its quantile bin.
func ColorFor(v Value, breaks []float64) string {
	if !v.Valid || math.IsNaN(v.Num) || math.IsInf(v.Num, 0) {
		return NoDataFill
	}
	return binColor(BinFor(v.Num, breaks), len(breaks)-1)
}

func binColor(bin, k int) string {
	t := 0.5
	if k > 1 {
		t = float64(bin) / float64(k-1)
	}
	var c [3]int
	for i := range c {
		c[i] = int(math.Round(lowColor[i] + (highColor[i]-lowColor[i])*t))
	}
	return fmt.Sprintf("rgba(%d,%d,%d,.68)", c[0], c[1], c[2])
}

// Legend describes each bin with a pt-BR formatted range and its color.
func Legend(breaks []float64) []LegendItem {
	p := message.NewPrinter(language.BrazilianPortuguese)
	k := len(breaks) - 1
	items := make([]LegendItem, 0, max(k, 0))
	for i := 0; i < k; i++ {
		a, b := breaks[i], breaks[i+1]
		items = append(items, LegendItem{
			Label: p.Sprintf("%d–%d", int64(math.Round(a)), int64(math.Round(b))),
			Color: ColorFor(Known((a+b)/2), breaks),
		})
	}
	return items
}
