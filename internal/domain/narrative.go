package domain

import (
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Narrative renders a summary as short pt-BR sentences. Missing figures drop
// their sentence instead of printing a placeholder number. Years are passed as
// strings so the printer does not group their digits.
func Narrative(sum Summary) []string {
	p := message.NewPrinter(language.BrazilianPortuguese)

	var out []string
	if sum.Cases.Valid {
		out = append(out, p.Sprintf("%s registrou %d casos prováveis de dengue em %s.",
			sum.Place, int64(math.Round(sum.Cases.Num)), strconv.Itoa(sum.Year)))
	} else {
		out = append(out, p.Sprintf("%s • sem valor detectável para %s (provável ausência/ignorado).",
			sum.Place, strconv.Itoa(sum.Year)))
	}

	if sum.Share.Valid {
		out = append(out, p.Sprintf("Isso representa %.2f%% do total do Brasil no mesmo ano.", sum.Share.Num))
	}

	if sum.Trend.Valid {
		direction := "aumento"
		if sum.Trend.Num < 0 {
			direction = "redução"
		}
		out = append(out, p.Sprintf("Em relação a %s, houve %s de %.1f%%.",
			strconv.Itoa(sum.PreviousYear), direction, math.Abs(sum.Trend.Num)))
	}
	return out
}
