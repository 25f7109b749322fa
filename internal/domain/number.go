package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Value is a numeric cell that may be missing. The zero Value is missing.
type Value struct {
	Num   float64
	Valid bool
}

// Missing is the absent value.
var Missing = Value{}

// Known wraps a present number.
func Known(f float64) Value {
	return Value{Num: f, Valid: true}
}

// MarshalJSON encodes missing values as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.Num)
}

// UnmarshalJSON accepts a number or null.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Missing
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Known(f)
	return nil
}

// ParseNumber converts a pt-BR formatted cell ("1.234,5") into a Value.
// Empty cells, a lone "-" and anything that does not parse to a finite number
// are missing.
func ParseNumber(s string) Value {
	s = strings.TrimSpace(strings.TrimPrefix(s, "\ufeff"))
	if s == "" || s == "-" {
		return Missing
	}
	s = strings.ReplaceAll(s, ".", "")
	s = strings.Replace(s, ",", ".", 1)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return Missing
	}
	return Known(f)
}

// finite returns the present values, dropping missing ones.
func finite(values []Value) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if v.Valid && !math.IsNaN(v.Num) && !math.IsInf(v.Num, 0) {
			out = append(out, v.Num)
		}
	}
	return out
}
