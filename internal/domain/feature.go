package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MatchStrategy records how a map feature was tied to an indexed entity.
type MatchStrategy string

const (
	MatchCode       MatchStrategy = "code"
	MatchName       MatchStrategy = "name"
	MatchUnresolved MatchStrategy = "unresolved"
)

// CodeParser extracts an administrative code from a property value.
type CodeParser func(v any) (int, bool)

// CodeProbe is one ranked attempt at reading a feature's code.
type CodeProbe struct {
	Property string
	Parse    CodeParser
}

// FeatureProbes lists, per map level, the properties that may carry the IBGE
// code and the properties that may carry a display name, in priority order.
type FeatureProbes struct {
	Codes []CodeProbe
	Names []string
}

var (
	// StateProbes covers the state collections in common use.
	StateProbes = FeatureProbes{
		Codes: []CodeProbe{
			{"codigo_ibge", ParseCode},
			{"id", ParseCode},
			{"code", ParseCode},
			{"CODIGO", ParseCode},
		},
		Names: []string{"name", "nome", "state", "sigla"},
	}

	// MunicipalityProbes covers per-state municipality collections.
	MunicipalityProbes = FeatureProbes{
		Codes: []CodeProbe{
			{"id", ParseCode},
			{"codigo_ibge", ParseCode},
			{"cod_ibge", ParseCode},
			{"CD_MUN", ParseCode},
			{"cod", ParseCode},
		},
		Names: []string{"name", "nome", "NM_MUN", "description"},
	}
)

// ProbesFor returns the probes of a map level.
func ProbesFor(level Level) FeatureProbes {
	if level == LevelMunicipality {
		return MunicipalityProbes
	}
	return StateProbes
}

// ParseCode accepts integral JSON numbers and all-digit strings.
func ParseCode(v any) (int, bool) {
	switch x := v.(type) {
	case float64:
		if x <= 0 || x != math.Trunc(x) {
			return 0, false
		}
		return int(x), true
	case int:
		return x, x > 0
	case int64:
		return int(x), x > 0
	case json.Number:
		n, err := strconv.Atoi(x.String())
		return n, err == nil && n > 0
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, false
		}
		for _, r := range s {
			if r < '0' || r > '9' {
				return 0, false
			}
		}
		n, err := strconv.Atoi(s)
		return n, err == nil && n > 0
	}
	return 0, false
}

// ProbeCode returns the first code any probe can parse, in rank order.
func (p FeatureProbes) ProbeCode(props map[string]any) (code int, property string, ok bool) {
	for _, probe := range p.Codes {
		v, present := props[probe.Property]
		if !present {
			continue
		}
		if c, ok := probe.Parse(v); ok {
			return c, probe.Property, true
		}
	}
	return 0, "", false
}

// ProbeName returns the first non-empty name property.
func (p FeatureProbes) ProbeName(props map[string]any) string {
	for _, name := range p.Names {
		v, ok := props[name]
		if !ok || v == nil {
			continue
		}
		s := strings.TrimSpace(fmt.Sprint(v))
		if s != "" {
			return s
		}
	}
	return ""
}

// FeatureMatch is the outcome of resolving a map feature against an index.
type FeatureMatch struct {
	Entity   EntityKey     `json:"entity"`
	Name     string        `json:"name"`
	Strategy MatchStrategy `json:"strategy"`
	Property string        `json:"property,omitempty"`
}

// ResolveFeature ties feature properties to an entity of idx. The code probes
// run first; only when no probe yields a code present in idx does a name
// lookup run, and the result says which strategy succeeded. keep restricts the
// candidates (for instance to one state's municipalities).
func ResolveFeature(props map[string]any, probes FeatureProbes, idx *WideIndex, keep func(EntityKey) bool) FeatureMatch {
	m := FeatureMatch{Name: probes.ProbeName(props), Strategy: MatchUnresolved}

	if code, prop, ok := probes.ProbeCode(props); ok {
		if e, found := entityByCode(idx, code, keep); found {
			m.Entity, m.Strategy, m.Property = e, MatchCode, prop
			return m
		}
	}

	if m.Name != "" {
		if e, found := idx.LookupByName(m.Name, keep); found {
			m.Entity, m.Strategy = e, MatchName
		}
	}
	return m
}

func entityByCode(idx *WideIndex, code int, keep func(EntityKey) bool) (EntityKey, bool) {
	want := code
	if code >= 100000 {
		want = MunicipalityCode(code)
	}
	for _, e := range idx.Entities(keep) {
		if !e.HasCode {
			continue
		}
		got := e.Code
		if e.IsMunicipality() {
			got = MunicipalityCode(e.Code)
		}
		if got == want {
			return e, true
		}
	}
	return EntityKey{}, false
}
