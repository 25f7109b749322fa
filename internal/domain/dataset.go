package domain

import (
	"fmt"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Kind names one of the six exports the dashboard is built from.
type Kind string

const (
	KindStates         Kind = "estados"
	KindMunicipalities Kind = "municipios"
	KindSex            Kind = "sexo"
	KindRace           Kind = "raca"
	KindEducation      Kind = "escolaridade"
	KindAgeBands       Kind = "faixa_etaria"
)

// Kinds lists every required export.
var Kinds = []Kind{KindStates, KindMunicipalities, KindSex, KindRace, KindEducation, KindAgeBands}

// Columns names the key columns of the exports.
type Columns struct {
	StateKey        string `yaml:"state_key"`
	MunicipalityKey string `yaml:"municipality_key"`
	Year            string `yaml:"year"`
	AgeBand         string `yaml:"age_band"`
}

// DefaultColumns are the TabNet column titles.
var DefaultColumns = Columns{
	StateKey:        "UF de residência",
	MunicipalityKey: "Município de residência",
	Year:            "Ano notificação",
	AgeBand:         "Faixa Etária",
}

// Dataset holds everything parsed from one load.
type Dataset struct {
	States         *WideIndex
	Municipalities *WideIndex
	Sex            *LongSeries
	Race           *LongSeries
	Education      *LongSeries
	AgeBands       *Seasonality
}

// BuildDataset parses the raw text of every export. Any failure names the
// export it came from.
func BuildDataset(raw map[Kind]string, cols Columns) (*Dataset, error) {
	table := func(k Kind) (*Table, error) {
		text, ok := raw[k]
		if !ok {
			return nil, fmt.Errorf("%s: missing export", k)
		}
		t, err := ParseTable(text)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		return t, nil
	}
	wide := func(k Kind, keyColumn string) (*WideIndex, error) {
		t, err := table(k)
		if err != nil {
			return nil, err
		}
		idx, err := BuildWideIndex(t, keyColumn)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		return idx, nil
	}
	long := func(k Kind) (*LongSeries, error) {
		t, err := table(k)
		if err != nil {
			return nil, err
		}
		ls, err := BuildLongSeries(t, cols.Year)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		return ls, nil
	}

	var (
		d   Dataset
		err error
	)
	if d.States, err = wide(KindStates, cols.StateKey); err != nil {
		return nil, err
	}
	if d.Municipalities, err = wide(KindMunicipalities, cols.MunicipalityKey); err != nil {
		return nil, err
	}
	if d.Sex, err = long(KindSex); err != nil {
		return nil, err
	}
	if d.Race, err = long(KindRace); err != nil {
		return nil, err
	}
	if d.Education, err = long(KindEducation); err != nil {
		return nil, err
	}

	t, err := table(KindAgeBands)
	if err != nil {
		return nil, err
	}
	if d.AgeBands, err = BuildSeasonality(t, cols.AgeBand); err != nil {
		return nil, fmt.Errorf("%s: %w", KindAgeBands, err)
	}
	return &d, nil
}

// Index returns the wide index of a map level.
func (d *Dataset) Index(level Level) *WideIndex {
	if level == LevelMunicipality {
		return d.Municipalities
	}
	return d.States
}

// Long returns the long table behind a dimension; total has none.
func (d *Dataset) Long(dim Dimension) (*LongSeries, bool) {
	var ls *LongSeries
	switch dim {
	case DimensionSex:
		ls = d.Sex
	case DimensionRace:
		ls = d.Race
	case DimensionEducation:
		ls = d.Education
	}
	return ls, ls != nil
}

// Categories lists the selectable categories of a dimension.
func (d *Dataset) Categories(dim Dimension) []string {
	if dim == DimensionTotal {
		return []string{TotalKey}
	}
	ls, ok := d.Long(dim)
	if !ok {
		return nil
	}
	return append([]string(nil), ls.Categories...)
}

// Years returns the state table years from minYear on.
func (d *Dataset) Years(minYear int) []int {
	var out []int
	for _, y := range d.States.Years {
		if y >= minYear {
			out = append(out, y)
		}
	}
	return out
}

// StateOption is one entry of the state selector.
type StateOption struct {
	Code int    `json:"code"`
	Name string `json:"name"`
	Raw  string `json:"raw"`
}

// StateOptions returns the coded states sorted by name in pt-BR order.
func (d *Dataset) StateOptions() []StateOption {
	var out []StateOption
	for _, k := range d.States.Entities(isState) {
		out = append(out, StateOption{Code: k.Code, Name: k.Name, Raw: k.Raw})
	}
	c := collate.New(language.BrazilianPortuguese)
	sort.SliceStable(out, func(i, j int) bool {
		return c.CompareString(out[i].Name, out[j].Name) < 0
	})
	return out
}

// State finds a state by its two-digit code.
func (d *Dataset) State(code int) (StateOption, bool) {
	for _, k := range d.States.Entities(isState) {
		if k.Code == code {
			return StateOption{Code: k.Code, Name: k.Name, Raw: k.Raw}, true
		}
	}
	return StateOption{}, false
}

func isState(k EntityKey) bool {
	return k.HasCode && !k.IsMunicipality()
}

// ResolveSelected finds the index row behind the selected name. The lookup is
// by name, so it works for any year: the national selection is the Total row,
// a municipality is searched within the active state, and anything else among
// the states.
func (d *Dataset) ResolveSelected(s Selection) (*WideIndex, string, bool) {
	name := s.SelectedName
	switch {
	case name == "":
		return nil, "", false
	case NameKey(name) == NameKey(BrazilName):
		return d.States, TotalKey, true
	case s.Scope == LevelMunicipality:
		if k, ok := d.Municipalities.LookupByName(name, InState(s.StateCode)); ok {
			return d.Municipalities, k.Raw, true
		}
	default:
		if k, ok := d.States.LookupByName(name, isState); ok {
			return d.States, k.Raw, true
		}
	}
	return nil, "", false
}
