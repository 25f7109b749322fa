package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/dengue-dashboard/internal/domain"
	"gopkg.in/yaml.v3"
)

// Manifest maps each export to its location and names the key columns.
// Locations are file paths relative to DATA_DIR, absolute paths or http(s) URLs.
type Manifest struct {
	Sources map[domain.Kind]string `yaml:"sources"`
	Columns domain.Columns         `yaml:"columns"`
}

// DefaultManifest is the layout of a TabNet download folder.
func DefaultManifest() *Manifest {
	return &Manifest{
		Sources: map[domain.Kind]string{
			domain.KindStates:         "dados-dengue-estados.csv",
			domain.KindMunicipalities: "dados-dengue-municipios.csv",
			domain.KindSex:            "dados-dengue-sexo.csv",
			domain.KindRace:           "dados-dengue-raca.csv",
			domain.KindEducation:      "dados-dengue-escolaridade.csv",
			domain.KindAgeBands:       "dados-dengue-faixa_etaria.csv",
		},
		Columns: domain.DefaultColumns,
	}
}

// LoadManifest reads a YAML manifest. Entries it leaves out keep their defaults.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return ParseManifest(data)
}

// ParseManifest decodes a YAML manifest over the defaults and validates it.
func ParseManifest(data []byte) (*Manifest, error) {
	var in Manifest
	if err := yaml.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	m := DefaultManifest()
	for k, loc := range in.Sources {
		if !knownKind(k) {
			return nil, fmt.Errorf("manifest: unknown source %q", k)
		}
		if strings.TrimSpace(loc) == "" {
			return nil, fmt.Errorf("manifest: empty location for %q", k)
		}
		m.Sources[k] = loc
	}
	if in.Columns.StateKey != "" {
		m.Columns.StateKey = in.Columns.StateKey
	}
	if in.Columns.MunicipalityKey != "" {
		m.Columns.MunicipalityKey = in.Columns.MunicipalityKey
	}
	if in.Columns.Year != "" {
		m.Columns.Year = in.Columns.Year
	}
	if in.Columns.AgeBand != "" {
		m.Columns.AgeBand = in.Columns.AgeBand
	}
	return m, nil
}

// Locations resolves every source against dataDir.
func (m *Manifest) Locations(dataDir string) map[domain.Kind]string {
	out := make(map[domain.Kind]string, len(m.Sources))
	for k, loc := range m.Sources {
		out[k] = ResolveLocation(dataDir, loc)
	}
	return out
}

// ResolveLocation leaves URLs and absolute paths alone and joins relative paths to dataDir.
func ResolveLocation(dataDir, loc string) string {
	if IsURL(loc) || filepath.IsAbs(loc) {
		return loc
	}
	return filepath.Join(dataDir, loc)
}

// IsURL reports whether loc is an http(s) URL.
func IsURL(loc string) bool {
	return strings.HasPrefix(loc, "http://") || strings.HasPrefix(loc, "https://")
}

func knownKind(k domain.Kind) bool {
	for _, known := range domain.Kinds {
		if k == known {
			return true
		}
	}
	return false
}
