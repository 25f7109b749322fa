package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseEntityKey(t *testing.T) {
	tests := []struct {
		raw  string
		want EntityKey
	}{
		{"110001 ALTA FLORESTA", EntityKey{Raw: "110001 ALTA FLORESTA", Code: 110001, HasCode: true, Name: "ALTA FLORESTA"}},
		{"1100015 ALTA FLORESTA", EntityKey{Raw: "1100015 ALTA FLORESTA", Code: 1100015, HasCode: true, Name: "ALTA FLORESTA"}},
		{"51 Mato Grosso", EntityKey{Raw: "51 Mato Grosso", Code: 51, HasCode: true, Name: "Mato Grosso"}},
		{" 11  Rondônia ", EntityKey{Raw: " 11  Rondônia ", Code: 11, HasCode: true, Name: "Rondônia"}},
		{"MUNICIPIO IGNORADO - RO", EntityKey{Raw: "MUNICIPIO IGNORADO - RO", Name: "MUNICIPIO IGNORADO - RO"}},
		{"Total", EntityKey{Raw: "Total", Name: "Total"}},
		{"1234 Odd", EntityKey{Raw: "1234 Odd", Name: "1234 Odd"}},
		{"51", EntityKey{Raw: "51", Name: "51"}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseEntityKey(tt.raw))
		})
	}
}

func TestEntityKey_IsMunicipality(t *testing.T) {
	assert.True(t, ParseEntityKey("110001 ALTA FLORESTA").IsMunicipality())
	assert.False(t, ParseEntityKey("11 Rondônia").IsMunicipality())
	assert.False(t, ParseEntityKey("MUNICIPIO IGNORADO - RO").IsMunicipality())
}

func TestParentStateCode(t *testing.T) {
	assert.Equal(t, 11, ParentStateCode(110001))
	assert.Equal(t, 51, ParentStateCode(510340))
	assert.Equal(t, 53, ParentStateCode(530010))
	assert.Equal(t, 11, ParentStateCode(1100015))

	for code := 110000; code <= 539999; code += 997 {
		assert.Equal(t, code/10000, ParentStateCode(code))
	}
}

func TestMunicipalityCode(t *testing.T) {
	assert.Equal(t, 510340, MunicipalityCode(5103403))
	assert.Equal(t, 510340, MunicipalityCode(510340))
	assert.Equal(t, 51, MunicipalityCode(51))
}

func TestNameKey(t *testing.T) {
	assert.Equal(t, NameKey("Rondônia"), NameKey("11 RONDONIA"))
	assert.Equal(t, NameKey("São Paulo"), NameKey("35 SAO PAULO"))
	assert.Equal(t, NameKey("CUIABÁ"), NameKey("510340 Cuiabá"))
	assert.NotEqual(t, NameKey("Goiás"), NameKey("Goiânia"))
	assert.Empty(t, NameKey("  "))
	assert.Empty(t, NameKey("51"))
}
