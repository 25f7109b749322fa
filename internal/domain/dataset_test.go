package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDataset(t *testing.T) {
	d := testDataset(t)

	assert.Equal(t, 5, d.States.Len())
	assert.Equal(t, 7, d.Municipalities.Len())
	assert.Equal(t, []string{"Ignorado", "Masculino", "Feminino", "Total"}, d.Categories(DimensionSex))
	assert.Equal(t, []string{"Analfabeto", "Ensino médio completo", "Total"}, d.Categories(DimensionEducation))
	assert.Equal(t, []string{TotalKey}, d.Categories(DimensionTotal))
	assert.Equal(t, []int{2023, 2024}, d.Years(2014))
	assert.Equal(t, []int{2013, 2023, 2024}, d.Years(0))
	assert.Same(t, d.Municipalities, d.Index(LevelMunicipality))
	assert.Same(t, d.States, d.Index(LevelState))

	_, ok := d.Long(DimensionTotal)
	assert.False(t, ok)
}

func TestBuildDataset_Errors(t *testing.T) {
	t.Run("missing export", func(t *testing.T) {
		raw := testExports()
		delete(raw, KindRace)
		_, err := BuildDataset(raw, DefaultColumns)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "raca")
	})

	t.Run("header scan failure names the export", func(t *testing.T) {
		raw := testExports()
		raw[KindMunicipalities] = "<html>not found</html>"
		_, err := BuildDataset(raw, DefaultColumns)
		assert.ErrorIs(t, err, ErrNoHeader)
		assert.Contains(t, err.Error(), "municipios")
	})

	t.Run("wrong key column", func(t *testing.T) {
		cols := DefaultColumns
		cols.AgeBand = "Idade"
		_, err := BuildDataset(testExports(), cols)
		assert.ErrorIs(t, err, ErrMissingKeyColumn)
		assert.Contains(t, err.Error(), "faixa_etaria")
	})
}

func TestDataset_StateOptions(t *testing.T) {
	d := testDataset(t)

	var names []string
	for _, st := range d.StateOptions() {
		names = append(names, st.Name)
	}
	assert.Equal(t, []string{"Goiás", "Mato Grosso", "Rondônia", "São Paulo"}, names)

	st, ok := d.State(35)
	require.True(t, ok)
	assert.Equal(t, "35 São Paulo", st.Raw)
	_, ok = d.State(99)
	assert.False(t, ok)
}
