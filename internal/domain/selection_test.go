package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("MUN")
	require.NoError(t, err)
	assert.Equal(t, LevelMunicipality, l)

	_, err = ParseLevel("region")
	assert.ErrorIs(t, err, ErrUnknownLevel)
}

func TestParseDimension(t *testing.T) {
	dim, err := ParseDimension("raca")
	require.NoError(t, err)
	assert.Equal(t, DimensionRace, dim)
	assert.Equal(t, "Raça/cor", dim.Label())
	assert.Equal(t, "Total", DimensionTotal.Label())

	_, err = ParseDimension("idade")
	assert.ErrorIs(t, err, ErrUnknownDimension)
}

func TestDefaultSelection(t *testing.T) {
	d := testDataset(t)
	sel := DefaultSelection(d, 2014, 51)

	assert.Equal(t, Selection{
		Level:         LevelState,
		Year:          2024,
		StateCode:     51,
		StateName:     "Mato Grosso",
		SelectedName:  BrazilName,
		Scope:         LevelState,
		SelectedValue: Known(1500),
		Dimension:     DimensionTotal,
		Category:      TotalKey,
		AgeBand:       "20-39",
	}, sel)
}

func TestDefaultSelection_PreferredStateAbsent(t *testing.T) {
	d := testDataset(t)
	sel := DefaultSelection(d, 2014, 99)
	assert.Equal(t, 52, sel.StateCode, "first state in pt-BR order")
	assert.Equal(t, "Goiás", sel.StateName)
}

func TestSelection_SetYear(t *testing.T) {
	d := testDataset(t)
	sel := testSelection(t, d)
	selectState(t, d, &sel, "Mato Grosso")

	require.NoError(t, sel.SetYear(d, 2023))
	assert.Equal(t, Known(250), sel.SelectedValue, "re-resolved by name for the new year")

	err := sel.SetYear(d, 1990)
	assert.ErrorIs(t, err, ErrUnknownYear)
	assert.Equal(t, 2023, sel.Year)
}

func TestSelection_SetLevel(t *testing.T) {
	d := testDataset(t)
	sel := testSelection(t, d)
	selectState(t, d, &sel, "São Paulo")
	assert.Equal(t, 35, sel.StateCode)

	require.NoError(t, sel.SetLevel(d, LevelMunicipality))
	assert.Equal(t, "São Paulo", sel.SelectedName)
	assert.Equal(t, Known(900), sel.SelectedValue)

	require.NoError(t, sel.SetLevel(d, LevelState))
	assert.Equal(t, BrazilName, sel.SelectedName)
	assert.Equal(t, Known(1500), sel.SelectedValue)

	assert.ErrorIs(t, sel.SetLevel(d, Level("x")), ErrUnknownLevel)
}

func TestSelection_SetState(t *testing.T) {
	d := testDataset(t)
	sel := testSelection(t, d)

	require.NoError(t, sel.SetState(d, 11))
	assert.Equal(t, "Rondônia", sel.StateName)
	assert.Equal(t, BrazilName, sel.SelectedName, "state level keeps its selection")

	require.NoError(t, sel.SetLevel(d, LevelMunicipality))
	require.NoError(t, sel.SetState(d, 52))
	assert.Equal(t, "Goiás", sel.SelectedName)
	assert.Equal(t, Known(80), sel.SelectedValue)

	assert.ErrorIs(t, sel.SetState(d, 77), ErrUnknownState)
}

func TestSelection_DimensionAndCategory(t *testing.T) {
	d := testDataset(t)
	sel := testSelection(t, d)

	require.NoError(t, sel.SetDimension(d, DimensionRace))
	assert.Equal(t, "Branca", sel.Category)
	require.NoError(t, sel.SetCategory(d, "Total"))
	assert.Equal(t, "Total", sel.Category)
	assert.ErrorIs(t, sel.SetCategory(d, "Masculino"), ErrUnknownCategory)

	require.NoError(t, sel.SetDimension(d, DimensionTotal))
	assert.Equal(t, TotalKey, sel.Category)

	assert.ErrorIs(t, sel.SetDimension(d, Dimension("idade")), ErrUnknownDimension)
}

func TestSelection_SetAgeBand(t *testing.T) {
	d := testDataset(t)
	sel := testSelection(t, d)

	require.NoError(t, sel.SetAgeBand(d, "<1 Ano"))
	assert.Equal(t, "<1 Ano", sel.AgeBand)
	assert.ErrorIs(t, sel.SetAgeBand(d, "80+"), ErrUnknownAgeBand)
}

func TestSelection_SelectUnresolvedFeature(t *testing.T) {
	d := testDataset(t)
	sel := testSelection(t, d)

	sel.SelectFeature(d, FeatureMatch{Name: "Atlantis", Strategy: MatchUnresolved})
	assert.Equal(t, "Atlantis", sel.SelectedName)
	assert.Equal(t, Missing, sel.SelectedValue)
	assert.Equal(t, 51, sel.StateCode)
}

func TestSelection_JSON(t *testing.T) {
	d := testDataset(t)
	sel := testSelection(t, d)
	sel.SelectFeature(d, FeatureMatch{Name: "Atlantis", Strategy: MatchUnresolved})

	b, err := json.Marshal(sel)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"selected_value":null`)
	assert.Contains(t, string(b), `"level":"UF"`)
}
