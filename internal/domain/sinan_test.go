package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTable(t *testing.T) {
	t.Run("skips preamble", func(t *testing.T) {
		got, err := ExtractTable(statesCSV)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(got, `"UF de residência";"2013"`))
		assert.NotContains(t, got, "\r")
	})

	t.Run("idempotent on clean table", func(t *testing.T) {
		once, err := ExtractTable(statesCSV)
		require.NoError(t, err)
		twice, err := ExtractTable(once)
		require.NoError(t, err)
		assert.Equal(t, once, twice)
	})

	t.Run("strips byte order mark", func(t *testing.T) {
		got, err := ExtractTable("\ufeff\"A\";\"2024\"\n\"x\";\"1\"")
		require.NoError(t, err)
		assert.Equal(t, "\"A\";\"2024\"\n\"x\";\"1\"", got)
	})

	t.Run("quoted preamble line without delimiter is skipped", func(t *testing.T) {
		got, err := ExtractTable("\"Casos prováveis\"\n\"A\";\"2024\"\n")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(got, `"A";`))
	})

	t.Run("no header", func(t *testing.T) {
		_, err := ExtractTable("title\nsubtitle\nA;B\n1;2\n")
		assert.ErrorIs(t, err, ErrNoHeader)
	})

	t.Run("header past scan bound", func(t *testing.T) {
		text := strings.Repeat("preamble\n", HeaderScanLines) + "\"A\";\"2024\"\n"
		_, err := ExtractTable(text)
		assert.ErrorIs(t, err, ErrNoHeader)
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := ExtractTable("")
		assert.ErrorIs(t, err, ErrNoHeader)
	})
}

func TestParseTable(t *testing.T) {
	t.Run("drops footer block", func(t *testing.T) {
		table, err := ParseTable(statesCSV)
		require.NoError(t, err)
		assert.Equal(t, []string{"UF de residência", "2013", "2023", "2024"}, table.Columns)
		require.Len(t, table.Records, 5)
		assert.Equal(t, "Total", table.Records[4]["UF de residência"])
		for _, rec := range table.Records {
			assert.False(t, strings.HasPrefix(rec["UF de residência"], "Fonte"))
			assert.False(t, strings.HasPrefix(rec["UF de residência"], "Dados"))
		}
	})

	t.Run("english footer markers", func(t *testing.T) {
		text := "\"K\";\"2024\"\n\"a\";\"1\"\n\"Source: ministry\"\n\"b\";\"2\"\n"
		table, err := ParseTable(text)
		require.NoError(t, err)
		require.Len(t, table.Records, 1)
		assert.Equal(t, "a", table.Records[0]["K"])
	})

	t.Run("skips blank rows and tolerates short records", func(t *testing.T) {
		text := "\"K\";\"2023\";\"2024\"\n\n\"a\";\"1\"\n;;\n\"b\";\"2\";\"3\"\n"
		table, err := ParseTable(text)
		require.NoError(t, err)
		require.Len(t, table.Records, 2)
		assert.Equal(t, "1", table.Records[0]["2023"])
		_, present := table.Records[0]["2024"]
		assert.False(t, present)
		assert.Equal(t, "3", table.Records[1]["2024"])
	})

	t.Run("trims header names", func(t *testing.T) {
		table, err := ParseTable("\" K \";\" 2024 \"\n\"a\";\"1\"\n")
		require.NoError(t, err)
		assert.True(t, table.HasColumn("K"))
		assert.True(t, table.HasColumn("2024"))
		assert.False(t, table.HasColumn("2023"))
	})

	t.Run("no header", func(t *testing.T) {
		_, err := ParseTable("nothing to see")
		assert.ErrorIs(t, err, ErrNoHeader)
	})
}
