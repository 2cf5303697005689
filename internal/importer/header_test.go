package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveHeaders(t *testing.T) {
	t.Run("portuguese headers", func(t *testing.T) {
		hm := ResolveHeaders([]string{"Data do Lançamento", "Descrição", "Valor", "Tipo de Transação", "Categoria"})

		assert.Equal(t, "Data do Lançamento", hm[KeyEntryDate])
		assert.Equal(t, "Valor", hm[KeyAmount])
		assert.Equal(t, "Categoria", hm[KeyCategory])
		assert.Empty(t, hm.MissingRequired())
	})

	t.Run("english aliases map to the same keys", func(t *testing.T) {
		hm := ResolveHeaders([]string{"Date", "Subject", "Value", "Type", "Category"})

		assert.Equal(t, "Value", hm[KeyAmount])
		assert.Equal(t, "Subject", hm[KeyDescription])
		assert.Equal(t, "Type", hm[KeyTransactionType])
		assert.Empty(t, hm.MissingRequired())
	})

	t.Run("matching is case-insensitive and trims", func(t *testing.T) {
		hm := ResolveHeaders([]string{" valor ", "DESCRIPTION", "type"})
		assert.Equal(t, " valor ", hm[KeyAmount])
		assert.Equal(t, "DESCRIPTION", hm[KeyDescription])
	})

	t.Run("missing required headers reported by preferred spelling", func(t *testing.T) {
		hm := ResolveHeaders([]string{"Date", "Category"})
		assert.Equal(t, []string{"Descrição", "Valor", "Tipo de Transação"}, hm.MissingRequired())
	})

	t.Run("unmatched columns are simply absent", func(t *testing.T) {
		hm := ResolveHeaders([]string{"Descrição", "Valor", "Tipo de Transação", "Mystery Column"})
		_, ok := hm[KeyCategory]
		assert.False(t, ok)
	})
}

func TestDetectSeparator(t *testing.T) {
	assert.Equal(t, ';', DetectSeparator("Data;Valor;Tipo"))
	assert.Equal(t, ',', DetectSeparator("Date,Amount,Type"))
	// Ties go to semicolon, the exporter's native dialect.
	assert.Equal(t, ';', DetectSeparator("Descrição"))
	assert.Equal(t, ',', DetectSeparator("a,b;c,d"))
}

func TestRowValues(t *testing.T) {
	columns := []string{"Valor", "Descrição", "Categoria"}

	t.Run("full record", func(t *testing.T) {
		row := rowValues(columns, []string{"10,00", "Almoço", "Alimentação"})
		assert.Equal(t, "Almoço", row["Descrição"])
	})

	t.Run("short record leaves trailing columns absent", func(t *testing.T) {
		row := rowValues(columns, []string{"10,00"})
		assert.Equal(t, "10,00", row["Valor"])
		_, ok := row["Categoria"]
		assert.False(t, ok)
	})
}

func TestHeaderMapValue(t *testing.T) {
	hm := ResolveHeaders([]string{"Valor"})
	row := Row{"Valor": "  12,50  "}

	value, ok := hm.Value(row, KeyAmount)
	assert.True(t, ok)
	assert.Equal(t, "12,50", value, "values are trimmed")

	_, ok = hm.Value(row, KeyCategory)
	assert.False(t, ok, "absent column reports not-ok")
}
