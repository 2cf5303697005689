package importer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fotonlabs/cashflow/internal/model"
)

func newTestImporter(store *fakeEntryStore, vocab *fakeVocabStore, opts ...Option) *Importer {
	return New(store, vocab, &fakeUserDirectory{}, opts...)
}

func TestImportCleanBatch(t *testing.T) {
	store := &fakeEntryStore{}
	vocab := newFakeVocabStore([]string{"income", "expense"}, []string{"Alimentação"})
	pipeline := newTestImporter(store, vocab)

	content := "Data do Lançamento;Descrição;Valor;Tipo de Transação;Categoria\n" +
		"2024-08-19;Almoço;R$ 45,90;expense;Alimentação\n" +
		"2024-08-20;Consultoria;1.200,00;income;\n"

	result := pipeline.Import(context.Background(), Batch{
		Content:  content,
		Filename: "agosto.csv",
		Project:  "acme",
		Author:   "mariana",
	})

	require.Empty(t, result.Errors)
	assert.True(t, result.Success())
	assert.Equal(t, 2, result.ImportedCount)
	assert.True(t, store.committed)
	assert.False(t, store.rolledBack)

	require.Len(t, store.Saved, 2)
	assert.Equal(t, "Almoço", store.Saved[0].Subject)
	assert.Equal(t, "45.9", store.Saved[0].Amount.String())
	assert.Equal(t, "1200", store.Saved[1].Amount.String())
	assert.Equal(t, "acme", store.Saved[0].Project)
	assert.Equal(t, "agosto.csv", store.Saved[0].SourceFile)
}

func TestImportRollsBackOnAnyError(t *testing.T) {
	store := &fakeEntryStore{}
	vocab := newFakeVocabStore([]string{"income", "expense"}, nil)
	pipeline := newTestImporter(store, vocab)

	// Row 2 has a blank description, which the store rejects on save.
	content := "Descrição;Valor;Tipo de Transação\n" +
		";10,00;expense\n" +
		"Consultoria;20,00;income\n" +
		"Mercado;30,00;expense\n"

	result := pipeline.Import(context.Background(), Batch{
		Content:  content,
		Filename: "agosto.csv",
	})

	assert.False(t, result.Success())
	assert.Equal(t, 0, result.ImportedCount, "partial success is not a thing")
	assert.Empty(t, store.Saved)
	assert.True(t, store.rolledBack)
	assert.False(t, store.committed)

	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "row 2:")
	assert.Contains(t, result.Errors[0], "subject cannot be blank")
}

func TestImportFileValidation(t *testing.T) {
	tests := []struct {
		name    string
		batch   Batch
		wantErr string
	}{
		{
			name:    "blank content",
			batch:   Batch{Content: "   \n", Filename: "a.csv"},
			wantErr: "no file content provided",
		},
		{
			name:    "invalid utf-8",
			batch:   Batch{Content: "Descrição\n\xff\xfe\n", Filename: "a.csv"},
			wantErr: "not valid UTF-8",
		},
		{
			name:    "wrong extension",
			batch:   Batch{Content: "Descrição;Valor;Tipo de Transação\n", Filename: "a.xlsx"},
			wantErr: `invalid file format ".xlsx"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeEntryStore{}
			pipeline := newTestImporter(store, newFakeVocabStore(nil, nil))

			result := pipeline.Import(context.Background(), tt.batch)

			require.Len(t, result.Errors, 1)
			assert.Contains(t, result.Errors[0], tt.wantErr)
			assert.Zero(t, result.ImportedCount)
			assert.Empty(t, store.Saved, "no transaction should have started")
		})
	}
}

func TestImportMissingRequiredColumns(t *testing.T) {
	store := &fakeEntryStore{}
	pipeline := newTestImporter(store, newFakeVocabStore(nil, nil))

	result := pipeline.Import(context.Background(), Batch{
		Content:  "Data do Lançamento;Descrição\n2024-08-19;Almoço\n",
		Filename: "agosto.csv",
	})

	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "required columns are missing")
	assert.Contains(t, result.Errors[0], "Valor")
	assert.Contains(t, result.Errors[0], "Tipo de Transação")
	assert.Empty(t, store.Saved)
}

func TestImportVocabularyWriteFailureAborts(t *testing.T) {
	store := &fakeEntryStore{}
	vocab := newFakeVocabStore([]string{"income", "expense"}, nil)
	vocab.failWrites = true
	pipeline := newTestImporter(store, vocab)

	resolutions := model.Resolutions{}
	resolutions.Set(KeyCategory, "Viagens", model.ResolutionCreateNew)

	result := pipeline.Import(context.Background(), Batch{
		Content: "Descrição;Valor;Tipo de Transação;Categoria\n" +
			"Uber;30,00;expense;Viagens\n",
		Filename:    "agosto.csv",
		Resolutions: resolutions,
	})

	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "vocabulary update failed")
	assert.Zero(t, result.ImportedCount)
	assert.Empty(t, store.Saved, "vocabulary failures abort before any row is touched")
}

func TestImportCarriesNewVocabulary(t *testing.T) {
	store := &fakeEntryStore{}
	vocab := newFakeVocabStore([]string{"income", "expense"}, []string{"Alimentação"})
	pipeline := newTestImporter(store, vocab)

	resolutions := model.Resolutions{}
	resolutions.Set(KeyCategory, "Viagens", model.ResolutionCreateNew)

	result := pipeline.Import(context.Background(), Batch{
		Content: "Descrição;Valor;Tipo de Transação;Categoria\n" +
			"Uber;30,00;expense;Viagens\n",
		Filename:    "agosto.csv",
		Resolutions: resolutions,
	})

	require.Empty(t, result.Errors)
	assert.Equal(t, []string{"Viagens"}, result.NewlyCreatedCategories)
	assert.Empty(t, result.NewlyCreatedTypes)

	require.Len(t, store.Saved, 1)
	assert.Equal(t, []string{"Viagens"}, store.Saved[0].Categories)
}

func TestImportResolvesMultiValueCategoryCell(t *testing.T) {
	// Conflicts are keyed by the whole cell text, commas included, so both
	// resolution kinds must round-trip through the pipeline that way.
	t.Run("mapped cell takes the replacement", func(t *testing.T) {
		store := &fakeEntryStore{}
		vocab := newFakeVocabStore([]string{"income", "expense"}, []string{"Transporte"})
		pipeline := newTestImporter(store, vocab)

		resolutions := model.Resolutions{}
		resolutions.Set(KeyCategory, "Viagens, Praia", "Transporte")

		result := pipeline.Import(context.Background(), Batch{
			Content: "Descrição;Valor;Tipo de Transação;Categoria\n" +
				"Férias;800,00;expense;\"Viagens, Praia\"\n",
			Filename:    "agosto.csv",
			Resolutions: resolutions,
		})

		require.Empty(t, result.Errors)
		require.Len(t, store.Saved, 1)
		assert.Equal(t, []string{"Transporte"}, store.Saved[0].Categories)
		assert.Zero(t, vocab.writes, "a mapping mints nothing")
	})

	t.Run("create new mints the parts, not the compound", func(t *testing.T) {
		store := &fakeEntryStore{}
		vocab := newFakeVocabStore([]string{"income", "expense"}, []string{"Transporte"})
		pipeline := newTestImporter(store, vocab)

		resolutions := model.Resolutions{}
		resolutions.Set(KeyCategory, "Viagens, Praia", model.ResolutionCreateNew)

		result := pipeline.Import(context.Background(), Batch{
			Content: "Descrição;Valor;Tipo de Transação;Categoria\n" +
				"Férias;800,00;expense;\"Viagens, Praia\"\n",
			Filename:    "agosto.csv",
			Resolutions: resolutions,
		})

		require.Empty(t, result.Errors)
		assert.Equal(t, []string{"Praia", "Viagens"}, result.NewlyCreatedCategories)

		require.Len(t, store.Saved, 1)
		assert.Equal(t, []string{"Viagens", "Praia"}, store.Saved[0].Categories)
	})
}

func TestImportSkipsDuplicateRows(t *testing.T) {
	store := &fakeEntryStore{}
	vocab := newFakeVocabStore([]string{"income", "expense"}, []string{"Alimentação"})
	pipeline := newTestImporter(store, vocab)

	content := "Data do Lançamento;Descrição;Valor;Tipo de Transação;Categoria\n" +
		"2024-08-19;Almoço;R$ 45,90;expense;Alimentação\n" +
		"2024-08-20;Mercado;100,00;expense;Alimentação\n" +
		"2024-08-19;Almoço;R$ 45,90;expense;Alimentação\n"

	result := pipeline.Import(context.Background(), Batch{
		Content:  content,
		Filename: "agosto.csv",
	})

	require.Empty(t, result.Errors, "a duplicate is skipped, not an error")
	assert.Equal(t, 2, result.ImportedCount)
	require.Len(t, store.Saved, 2)
	assert.Equal(t, "Almoço", store.Saved[0].Subject)
	assert.Equal(t, "Mercado", store.Saved[1].Subject)
	assert.NotEmpty(t, store.Saved[0].Hash)
}

func TestImportSkipsRowsWithBlankType(t *testing.T) {
	store := &fakeEntryStore{}
	vocab := newFakeVocabStore([]string{"income", "expense"}, nil)
	pipeline := newTestImporter(store, vocab)

	content := "Descrição;Valor;Tipo de Transação\n" +
		"Almoço;10,00;expense\n" +
		"Fantasma;20,00;\n"

	result := pipeline.Import(context.Background(), Batch{
		Content:  content,
		Filename: "agosto.csv",
	})

	require.Empty(t, result.Errors)
	assert.Equal(t, 1, result.ImportedCount)
	require.Len(t, store.Saved, 1)
	assert.Equal(t, "Almoço", store.Saved[0].Subject)
}

func TestImportBeginTxFailure(t *testing.T) {
	store := &fakeEntryStore{beginErr: assert.AnError}
	pipeline := newTestImporter(store, newFakeVocabStore([]string{"expense"}, nil))

	result := pipeline.Import(context.Background(), Batch{
		Content:  "Descrição;Valor;Tipo de Transação\nAlmoço;10,00;expense\n",
		Filename: "agosto.csv",
	})

	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "failed to begin transaction")
}

func TestImportCommitFailure(t *testing.T) {
	store := &fakeEntryStore{commitErr: assert.AnError}
	pipeline := newTestImporter(store, newFakeVocabStore([]string{"expense"}, nil))

	result := pipeline.Import(context.Background(), Batch{
		Content:  "Descrição;Valor;Tipo de Transação\nAlmoço;10,00;expense\n",
		Filename: "agosto.csv",
	})

	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "failed to commit batch")
	assert.Zero(t, result.ImportedCount)
	assert.Empty(t, store.Saved)
}

func TestImportProgressCallback(t *testing.T) {
	var calls [][2]int
	store := &fakeEntryStore{}
	pipeline := newTestImporter(store, newFakeVocabStore([]string{"expense"}, nil),
		WithProgress(func(done, total int) {
			calls = append(calls, [2]int{done, total})
		}))

	content := "Descrição;Valor;Tipo de Transação\n" +
		"Almoço;10,00;expense\n" +
		"Mercado;20,00;expense\n" +
		"Uber;30,00;expense\n"

	result := pipeline.Import(context.Background(), Batch{
		Content:  content,
		Filename: "agosto.csv",
	})

	require.Empty(t, result.Errors)
	assert.Equal(t, [][2]int{{1, 3}, {2, 3}, {3, 3}}, calls)
}

func TestImportDefaultStatusOption(t *testing.T) {
	store := &fakeEntryStore{}
	pipeline := newTestImporter(store, newFakeVocabStore([]string{"expense"}, nil),
		WithDefaultStatus("pending"))

	result := pipeline.Import(context.Background(), Batch{
		Content:  "Descrição;Valor;Tipo de Transação\nAlmoço;10,00;expense\n",
		Filename: "agosto.csv",
	})

	require.Empty(t, result.Errors)
	require.Len(t, store.Saved, 1)
	assert.Equal(t, "pending", store.Saved[0].Status)
}

func TestPreviewUsesVocabularySnapshot(t *testing.T) {
	vocab := newFakeVocabStore([]string{"income", "expense"}, []string{"Alimentação"})
	pipeline := newTestImporter(&fakeEntryStore{}, vocab)

	content := "Descrição;Valor;Tipo de Transação;Categoria\n" +
		"Uber;30,00;despesa;Viagens\n"

	result, err := pipeline.Preview(context.Background(), content)
	require.NoError(t, err)
	require.True(t, result.HasConflicts())

	var keys []string
	for _, conflict := range result.Conflicts {
		keys = append(keys, conflict.ColumnKey)
	}
	assert.Contains(t, keys, KeyTransactionType)
	assert.Contains(t, keys, KeyCategory)
	assert.Zero(t, vocab.writes, "preview must not mutate the vocabulary")
}
