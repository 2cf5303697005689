package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fotonlabs/cashflow/internal/model"
	"github.com/fotonlabs/cashflow/internal/service"
)

// fakeVocabStore is an in-memory VocabularyStore.
type fakeVocabStore struct {
	values     map[string][]string
	failWrites bool
	writes     int
}

func newFakeVocabStore(types, categories []string) *fakeVocabStore {
	return &fakeVocabStore{
		values: map[string][]string{
			service.FieldTransactionType: types,
			service.FieldCategory:        categories,
		},
	}
}

func (f *fakeVocabStore) PossibleValues(_ context.Context, field string) ([]string, error) {
	return append([]string(nil), f.values[field]...), nil
}

func (f *fakeVocabStore) SetPossibleValues(_ context.Context, field string, values []string) error {
	if f.failWrites {
		return errors.New("settings store unavailable")
	}
	f.writes++
	f.values[field] = append([]string(nil), values...)
	return nil
}

// fakeUserDirectory resolves names against a fixed user list.
type fakeUserDirectory struct {
	users []model.User
}

func (f *fakeUserDirectory) FindUserByName(_ context.Context, name string) (*model.User, error) {
	for i := range f.users {
		if f.users[i].Matches(name) {
			return &f.users[i], nil
		}
	}
	return nil, nil
}

// fakeEntryStore implements just enough of EntryStore for orchestrator tests.
// Saves buffer inside the fake transaction and only land in Saved on commit,
// mirroring the all-or-nothing contract of the real store.
type fakeEntryStore struct {
	Saved      []model.Entry
	beginErr   error
	commitErr  error
	committed  bool
	rolledBack bool
}

func (f *fakeEntryStore) SaveEntry(_ context.Context, entry *model.Entry) error {
	if err := fakeValidate(entry); err != nil {
		return err
	}
	f.Saved = append(f.Saved, *entry)
	return nil
}

func (f *fakeEntryStore) GetEntries(_ context.Context, _ service.EntryFilter) ([]model.Entry, error) {
	return append([]model.Entry(nil), f.Saved...), nil
}

func (f *fakeEntryStore) GetEntryByID(_ context.Context, id int64) (*model.Entry, error) {
	for i := range f.Saved {
		if f.Saved[i].ID == id {
			return &f.Saved[i], nil
		}
	}
	return nil, nil
}

func (f *fakeEntryStore) GetEntryCount(_ context.Context) (int, error) {
	return len(f.Saved), nil
}

func (f *fakeEntryStore) BeginTx(_ context.Context) (service.Tx, error) {
	if f.beginErr != nil {
		return nil, f.beginErr
	}
	return &fakeTx{store: f}, nil
}

func (f *fakeEntryStore) Migrate(_ context.Context) error { return nil }
func (f *fakeEntryStore) Close() error                    { return nil }

type fakeTx struct {
	store  *fakeEntryStore
	buffer []model.Entry
}

func (t *fakeTx) SaveEntry(_ context.Context, entry *model.Entry) error {
	if err := fakeValidate(entry); err != nil {
		return err
	}
	t.buffer = append(t.buffer, *entry)
	return nil
}

func (t *fakeTx) Commit() error {
	if t.store.commitErr != nil {
		return t.store.commitErr
	}
	t.store.committed = true
	t.store.Saved = append(t.store.Saved, t.buffer...)
	return nil
}

func (t *fakeTx) Rollback() error {
	t.store.rolledBack = true
	t.buffer = nil
	return nil
}

// fakeValidate mirrors the real store's validation surface: a blank subject
// is the canonical rejection.
func fakeValidate(entry *model.Entry) error {
	if entry == nil {
		return errors.New("entry cannot be nil")
	}
	if strings.TrimSpace(entry.Subject) == "" {
		return fmt.Errorf("invalid entry: subject cannot be blank")
	}
	return nil
}
