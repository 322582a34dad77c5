package lfserver

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/lexforge/internal/automaton"
	"github.com/dekarrin/lexforge/internal/regex"
)

func buildTestAutomaton(t *testing.T) *automaton.Automaton {
	t.Helper()
	term, err := regex.Parse("a+")
	require.NoError(t, err)
	return automaton.Build(automaton.New([]string{"A"}, []*regex.Term{term}))
}

func testStores(t *testing.T) map[string]Store {
	t.Helper()
	sqliteStore, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	return map[string]Store{
		"mem":    NewMemStore(),
		"sqlite": sqliteStore,
	}
}

func TestStore_createAndGetByID(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			a := buildTestAutomaton(t)
			ctx := context.Background()

			cl, err := store.Create(ctx, "nums", "tokens", a)
			require.NoError(t, err)
			assert.Equal(t, "nums", cl.Name)

			fetched, err := store.GetByID(ctx, cl.ID)
			require.NoError(t, err)
			assert.Equal(t, cl.Name, fetched.Name)
			assert.Equal(t, a.NumStates(), fetched.Automaton.NumStates())
		})
	}
}

func TestStore_getByIDMissingReturnsNotFound(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			id, err := uuid.NewRandom()
			require.NoError(t, err)

			_, err = store.GetByID(context.Background(), id)
			assert.True(t, errors.Is(err, ErrNotFound))
		})
	}
}

func TestStore_getAllReturnsEveryCreated(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			a := buildTestAutomaton(t)
			ctx := context.Background()

			_, err := store.Create(ctx, "one", "tokens", a)
			require.NoError(t, err)
			_, err = store.Create(ctx, "two", "tokens", a)
			require.NoError(t, err)

			all, err := store.GetAll(ctx)
			require.NoError(t, err)
			assert.Len(t, all, 2)
		})
	}
}
