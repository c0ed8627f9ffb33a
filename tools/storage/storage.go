// Package storage supplies the static configuration data the planner reads
// at startup: the ingredient synonym table and, for offline runs, local
// recipe fixtures. All states are read-only blobs loaded once.
package storage

import (
	"context"
	"errors"
)

type SynonymState interface {
	Load(ctx context.Context) ([]byte, error)
}

type RecipeFixtureState interface {
	Load(ctx context.Context) ([]byte, error)
}

// TestSynonymState is a simple in-memory implementation for testing
type TestSynonymState struct {
	data []byte
	err  error
}

func NewTestSynonymState(data []byte) *TestSynonymState {
	return &TestSynonymState{data: data}
}

func NewTestSynonymStateWithError() *TestSynonymState {
	return &TestSynonymState{err: errors.New("not found")}
}

func (t *TestSynonymState) Load(ctx context.Context) ([]byte, error) {
	if t.err != nil {
		return nil, t.err
	}
	return t.data, nil
}

// TestRecipeFixtureState is a simple in-memory implementation for testing
type TestRecipeFixtureState struct {
	data []byte
	err  error
}

func NewTestRecipeFixtureState(data []byte) *TestRecipeFixtureState {
	return &TestRecipeFixtureState{data: data}
}

func NewTestRecipeFixtureStateWithError() *TestRecipeFixtureState {
	return &TestRecipeFixtureState{err: errors.New("not found")}
}

func (t *TestRecipeFixtureState) Load(ctx context.Context) ([]byte, error) {
	if t.err != nil {
		return nil, t.err
	}
	return t.data, nil
}
