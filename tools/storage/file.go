package storage

import (
	"context"
	"os"
)

type FileSynonymState struct {
	FilePath string
}

func NewFileSynonymState(filePath string) *FileSynonymState {
	return &FileSynonymState{FilePath: filePath}
}

func (s *FileSynonymState) Load(ctx context.Context) ([]byte, error) {
	return os.ReadFile(s.FilePath)
}

type FileRecipeFixtureState struct {
	FilePath string
}

func NewFileRecipeFixtureState(filePath string) *FileRecipeFixtureState {
	return &FileRecipeFixtureState{FilePath: filePath}
}

func (s *FileRecipeFixtureState) Load(ctx context.Context) ([]byte, error) {
	return os.ReadFile(s.FilePath)
}
