package secrets

import (
	"context"
	"fmt"

	"github.com/jSherz/break-glass-access/internal/core"
)

var _ core.ParameterStore = (*InMemoryParameterStore)(nil)

// InMemoryParameterStore is used for unit / integration testing.
type InMemoryParameterStore struct {
	parameters map[string]string
}

func NewInMemoryParameterStore() *InMemoryParameterStore {
	return &InMemoryParameterStore{
		parameters: make(map[string]string),
	}
}

func (s *InMemoryParameterStore) DefineParameter(name, value string) {
	s.parameters[name] = value
}

func (s *InMemoryParameterStore) GetParameter(_ context.Context, name string) (string, error) {
	value, ok := s.parameters[name]
	if !ok {
		return "", fmt.Errorf("parameter %q not found", name)
	}
	return value, nil
}
