// Package secrets retrieves signing secrets from SSM Parameter Store and
// caches them for the lifetime of the process.
package secrets

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"

	"github.com/jSherz/break-glass-access/internal/core"
)

// ssmAPI is the slice of the SSM client we use.
type ssmAPI interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

var _ core.ParameterStore = (*CachedParameterStore)(nil)

// CachedParameterStore looks up decrypted parameters and keeps them for the
// lifetime of the execution context. Values are never invalidated; a cached
// entry is immutable, so concurrent fills racing on the same name are
// harmless.
type CachedParameterStore struct {
	ssm ssmAPI

	mu    sync.RWMutex
	cache map[string]string
}

func NewCachedParameterStore(client ssmAPI) *CachedParameterStore {
	return &CachedParameterStore{
		ssm:   client,
		cache: make(map[string]string),
	}
}

func (s *CachedParameterStore) GetParameter(ctx context.Context, name string) (string, error) {
	s.mu.RLock()
	value, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return value, nil
	}

	result, err := s.ssm.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("fetching parameter %q: %w", name, err)
	}
	if result.Parameter == nil || result.Parameter.Value == nil {
		return "", fmt.Errorf("parameter %q has no value", name)
	}

	s.mu.Lock()
	s.cache[name] = *result.Parameter.Value
	s.mu.Unlock()

	return *result.Parameter.Value, nil
}
