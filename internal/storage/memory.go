package storage

import (
	"context"
	"strings"
	"sync"

	"github.com/jSherz/break-glass-access/internal/core"
)

var _ core.DataStorage = (*InMemoryDataStorage)(nil)

// InMemoryDataStorage is used for unit / integration testing.
type InMemoryDataStorage struct {
	mu         sync.RWMutex
	principals map[string]string
	userAccess map[string]bool
}

func NewInMemoryDataStorage() *InMemoryDataStorage {
	return &InMemoryDataStorage{
		principals: make(map[string]string),
		userAccess: make(map[string]bool),
	}
}

func canAccessKey(accountID, permissionSetArn, principalID string) string {
	return strings.Join([]string{accountID, permissionSetArn, principalID}, "#")
}

func (s *InMemoryDataStorage) DefinePrincipal(external, principalID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.principals[external] = principalID
}

func (s *InMemoryDataStorage) DefineUserAccess(accountID, permissionSetArn, principalID string, allowed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userAccess[canAccessKey(accountID, permissionSetArn, principalID)] = allowed
}

func (s *InMemoryDataStorage) ResolvePrincipal(_ context.Context, external string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.principals[external], nil
}

func (s *InMemoryDataStorage) UserCanAccess(_ context.Context, accountID, permissionSetArn, principalID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userAccess[canAccessKey(accountID, permissionSetArn, principalID)], nil
}
