package storefakes

import (
	"errors"
	"sync"

	"github.com/sgdl/go-sgdl-client/sessions"
)

var _ sessions.Store = (*FakeStore)(nil)

// FakeStore is an in-memory sessions.Store that records mutations and can
// be told to fail, for exercising degradation paths in tests.
type FakeStore struct {
	mu       sync.RWMutex
	values   map[string]string
	SetCalls []string
	FailSets bool
}

func NewFakeStore() *FakeStore {
	return &FakeStore{values: make(map[string]string)}
}

func (f *FakeStore) Get(key string) (string, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.values[key]
	return v, ok
}

func (f *FakeStore) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SetCalls = append(f.SetCalls, key)
	if f.FailSets {
		return errFakeStoreSet
	}
	f.values[key] = value
	return nil
}

func (f *FakeStore) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.values, key)
	return nil
}

var errFakeStoreSet = errors.New("fake store: set failed")
