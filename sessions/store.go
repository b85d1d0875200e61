package sessions

import "sync"

// Storage keys. They match the keys the web client historically used so a
// state file can be inspected and correlated with browser storage dumps.
const (
	KeyAccessToken  = "sgdl_access_token"
	KeyRefreshToken = "sgdl_refresh_token"
	KeyCurrentUser  = "sgdl_user"
)

// Store is a durable key-value holder for session state. Implementations
// must be safe for concurrent use. A Store never touches the network.
type Store interface {
	// Get returns the stored value, or ("", false) when the key is absent.
	Get(key string) (string, bool)
	// Set stores the value. Implementations persist immediately where they
	// can; persistence failure is a non-fatal degradation and must not lose
	// the in-memory value.
	Set(key, value string) error
	// Delete removes the key. Deleting an absent key is a no-op.
	Delete(key string) error
}

var _ Store = (*MemoryStore)(nil)

// MemoryStore holds session state in memory only. It is the degradation
// fallback when durable storage is unavailable: the session works normally
// but does not survive a process restart.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
