package sessions

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"
)

const (
	stateFileName = "session.json"
	stateFileMode = 0o600
	scryptN       = 1 << 15
	scryptR       = 8
	scryptP       = 1
)

var _ Store = (*FileStore)(nil)

// FileStore persists session state to a single JSON file, optionally
// encrypted at rest. Every Set flushes the whole state; writes are atomic
// (write to a temp file, then rename).
//
// A flush failure marks the store as degraded and keeps the value in
// memory, so the session keeps working for the lifetime of the process but
// will not survive a restart. This mirrors the contract in Store.Set.
type FileStore struct {
	mu       sync.RWMutex
	path     string
	values   map[string]string
	key      []byte // nil when encryption is disabled
	degraded bool
}

// FileStoreOption configures a FileStore.
type FileStoreOption func(*FileStore)

// WithEncryptionPassphrase enables at-rest encryption of the state file.
// The key is derived with scrypt from the passphrase and a per-file salt.
func WithEncryptionPassphrase(passphrase string) FileStoreOption {
	return func(fs *FileStore) {
		if passphrase != "" {
			fs.key = []byte(passphrase)
		}
	}
}

// envelope is the on-disk format. Plaintext state lives in Values; an
// encrypted file carries the sealed JSON of Values in Sealed instead.
type envelope struct {
	Values map[string]string `json:"values,omitempty"`
	Salt   string            `json:"salt,omitempty"`
	Nonce  string            `json:"nonce,omitempty"`
	Sealed string            `json:"sealed,omitempty"`
}

// NewFileStore opens (or creates) the state file under folder. A corrupt or
// undecryptable state file is discarded rather than propagated: losing a
// persisted session is recoverable, refusing to start is not.
func NewFileStore(folder string, options ...FileStoreOption) (*FileStore, error) {
	if err := os.MkdirAll(folder, 0o700); err != nil {
		return nil, errors.Wrap(err, "[NewFileStore] os.MkdirAll")
	}
	fs := &FileStore{
		path:   filepath.Join(folder, stateFileName),
		values: make(map[string]string),
	}
	for _, opt := range options {
		opt(fs)
	}
	if err := fs.load(); err != nil {
		fs.values = make(map[string]string)
	}
	return fs, nil
}

// OpenStore returns a FileStore rooted at folder, falling back to a
// MemoryStore when the folder cannot be created or written. The bool result
// reports whether the returned store is durable.
func OpenStore(folder string, options ...FileStoreOption) (Store, bool) {
	fs, err := NewFileStore(folder, options...)
	if err != nil {
		return NewMemoryStore(), false
	}
	return fs, true
}

func (fs *FileStore) Get(key string) (string, bool) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	v, ok := fs.values[key]
	return v, ok
}

func (fs *FileStore) Set(key, value string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.values[key] = value
	fs.flush()
	return nil
}

func (fs *FileStore) Delete(key string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	delete(fs.values, key)
	fs.flush()
	return nil
}

// Degraded reports whether a flush has failed since the store was opened.
// A degraded store behaves like a MemoryStore from that point on.
func (fs *FileStore) Degraded() bool {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.degraded
}

func (fs *FileStore) load() error {
	raw, err := os.ReadFile(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(err, "[FileStore.load] os.ReadFile")
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return errors.Wrap(err, "[FileStore.load] json.Unmarshal")
	}
	if env.Sealed == "" {
		if env.Values != nil {
			fs.values = env.Values
		}
		return nil
	}
	if fs.key == nil {
		return errors.New("[FileStore.load] state file is encrypted but no passphrase configured")
	}
	values, err := fs.open(env)
	if err != nil {
		return err
	}
	fs.values = values
	return nil
}

// flush is called with fs.mu held.
func (fs *FileStore) flush() {
	env, err := fs.seal()
	if err != nil {
		fs.degraded = true
		return
	}
	raw, err := json.Marshal(env)
	if err != nil {
		fs.degraded = true
		return
	}
	tmp := fs.path + ".tmp"
	if err := os.WriteFile(tmp, raw, stateFileMode); err != nil {
		fs.degraded = true
		return
	}
	if err := os.Rename(tmp, fs.path); err != nil {
		fs.degraded = true
		return
	}
	fs.degraded = false
}

func (fs *FileStore) seal() (envelope, error) {
	if fs.key == nil {
		return envelope{Values: fs.values}, nil
	}
	plaintext, err := json.Marshal(fs.values)
	if err != nil {
		return envelope{}, errors.Wrap(err, "[FileStore.seal] json.Marshal")
	}
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return envelope{}, errors.Wrap(err, "[FileStore.seal] rand.Read salt")
	}
	aead, err := fs.aead(salt)
	if err != nil {
		return envelope{}, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return envelope{}, errors.Wrap(err, "[FileStore.seal] rand.Read nonce")
	}
	sealed := aead.Seal(nil, nonce, plaintext, nil)
	return envelope{
		Salt:   base64.StdEncoding.EncodeToString(salt),
		Nonce:  base64.StdEncoding.EncodeToString(nonce),
		Sealed: base64.StdEncoding.EncodeToString(sealed),
	}, nil
}

func (fs *FileStore) open(env envelope) (map[string]string, error) {
	salt, err := base64.StdEncoding.DecodeString(env.Salt)
	if err != nil {
		return nil, errors.Wrap(err, "[FileStore.open] decode salt")
	}
	nonce, err := base64.StdEncoding.DecodeString(env.Nonce)
	if err != nil {
		return nil, errors.Wrap(err, "[FileStore.open] decode nonce")
	}
	sealed, err := base64.StdEncoding.DecodeString(env.Sealed)
	if err != nil {
		return nil, errors.Wrap(err, "[FileStore.open] decode sealed")
	}
	aead, err := fs.aead(salt)
	if err != nil {
		return nil, err
	}
	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, errors.Wrap(err, "[FileStore.open] aead.Open")
	}
	values := make(map[string]string)
	if err := json.Unmarshal(plaintext, &values); err != nil {
		return nil, errors.Wrap(err, "[FileStore.open] json.Unmarshal")
	}
	return values, nil
}

func (fs *FileStore) aead(salt []byte) (cipher.AEAD, error) {
	derived, err := scrypt.Key(fs.key, salt, scryptN, scryptR, scryptP, chacha20poly1305.KeySize)
	if err != nil {
		return nil, errors.Wrap(err, "[FileStore.aead] scrypt.Key")
	}
	aead, err := chacha20poly1305.NewX(derived)
	if err != nil {
		return nil, errors.Wrap(err, "[FileStore.aead] chacha20poly1305.NewX")
	}
	return aead, nil
}
