package credentials

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/zalando/go-keyring"
)

const (
	UsernameKey = "username"
	PasswordKey = "password"
)

var ErrNotFound = errors.New("secret not found")

type Credentials struct {
	Username string
	Password string
}

// SecretStore is the small slice of an OS keychain we rely on. Get returns
// ErrNotFound when a key has never been set.
type SecretStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

type KeyringStore struct {
	Service string
}

func (ks KeyringStore) Get(key string) (string, error) {
	value, err := keyring.Get(ks.Service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	return value, err
}

func (ks KeyringStore) Set(key, value string) error {
	return keyring.Set(ks.Service, key, value)
}

type MemoryStore struct {
	m    sync.Mutex
	data map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string]string{}}
}

func (ms *MemoryStore) Get(key string) (string, error) {
	ms.m.Lock()
	defer ms.m.Unlock()
	value, ok := ms.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (ms *MemoryStore) Set(key, value string) error {
	ms.m.Lock()
	defer ms.m.Unlock()
	ms.data[key] = value
	return nil
}

type Prompter interface {
	Username() (string, error)
	Password() (string, error)
}

type Manager struct {
	Store    SecretStore
	Prompter Prompter
	Logger   *slog.Logger
}

func NewManager(store SecretStore, prompter Prompter) *Manager {
	return &Manager{
		Store:    store,
		Prompter: prompter,
		Logger:   slog.Default(),
	}
}

// GetOrPrompt reads the saved Steam login, asking for and saving any half that
// is missing. Nothing here checks the login against Steam.
func (m *Manager) GetOrPrompt() (Credentials, error) {
	var creds Credentials

	username, err := m.lookup(UsernameKey)
	if err != nil {
		return creds, err
	}
	if username == "" {
		username, err = m.Prompter.Username()
		if err != nil {
			return creds, fmt.Errorf("prompt for username: %w", err)
		}
		if err := m.Store.Set(UsernameKey, username); err != nil {
			return creds, fmt.Errorf("save username: %w", err)
		}
		m.logger().Debug("Saved Steam username", slog.String("username", username))
	}

	password, err := m.lookup(PasswordKey)
	if err != nil {
		return creds, err
	}
	if password == "" {
		password, err = m.Prompter.Password()
		if err != nil {
			return creds, fmt.Errorf("prompt for password: %w", err)
		}
		if err := m.Store.Set(PasswordKey, password); err != nil {
			return creds, fmt.Errorf("save password: %w", err)
		}
		m.logger().Debug("Saved Steam password")
	}

	creds.Username = username
	creds.Password = password
	return creds, nil
}

func (m *Manager) lookup(key string) (string, error) {
	value, err := m.Store.Get(key)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s from secret store: %w", key, err)
	}
	return value, nil
}

func (m *Manager) logger() *slog.Logger {
	if m.Logger == nil {
		return slog.Default()
	}
	return m.Logger
}
