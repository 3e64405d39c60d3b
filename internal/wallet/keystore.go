package wallet

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/99designs/keyring"
	"go.uber.org/zap"

	"github.com/Mohsinsiddi/autosend/internal/logger"
)

const keychainService = "autosend"

var (
	// ErrKeyNotFound is returned when a key reference has no stored key.
	ErrKeyNotFound = errors.New("key not found")
	// ErrKeystoreUnavailable is returned when no keyring backend could be opened.
	ErrKeystoreUnavailable = errors.New("keystore not available")
)

// KeystoreBackend stores private keys by reference.
type KeystoreBackend interface {
	Store(name, hexKey string) (string, error)
	Retrieve(ref string) (string, error)
	Delete(ref string) error
}

// Keystore wraps OS keychain access.
type Keystore struct {
	ring    keyring.Keyring
	openErr error
}

// DefaultKeystore returns a keystore backed by the OS keychain.
func DefaultKeystore() *Keystore {
	cfg := keyring.Config{
		ServiceName:              keychainService,
		KeychainTrustApplication: true,
		FilePasswordFunc:         keyring.TerminalPrompt,
	}

	// On Linux without a GUI, fall back to file-based storage.
	if runtime.GOOS == "linux" {
		cfg.AllowedBackends = []keyring.BackendType{
			keyring.SecretServiceBackend,
			keyring.KWalletBackend,
			keyring.FileBackend,
		}
	}

	ring, err := keyring.Open(cfg)
	if err == nil {
		return &Keystore{ring: ring}
	}
	logger.Log.Debug("keychain backends unavailable, trying file backend", zap.Error(err))

	// Use file backend as ultimate fallback.
	ring, err = keyring.Open(keyring.Config{
		ServiceName:      keychainService,
		AllowedBackends:  []keyring.BackendType{keyring.FileBackend},
		FilePasswordFunc: keyring.TerminalPrompt,
	})
	if err != nil {
		logger.Log.Warn("no keyring backend available", zap.Error(err))
		return &Keystore{openErr: err}
	}
	return &Keystore{ring: ring}
}

// unavailable is the error returned by every operation on a keystore
// without a backend.
func (k *Keystore) unavailable() error {
	if k.openErr != nil {
		return fmt.Errorf("%w: %w", ErrKeystoreUnavailable, k.openErr)
	}
	return ErrKeystoreUnavailable
}

// NewKeystore wraps an already opened keyring.
func NewKeystore(ring keyring.Keyring) *Keystore {
	return &Keystore{ring: ring}
}

// RefFor returns the keychain reference a key named name is stored under.
func RefFor(name string) string {
	if strings.HasPrefix(name, keychainService+".") {
		return name
	}
	return keychainService + "." + name
}

// Store validates and saves a private key for name and returns its reference.
func (k *Keystore) Store(name, hexKey string) (string, error) {
	if k.ring == nil {
		return "", k.unavailable()
	}
	if _, err := ValidateKey(hexKey); err != nil {
		return "", err
	}
	ref := RefFor(name)
	err := k.ring.Set(keyring.Item{
		Key:   ref,
		Data:  []byte(stripHexPrefix(strings.TrimSpace(hexKey))),
		Label: "autosend signing key " + name,
	})
	if err != nil {
		return "", fmt.Errorf("keychain store: %w", err)
	}
	return ref, nil
}

// Retrieve fetches a private key by its reference.
func (k *Keystore) Retrieve(ref string) (string, error) {
	if k.ring == nil {
		return "", k.unavailable()
	}
	item, err := k.ring.Get(RefFor(ref))
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, ref)
	}
	if err != nil {
		return "", fmt.Errorf("keychain retrieve: %w", err)
	}
	return string(item.Data), nil
}

// Delete removes a stored key.
func (k *Keystore) Delete(ref string) error {
	if k.ring == nil {
		return k.unavailable()
	}
	err := k.ring.Remove(RefFor(ref))
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("%w: %s", ErrKeyNotFound, ref)
	}
	return err
}

// InMemoryKeystore stores keys in memory (for tests).
type InMemoryKeystore struct {
	data map[string]string
}

// NewInMemoryKeystore creates an in-memory keystore.
func NewInMemoryKeystore() *InMemoryKeystore {
	return &InMemoryKeystore{data: make(map[string]string)}
}

func (k *InMemoryKeystore) Store(name, hexKey string) (string, error) {
	if _, err := ValidateKey(hexKey); err != nil {
		return "", err
	}
	ref := RefFor(name)
	k.data[ref] = stripHexPrefix(strings.TrimSpace(hexKey))
	return ref, nil
}

func (k *InMemoryKeystore) Retrieve(ref string) (string, error) {
	v, ok := k.data[RefFor(ref)]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, ref)
	}
	return v, nil
}

func (k *InMemoryKeystore) Delete(ref string) error {
	ref = RefFor(ref)
	if _, ok := k.data[ref]; !ok {
		return fmt.Errorf("%w: %s", ErrKeyNotFound, ref)
	}
	delete(k.data, ref)
	return nil
}
