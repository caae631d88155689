package textgen

import (
	"context"
	"fmt"
	"strings"

	"github.com/abhisek/studyhall/internal/store"
)

// CredentialKey is the store key holding the user's API key.
const CredentialKey = "settings:credential"

// CredentialSource yields the API key for the next generation call.
// It returns ErrMissingCredential when none is available.
type CredentialSource interface {
	APIKey(ctx context.Context) (string, error)
}

type staticCredential string

func (s staticCredential) APIKey(context.Context) (string, error) {
	if s == "" {
		return "", ErrMissingCredential
	}
	return string(s), nil
}

// StoreCredentials reads the key saved by the user, falling back to the
// key from configuration.
type StoreCredentials struct {
	store    store.SessionStore
	fallback string
}

// NewStoreCredentials creates a StoreCredentials. fallback may be empty.
func NewStoreCredentials(s store.SessionStore, fallback string) *StoreCredentials {
	return &StoreCredentials{store: s, fallback: fallback}
}

func (c *StoreCredentials) APIKey(ctx context.Context) (string, error) {
	var key string
	found, err := store.GetValue(ctx, c.store, CredentialKey, &key)
	if err != nil {
		return "", fmt.Errorf("read credential: %w", err)
	}
	if found && strings.TrimSpace(key) != "" {
		return strings.TrimSpace(key), nil
	}
	if c.fallback != "" {
		return c.fallback, nil
	}
	return "", ErrMissingCredential
}

// Save stores key, replacing any previous one.
func (c *StoreCredentials) Save(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("API key is empty")
	}
	return store.SetValue(ctx, c.store, CredentialKey, key)
}

// Clear removes the stored key. The configured fallback still applies.
func (c *StoreCredentials) Clear(ctx context.Context) error {
	return c.store.Delete(ctx, CredentialKey)
}

// Stored reports whether the user saved a key of their own.
func (c *StoreCredentials) Stored(ctx context.Context) (bool, error) {
	var key string
	found, err := store.GetValue(ctx, c.store, CredentialKey, &key)
	if err != nil {
		return false, err
	}
	return found && key != "", nil
}

// Mask hides all but the last four characters of key.
func Mask(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
