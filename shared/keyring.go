package shared

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "openai-realtime-cli"
	keyringUser    = "api_key"

	// EnvKeyAPIKey is checked before the OS keyring.
	EnvKeyAPIKey = "OPENAI_API_KEY"
)

// APIKey resolves the OpenAI API key: environment first, OS keyring second.
func APIKey() (string, error) {
	key, err := Getenv(GetenvString, EnvKeyAPIKey, false, "")
	if err != nil {
		return "", err
	}
	if key != "" {
		return key, nil
	}
	key, err = keyring.Get(keyringService, keyringUser)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrKeyNotFound
		}
		return "", fmt.Errorf("reading API key from keyring: %w", err)
	}
	return key, nil
}

// StoreAPIKey saves the key in the OS keyring.
func StoreAPIKey(key string) error {
	if key == "" {
		return ErrNoAPIKey
	}
	if err := keyring.Set(keyringService, keyringUser, key); err != nil {
		return fmt.Errorf("storing API key in keyring: %w", err)
	}
	return nil
}

// ClearAPIKey removes the key from the OS keyring.
func ClearAPIKey() error {
	if err := keyring.Delete(keyringService, keyringUser); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("removing API key from keyring: %w", err)
	}
	return nil
}
