package secrets

import (
	"errors"
	"regexp"
	"strings"

	"github.com/zalando/go-keyring"
)

// Service is the keyring service name passwords are stored under.
const Service = "stockq"

var ErrNotFound = errors.New("secret not found")

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

func sanitizeKey(key string) string {
	key = strings.TrimSpace(key)
	key = unsafeChars.ReplaceAllString(key, "_")
	if key == "" {
		return "empty"
	}
	return key
}

// Set stores the password for a connection profile.
func Set(profile, password string) error {
	return keyring.Set(Service, sanitizeKey(profile), password)
}

// Get returns the stored password for a connection profile.
func Get(profile string) (string, error) {
	v, err := keyring.Get(Service, sanitizeKey(profile))
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	return v, err
}

// Delete removes the stored password. Deleting a missing secret is not an error.
func Delete(profile string) error {
	err := keyring.Delete(Service, sanitizeKey(profile))
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}
