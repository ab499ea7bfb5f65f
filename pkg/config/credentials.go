package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"RoomBooker/pkg/shared"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// CredentialsEnv holds a JSON object of username to password.
const CredentialsEnv = "CREDENTIALS"

// DefaultEnvFile is read for CREDENTIALS when it is not already set.
var DefaultEnvFile = filepath.Join("conf", ".env")

// LoadEnv loads path into the environment without overriding variables
// that are already set. A missing default file is not an error.
func LoadEnv(path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// CredentialsFromEnv parses CREDENTIALS from the environment.
func CredentialsFromEnv() ([]shared.Credential, error) {
	blob, ok := os.LookupEnv(CredentialsEnv)
	if !ok || blob == "" {
		return nil, &ValidationError{Field: CredentialsEnv, Reason: "is not set"}
	}
	return ParseCredentials(blob)
}

// ParseCredentials decodes {"user": "password", ...} keeping key order,
// which decides who books first.
func ParseCredentials(blob string) ([]shared.Credential, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(blob), &doc); err != nil {
		return nil, &ValidationError{Field: CredentialsEnv, Reason: "must be a JSON object: " + err.Error()}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, &ValidationError{Field: CredentialsEnv, Reason: "must be a JSON object of username to password"}
	}

	pairs := doc.Content[0].Content
	creds := make([]shared.Credential, 0, len(pairs)/2)
	seen := make(map[string]bool, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		user, pass := pairs[i], pairs[i+1]
		if user.Kind != yaml.ScalarNode || pass.Kind != yaml.ScalarNode || user.Value == "" {
			return nil, &ValidationError{Field: CredentialsEnv, Reason: fmt.Sprintf("entry %d is not a username/password pair", i/2+1)}
		}
		if seen[user.Value] {
			return nil, &ValidationError{Field: CredentialsEnv, Value: user.Value, Reason: "duplicate username"}
		}
		seen[user.Value] = true
		creds = append(creds, shared.Credential{Username: user.Value, Password: pass.Value})
	}

	if len(creds) == 0 {
		return nil, &ValidationError{Field: CredentialsEnv, Reason: "has no accounts"}
	}
	return creds, nil
}
