package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const secretKey = "JWT_SECRET"

// secretBytes is the size of a generated signing secret (512 bits).
const secretBytes = 64

// LoadOrCreateSecret returns the token signing secret. The environment
// variable JWT_SECRET wins; otherwise the dotenv file at path is consulted.
// When neither has a value a new random secret is generated and written to
// the file, keeping any other keys it already holds. The boolean reports
// whether a new secret was generated.
//
// The secret must stay stable across restarts or every issued token becomes
// unverifiable.
func LoadOrCreateSecret(path string) (string, bool, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return "", false, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", false, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if secret := v.GetString(secretKey); secret != "" {
		return secret, false, nil
	}

	secret, err := generateSecret()
	if err != nil {
		return "", false, err
	}
	v.Set(secretKey, secret)
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", false, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if err := v.WriteConfigAs(path); err != nil {
		return "", false, fmt.Errorf("failed to persist %s to %s: %w", secretKey, path, err)
	}
	return secret, true, nil
}

func generateSecret() (string, error) {
	b := make([]byte, secretBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
