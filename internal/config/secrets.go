package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultSecretsPath = "/var/run/secrets/febos"
	usernameFile       = "username"
	passwordFile       = "password"
)

// tryLoadFromSecrets attempts to read credentials from mounted Kubernetes secret files.
// A missing directory or file yields empty strings so env vars can take over.
func tryLoadFromSecrets() (username, password string, err error) {
	secretsPath := os.Getenv("FEBOS_SECRETS_PATH")
	if secretsPath == "" {
		secretsPath = defaultSecretsPath
	}

	if _, err := os.Stat(secretsPath); os.IsNotExist(err) {
		return "", "", nil
	}

	username, err = readSecret(secretsPath, usernameFile)
	if err != nil {
		return "", "", err
	}
	password, err = readSecret(secretsPath, passwordFile)
	if err != nil {
		return "", "", err
	}
	return username, password, nil
}

func readSecret(dir, name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
