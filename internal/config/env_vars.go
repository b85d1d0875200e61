package config

import (
	"os"
	"path/filepath"
)

const (
	baseURLVar     = "SGDL_API_URL"
	appNameVar     = "SGDL_APP_NAME"
	stateFolderVar = "SGDL_STATE_FOLDER"
	passphraseVar  = "SGDL_STATE_PASSPHRASE"
)

type EnvConfig interface {
	GetAppName() string
	GetBaseURL() string
	GetStateFolder() string
	GetStatePassphrase() string
	GetEnv() string
}

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "SGDL")
}

// GetBaseURL returns the API root, e.g. "https://sgdl.example.gov.br/api/".
// The development default matches the backend's local port.
func (EnvVars) GetBaseURL() string {
	return GetEnv(baseURLVar, "http://localhost:8006/api/")
}

// GetStateFolder is where the persisted session state lives.
func (EnvVars) GetStateFolder() string {
	if folder := os.Getenv(stateFolderVar); folder != "" {
		return folder
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".sgdl"
	}
	return filepath.Join(home, ".sgdl")
}

// GetStatePassphrase enables at-rest encryption of the session state when
// non-empty.
func (EnvVars) GetStatePassphrase() string {
	return GetEnv(passphraseVar, "")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
