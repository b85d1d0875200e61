package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// FileConfig is an optional YAML config file for the CLI. Values present in
// the file win; everything else falls back to the env-var defaults.
type FileConfig struct {
	EnvVars
	Client

	APIURL          string `yaml:"api_url"`
	StateFolder     string `yaml:"state_folder"`
	StatePassphrase string `yaml:"state_passphrase"`
	HTTPTimeout     string `yaml:"http_timeout"` // Go duration string, e.g. "30s"
}

var _ Config = (*FileConfig)(nil)

// Load reads the YAML config at path. A missing file is not an error; it
// yields the defaults.
func Load(path string) (*FileConfig, error) {
	fc := &FileConfig{}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fc, nil
		}
		return nil, errors.Wrap(err, "[config.Load] os.ReadFile")
	}
	if err := yaml.Unmarshal(raw, fc); err != nil {
		return nil, errors.Wrap(err, "[config.Load] yaml.Unmarshal")
	}
	return fc, nil
}

func (f *FileConfig) GetBaseURL() string {
	if f.APIURL != "" {
		return f.APIURL
	}
	return f.EnvVars.GetBaseURL()
}

func (f *FileConfig) GetStateFolder() string {
	if f.StateFolder != "" {
		return f.StateFolder
	}
	return f.EnvVars.GetStateFolder()
}

func (f *FileConfig) GetStatePassphrase() string {
	if f.StatePassphrase != "" {
		return f.StatePassphrase
	}
	return f.EnvVars.GetStatePassphrase()
}

func (f *FileConfig) GetHTTPTimeout() time.Duration {
	if f.HTTPTimeout != "" {
		if parsed, err := time.ParseDuration(f.HTTPTimeout); err == nil && parsed > 0 {
			return parsed
		}
	}
	return f.Client.GetHTTPTimeout()
}
