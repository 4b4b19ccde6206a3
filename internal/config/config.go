// Package config loads per-store settings from config.yaml with
// TASKFLOW_* environment overrides.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	fileName  = "config.yaml"
	envPrefix = "TASKFLOW"

	KeyActor       = "actor"
	KeyRevertDone  = "provider.revert_done"
	KeyInteractive = "interactive"
)

// Config holds the settings the CLI reads for every command.
type Config struct {
	// Actor is recorded as the user on activity entries.
	Actor string
	// RevertDone reports whether the task provider supports moving a done
	// task back to an earlier status in place.
	RevertDone bool
	// Interactive enables terminal prompts for scenario resolution.
	Interactive bool
}

func defaultActor() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "local"
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyActor, defaultActor())
	v.SetDefault(KeyRevertDone, true)
	v.SetDefault(KeyInteractive, true)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads config.yaml from basePath. A missing file yields defaults.
func Load(basePath string) (*Config, error) {
	v := newViper()

	path := filepath.Join(basePath, fileName)
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if readErr := v.ReadInConfig(); readErr != nil {
			return nil, readErr
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	return &Config{
		Actor:       v.GetString(KeyActor),
		RevertDone:  v.GetBool(KeyRevertDone),
		Interactive: v.GetBool(KeyInteractive),
	}, nil
}

// WriteDefault writes a config.yaml holding the default settings unless one
// already exists.
func WriteDefault(basePath string) error {
	path := filepath.Join(basePath, fileName)
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	v := viper.New()
	v.Set(KeyActor, defaultActor())
	v.Set(KeyRevertDone, true)
	v.Set(KeyInteractive, true)
	return v.WriteConfigAs(path)
}
