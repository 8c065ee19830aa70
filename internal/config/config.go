// Package config loads typed configuration from the environment, optionally
// seeded from a dotenv file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"

	"github.com/spachava753/deskmcp/internal/logx"
)

// Prefix is the environment prefix of App.
const Prefix = "DESKMCP"

// App is the server configuration. The embedded logging options read
// DESKMCP_DEBUG and DESKMCP_PRETTY_LOGS.
type App struct {
	logx.Config
	MessagesDB   string `envconfig:"MESSAGES_DB"`
	NotesFolder  string `envconfig:"NOTES_FOLDER" default:"Claude"`
	ReminderList string `envconfig:"REMINDER_LIST"`
	Calendar     string `envconfig:"CALENDAR"`
	OTLPEndpoint string `envconfig:"OTLP_ENDPOINT"`
}

// MustNew is New that panics on error.
func MustNew[T any](prefix string, envFile string) *T {
	conf, err := New[T](prefix, envFile)
	if err != nil {
		panic(err)
	}
	return conf
}

// New exports the keys of envFile into the process environment and then
// processes T with envconfig. An empty envFile loads ./.env when it exists.
// Variables already set in the environment win over the file.
func New[T any](prefix string, envFile string) (*T, error) {
	envFile = strings.TrimSpace(envFile)
	if envFile != "" {
		if err := exportEnvironment(envFile); err != nil {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	} else if err := exportEnvironmentIfExists(".env"); err != nil {
		return nil, fmt.Errorf("failed to load default env file: %w", err)
	}

	var conf T
	if err := envconfig.Process(prefix, &conf); err != nil {
		return nil, err
	}
	return &conf, nil
}

func exportEnvironmentIfExists(filepath string) error {
	info, err := os.Stat(filepath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return nil
	}
	return exportEnvironment(filepath)
}

func exportEnvironment(filepath string) error {
	v := viper.New()
	v.SetConfigFile(filepath)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return err
	}

	for k, val := range v.AllSettings() {
		key := strings.ToUpper(k)
		if _, set := os.LookupEnv(key); set {
			continue
		}
		if err := os.Setenv(key, fmt.Sprint(val)); err != nil {
			return err
		}
	}
	return nil
}
