// Package config loads modsync settings from defaults, an optional
// settings file and MODSYNC_* environment variables.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/tie/modsync/mapping"
	"github.com/tie/modsync/modrinth"
)

const (
	envPrefix = "MODSYNC"
	fileName  = "modsync"
)

// Setting keys.
const (
	KeyAPIURL    = "api_url"
	KeySiteURL   = "site_url"
	KeyLoader    = "loader"
	KeyMappings  = "mappings"
	KeyTimeout   = "timeout"
	KeyUserAgent = "user_agent"
)

// DefaultTimeout bounds every HTTP request.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent identifies modsync to the remote service.
const DefaultUserAgent = "tie/modsync"

type Settings struct {
	APIURL    string
	SiteURL   string
	Loader    string
	Mappings  string
	Timeout   time.Duration
	UserAgent string

	// File is the settings file that was read, if any.
	File string
}

// Load reads settings. If file is empty, modsync.{yaml,toml,json} is looked
// up in the working directory and then in the user config directory; a
// missing file is not an error.
func Load(file string) (*Settings, error) {
	var dirs []string
	if file == "" {
		dirs = append(dirs, ".")
		if dir, err := os.UserConfigDir(); err == nil {
			dirs = append(dirs, filepath.Join(dir, "modsync"))
		}
	}
	return load(file, dirs)
}

func load(file string, dirs []string) (*Settings, error) {
	v := viper.New()
	v.SetDefault(KeyAPIURL, modrinth.DefaultAPIURL)
	v.SetDefault(KeySiteURL, modrinth.DefaultSiteURL)
	v.SetDefault(KeyLoader, modrinth.LoaderFabric)
	v.SetDefault(KeyMappings, mapping.DefaultPath)
	v.SetDefault(KeyTimeout, DefaultTimeout)
	v.SetDefault(KeyUserAgent, DefaultUserAgent)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, invalid("failed to read settings file", err)
		}
	} else if len(dirs) > 0 {
		v.SetConfigName(fileName)
		for _, dir := range dirs {
			v.AddConfigPath(dir)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, invalid("failed to read settings file", err)
			}
		}
	}

	s := &Settings{
		APIURL:    v.GetString(KeyAPIURL),
		SiteURL:   v.GetString(KeySiteURL),
		Loader:    v.GetString(KeyLoader),
		Mappings:  v.GetString(KeyMappings),
		Timeout:   v.GetDuration(KeyTimeout),
		UserAgent: v.GetString(KeyUserAgent),
		File:      v.ConfigFileUsed(),
	}
	if s.Timeout <= 0 {
		return nil, invalid("timeout must be positive", nil)
	}
	if s.File != "" {
		log.Debug().Str("file", s.File).Msg("settings loaded")
	}
	return s, nil
}

func invalid(msg string, cause error) error {
	b := errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(msg)
	if cause != nil {
		b = b.WithCause(cause)
	}
	return b
}
