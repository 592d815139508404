package util

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"
)

const Name = "huddle"
const ConfigFileName = "config.yaml"

//go:embed config_default.yaml
var embeddedConfig []byte

type AppConfig struct {
	Conf struct {
		Host        string
		SshPort     int    `yaml:"sshPort"`
		HttpPort    int    `yaml:"httpPort"`
		WithSsh     bool   `yaml:"withSsh"`
		DbPath      string `yaml:"dbPath"`
		LogLevel    string `yaml:"logLevel"`
		FeedLimit   int    `yaml:"feedLimit"`
		RateLimit   int    `yaml:"rateLimit"`
		ProviderUrl string `yaml:"providerUrl"`
		Sport       string `yaml:"sport"`
		Season      string `yaml:"season"`
		RedisDsn    string `yaml:"redisDsn"`
	}
}

// ReadConf loads config.yaml from the working directory or the user config
// directory, falling back to the embedded defaults, then applies HUDDLE_*
// environment overrides.
func ReadConf() (*AppConfig, error) {
	configPath := ResolveFilePath(ConfigFileName)

	buf, err := os.ReadFile(configPath)
	if err != nil {
		log.Info("Config file not found, using embedded defaults", "path", configPath)
		buf = embeddedConfig

		if configDir, dirErr := GetConfigDir(); dirErr == nil {
			userConfigPath := filepath.Join(configDir, ConfigFileName)
			if writeErr := os.WriteFile(userConfigPath, embeddedConfig, 0644); writeErr != nil {
				log.Warn("Could not write default config", "path", userConfigPath, "err", writeErr)
			} else {
				log.Info("Created default config file", "path", userConfigPath)
			}
		}
	}

	return parseConf(buf)
}

func parseConf(buf []byte) (*AppConfig, error) {
	c := &AppConfig{}
	// defaults first, so a partial config.yaml only overrides what it names
	if err := yaml.Unmarshal(embeddedConfig, c); err != nil {
		return nil, fmt.Errorf("in embedded config: %w", err)
	}
	if err := yaml.Unmarshal(buf, c); err != nil {
		return nil, fmt.Errorf("in config file: %w", err)
	}

	envString("HUDDLE_HOST", &c.Conf.Host)
	envInt("HUDDLE_SSHPORT", &c.Conf.SshPort)
	envInt("HUDDLE_HTTPPORT", &c.Conf.HttpPort)
	envString("HUDDLE_DBPATH", &c.Conf.DbPath)
	envString("HUDDLE_LOGLEVEL", &c.Conf.LogLevel)
	envInt("HUDDLE_FEEDLIMIT", &c.Conf.FeedLimit)
	envInt("HUDDLE_RATELIMIT", &c.Conf.RateLimit)
	envString("HUDDLE_PROVIDER_URL", &c.Conf.ProviderUrl)
	envString("HUDDLE_SPORT", &c.Conf.Sport)
	envString("HUDDLE_SEASON", &c.Conf.Season)
	envString("HUDDLE_REDIS_DSN", &c.Conf.RedisDsn)

	switch os.Getenv("HUDDLE_WITH_SSH") {
	case "true":
		c.Conf.WithSsh = true
	case "false":
		c.Conf.WithSsh = false
	}

	return c, nil
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// envInt keeps the configured value when the variable is not a number.
func envInt(key string, dst *int) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn("Ignoring invalid environment value", "key", key, "value", v, "err", err)
		return
	}
	*dst = n
}
