package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full front-end configuration. The engine core takes no
// configuration; everything here drives the REPL, the server and the
// persistence paths.
type Config struct {
	AppName string `mapstructure:"app_name"`

	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`

	Snapshot struct {
		Path     string `mapstructure:"path"`
		Autosave bool   `mapstructure:"autosave"`
	} `mapstructure:"snapshot"`

	Archive struct {
		Dir          string        `mapstructure:"dir"`
		SyncInterval time.Duration `mapstructure:"sync_interval"`
	} `mapstructure:"archive"`

	Server struct {
		Addr string `mapstructure:"addr"`
		Auth struct {
			Username string `mapstructure:"username"`
			Password string `mapstructure:"password"`
		} `mapstructure:"auth"`
	} `mapstructure:"server"`
}

// Load reads a yaml config file and applies environment overrides with the
// MINIDB_ prefix. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("app_name", "minidb")
	v.SetDefault("log.level", "info")
	v.SetDefault("snapshot.path", "data/minidb.json")
	v.SetDefault("snapshot.autosave", true)
	v.SetDefault("archive.dir", "")
	v.SetDefault("archive.sync_interval", time.Duration(0))
	v.SetDefault("server.addr", ":8001")

	v.SetEnvPrefix("MINIDB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
