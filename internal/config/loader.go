package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Load reads the configuration. Precedence: environment variables
// (MINDWELL_SERVER_PORT and friends) over the YAML file over defaults.
// A missing config file is fine; the env-plus-defaults path must be
// enough to boot in development.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path := os.Getenv("MINDWELL_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/mindwell")
	}

	v.SetEnvPrefix("MINDWELL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)

	if err := v.ReadInConfig(); err != nil {
		// No config file is fine; anything else is a real failure.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// bindEnvKeys registers every config key with viper so Unmarshal sees
// env-only values. AutomaticEnv alone is not enough: Unmarshal walks
// the keys viper already knows about, so a key set purely through the
// environment (database.url has no default) would otherwise be dropped.
func bindEnvKeys(v *viper.Viper) {
	for _, key := range []string{
		"server.port",
		"server.environment",
		"database.url",
		"database.max_conns",
		"redis.addr",
		"redis.password",
		"redis.db",
		"session.ttl",
		"session.cookie_name",
		"session.cookie_secure",
		"session.key_prefix",
		"activity.buffer_size",
		"logging.level",
	} {
		// BindEnv only errors on an empty key.
		_ = v.BindEnv(key)
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.environment", "development")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("session.ttl", 24*time.Hour)
	v.SetDefault("session.cookie_name", "mindwell_session")
	v.SetDefault("session.cookie_secure", false)
	v.SetDefault("session.key_prefix", "ms")
	v.SetDefault("activity.buffer_size", 256)
	v.SetDefault("logging.level", "info")
}
