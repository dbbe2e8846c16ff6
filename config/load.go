package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. MOLLOM_PRIVATE_KEY
const EnvPrefix = "MOLLOM"

// Load reads a Config from an optional YAML file and MOLLOM_* environment
// variables. An empty path skips the file.
func Load(path string) (*Config, error) {
	v := viper.New()

	// defaults
	def := NewConfig()
	v.SetDefault("public_key", "")
	v.SetDefault("private_key", "")
	v.SetDefault("servers", []string{})
	v.SetDefault("bootstrap_host", def.BootstrapHost)
	v.SetDefault("bootstrap_retries", def.BootstrapRetries)
	v.SetDefault("timeout", def.Timeout)
	v.SetDefault("user_agent", def.UserAgent)
	v.SetDefault("version", def.Version)
	v.SetDefault("zstd", def.ZSTD)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.Servers = splitServers(cfg.Servers)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// splitServers accepts "a,b" from the environment as well as a YAML list
func splitServers(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' }) {
			out = append(out, part)
		}
	}
	return out
}
