package core

import (
	"fmt"
	"strings"
)

type ExpiryConfig struct {
	BatchSize int `koanf:"batch_size" mapstructure:"batch_size"`
}

type RevocationConfig struct {
	RevokeTokens bool `koanf:"revoke_tokens" mapstructure:"revoke_tokens"`
}

type Config struct {
	ServiceName string           `koanf:"service_name" mapstructure:"service_name"`
	Expiry      ExpiryConfig     `koanf:"expiry" mapstructure:"expiry"`
	Revocation  RevocationConfig `koanf:"revocation" mapstructure:"revocation"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "consent",
		Expiry:      ExpiryConfig{BatchSize: 100},
		Revocation:  RevocationConfig{},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if c.Expiry.BatchSize < 0 {
		return fmt.Errorf("core: expiry.batch_size must not be negative")
	}
	return nil
}
