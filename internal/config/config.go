// Package config defines the typed service configuration and its loader.
package config

import (
	"fmt"
	"time"
)

// Config is the root service configuration.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Redis  RedisConfig  `mapstructure:"redis"`
	Vault  VaultConfig  `mapstructure:"vault"`
	JWT    JWTConfig    `mapstructure:"jwt"`
	SMTP   SMTPConfig   `mapstructure:"smtp"`
	Admin  AdminConfig  `mapstructure:"admin"`
	Log    LogConfig    `mapstructure:"log"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RedisConfig controls the license store and token blacklist backend.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// VaultConfig controls the credential secret backend.
type VaultConfig struct {
	Address string `mapstructure:"address"`
	Token   string `mapstructure:"token"`
	Mount   string `mapstructure:"mount"`
}

// JWTConfig controls token signing.
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

// SMTPConfig controls credential-mail delivery. Delivery is disabled when
// Host is empty.
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Sender   string `mapstructure:"sender"`
}

// Enabled reports whether outbound mail is configured.
func (s SMTPConfig) Enabled() bool {
	return s.Host != ""
}

// Addr returns the SMTP dial address.
func (s SMTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// AdminConfig controls the bootstrap administrator account.
type AdminConfig struct {
	Password string `mapstructure:"password"`
	Email    string `mapstructure:"email"`
}

// LogConfig controls the logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Validate checks that required settings are present and sane.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: invalid server.port %d", c.Server.Port)
	}
	if c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required")
	}
	if c.Vault.Address == "" {
		return fmt.Errorf("config: vault.address is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("config: jwt.secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("config: jwt.secret must be at least 32 bytes")
	}
	if c.Admin.Password == "" {
		return fmt.Errorf("config: admin.password is required")
	}
	if c.SMTP.Enabled() && c.SMTP.Sender == "" {
		return fmt.Errorf("config: smtp.sender is required when smtp.host is set")
	}
	return nil
}
