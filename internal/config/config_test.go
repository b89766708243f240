package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Env:            "development",
		JWTSecret:      "secure-secret-at-least-32-chars-long",
		AuthCookieName: "auth_token",
		DBPassword:     "secure-password",
		DBSSLMode:      "require",
		Port:           "8080",
		S3Bucket:       "media",
		EmailWorkers:   1,
		EmailQueueSize: 10,
		TracingSampler: 1,
	}
}

func TestConfig_ValidateSSLMode(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		sslMode     string
		expectError bool
	}{
		{"Production with empty SSL mode", "production", "", true},
		{"Production with disable SSL mode", "production", "disable", true},
		{"Production with require SSL mode", "production", "require", false},
		{"Prod with verify-full SSL mode", "prod", "verify-full", false},
		{"Development with disable SSL mode", "development", "disable", false},
		{"Test with empty SSL mode", "test", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			c.Env = tt.env
			c.DBSSLMode = tt.sslMode

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateRequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"missing port", func(c *Config) { c.Port = "" }},
		{"missing secret", func(c *Config) { c.JWTSecret = "" }},
		{"missing cookie name", func(c *Config) { c.AuthCookieName = "" }},
		{"no email workers", func(c *Config) { c.EmailWorkers = 0 }},
		{"no email queue", func(c *Config) { c.EmailQueueSize = 0 }},
		{"sampler out of range", func(c *Config) { c.TracingSampler = 1.5 }},
		{"default secret in production", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = defaultJWTSecret
		}},
		{"missing bucket in production", func(c *Config) {
			c.Env = "production"
			c.S3Bucket = ""
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestConfig_SMTPConfigured(t *testing.T) {
	c := validConfig()
	assert.False(t, c.SMTPConfigured())

	c.SMTPHost = "smtp.example.com"
	c.SMTPFrom = "noreply@example.com"
	assert.True(t, c.SMTPConfigured())
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	t.Cleanup(viper.Reset)

	t.Setenv("APP_ENV", "development")
	t.Setenv("DB_SSLMODE", "  DISABLE  ")
	t.Setenv("APP_URL", "https://connect.example.edu/")
	t.Setenv("EMAIL_WORKERS", "4")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, "https://connect.example.edu", c.AppURL)
	assert.Equal(t, 4, c.EmailWorkers)
	assert.Equal(t, "auth_token", c.AuthCookieName)
}
