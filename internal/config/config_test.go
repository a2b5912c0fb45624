package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/playerregistry/pkg/errors"
)

func validConfig() *Config {
	return &Config{
		DatabasePath:             "playerregistry.db",
		StalenessDays:            3,
		LookbackSeasons:          3,
		UnresolvedAlertThreshold: 25,
	}
}

func TestValidate(t *testing.T) {
	t.Run("valid config passes", func(t *testing.T) {
		assert.NoError(t, validConfig().Validate())
	})

	tests := []struct {
		name      string
		mutate    func(*Config)
		component string
	}{
		{"empty database path", func(c *Config) { c.DatabasePath = "" }, "store"},
		{"staleness below one", func(c *Config) { c.StalenessDays = 0 }, "guards"},
		{"lookback below one", func(c *Config) { c.LookbackSeasons = -1 }, "investigator"},
		{"alert threshold below one", func(c *Config) { c.UnresolvedAlertThreshold = 0 }, "alerts"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)

			var configErr *errors.ConfigError
			require.ErrorAs(t, err, &configErr)
			assert.Equal(t, tt.component, configErr.Component)
		})
	}
}

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("REGISTRY_TEST_KEY", "from-env")
	assert.Equal(t, "from-env", getEnvOrDefault("REGISTRY_TEST_KEY", "fallback"))
	assert.Equal(t, "fallback", getEnvOrDefault("REGISTRY_TEST_KEY_MISSING", "fallback"))
}
