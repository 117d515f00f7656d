package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stellar-connect/platform-rpc-go/errors"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultHorizonURL, cfg.HorizonURL)
	assert.Equal(t, DefaultBatchSizeLimit, cfg.BatchSizeLimit)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.False(t, cfg.CustodyEnabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv(EnvHorizonURL, "https://horizon.example.org")
	t.Setenv(EnvBatchSizeLimit, "25")
	t.Setenv(EnvLogLevel, "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://horizon.example.org", cfg.HorizonURL)
	assert.Equal(t, 25, cfg.BatchSizeLimit)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadInvalidBatchSizeLimit(t *testing.T) {
	for _, raw := range []string{"zero", "0", "-5"} {
		t.Setenv(EnvBatchSizeLimit, raw)

		_, err := Load()
		require.Error(t, err)
		assert.Equal(t, errors.CONFIG_INVALID, errors.AsError(err).Code)
	}
}

func TestLoadCustodyRequiresBaseURL(t *testing.T) {
	t.Setenv(EnvCustodyEnabled, "true")

	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, errors.CONFIG_INVALID, errors.AsError(err).Code)

	t.Setenv(EnvCustodyBaseURL, "http://custody.internal:8085")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.CustodyEnabled)
	assert.Equal(t, "http://custody.internal:8085", cfg.CustodyBaseURL)
}

func TestLoadInvalidCustodyFlag(t *testing.T) {
	t.Setenv(EnvCustodyEnabled, "maybe")

	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, errors.CONFIG_INVALID, errors.AsError(err).Code)
}
