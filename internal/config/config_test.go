package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, "8765", cfg.Port)
	assert.Equal(t, "127.0.0.1:8765", cfg.Addr())
	assert.Equal(t, 10*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, 5*time.Second, cfg.SendTimeout)
	assert.False(t, cfg.SimSource)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("HOST", "0.0.0.0")
	t.Setenv("PORT", "9000")
	t.Setenv("POLL_INTERVAL", "25ms")
	t.Setenv("SIM_SOURCE", "true")
	t.Setenv("SIM_SAMPLE_RATE", "60")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.Addr())
	assert.Equal(t, 25*time.Millisecond, cfg.PollInterval)
	assert.True(t, cfg.SimSource)
	assert.Equal(t, 60.0, cfg.SimSampleRate)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"non-positive poll interval", "POLL_INTERVAL", "0s"},
		{"negative send timeout", "SEND_TIMEOUT", "-1s"},
		{"zero max clients", "MAX_CLIENTS", "0"},
		{"zero per-ip limit", "MAX_CLIENTS_PER_IP", "0"},
		{"zero connection rate", "CONNECTION_RATE", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_SimRateValidatedOnlyWhenEnabled(t *testing.T) {
	t.Setenv("SIM_SAMPLE_RATE", "0")

	_, err := Load()
	assert.NoError(t, err, "sim rate is ignored while SIM_SOURCE is off")

	t.Setenv("SIM_SOURCE", "true")
	_, err = Load()
	assert.Error(t, err)
}
