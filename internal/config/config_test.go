package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "/dev/ttyUSB0", cfg.SerialPort)
	assert.Equal(t, 9600, cfg.SerialBaud)
	assert.False(t, cfg.SimulatorEnabled)
	assert.Equal(t, 1200, cfg.SimPeriodSeconds)
	assert.Equal(t, 30, cfg.SimGoalMin)
	assert.Equal(t, 90, cfg.SimGoalMax)
	assert.Equal(t, 0.1, cfg.SimPenaltyChance)
	assert.Equal(t, 10.0, cfg.SimSpeed)
	assert.Equal(t, 8080, cfg.WebPort)
	assert.False(t, cfg.CasparEnabled)
	assert.Equal(t, "127.0.0.1", cfg.CasparHost)
	assert.Equal(t, 5250, cfg.CasparPort)
	assert.False(t, cfg.OBSEnabled)
	assert.Equal(t, 4455, cfg.OBSPort)
	assert.Equal(t, "SLAP Scorebug", cfg.OBSSource)
	assert.Empty(t, cfg.NATSURL)
	assert.Empty(t, cfg.RedisURL)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, "HOME", cfg.HomeTeam)
	assert.Equal(t, "AWAY", cfg.AwayTeam)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SLAP_SERIAL_PORT", "/dev/ttyS3")
	t.Setenv("SLAP_SERIAL_BAUD", "19200")
	t.Setenv("SLAP_SIMULATOR", "true")
	t.Setenv("SLAP_SIM_SPEED", "2.5")
	t.Setenv("SLAP_WEB_PORT", "9090")
	t.Setenv("SLAP_NATS_URL", "nats://localhost:4222")
	t.Setenv("SLAP_HOME_TEAM", "ICEHAWKS")

	cfg := Load()

	assert.Equal(t, "/dev/ttyS3", cfg.SerialPort)
	assert.Equal(t, 19200, cfg.SerialBaud)
	assert.True(t, cfg.SimulatorEnabled)
	assert.Equal(t, 2.5, cfg.SimSpeed)
	assert.Equal(t, 9090, cfg.WebPort)
	assert.Equal(t, "nats://localhost:4222", cfg.NATSURL)
	assert.Equal(t, "ICEHAWKS", cfg.HomeTeam)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("SLAP_SERIAL_BAUD", "fast")
	t.Setenv("SLAP_SIM_PENALTY_CHANCE", "often")
	t.Setenv("SLAP_SIMULATOR", "maybe")

	cfg := Load()

	assert.Equal(t, 9600, cfg.SerialBaud)
	assert.Equal(t, 0.1, cfg.SimPenaltyChance)
	assert.False(t, cfg.SimulatorEnabled)
}

func TestGetEnvAsBoolVariants(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"1", true},
		{"yes", true},
		{"TRUE", true},
		{"false", false},
		{"0", false},
		{"no", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("SLAP_TEST_BOOL", tt.value)
			assert.Equal(t, tt.want, getEnvAsBool("SLAP_TEST_BOOL", !tt.want))
		})
	}
}
