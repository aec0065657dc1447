// Package config loads service configuration from SLAP_* environment
// variables, with documented defaults for every field.
package config

import (
	"os"
	"strconv"
)

// Config holds all configuration for the SLAP service.
type Config struct {
	// Transport
	SerialPort string // device path, e.g. /dev/ttyUSB0
	SerialBaud int

	// Simulator
	SimulatorEnabled bool
	SimPeriodSeconds int
	SimGoalMin       int
	SimGoalMax       int
	SimPenaltyChance float64
	SimSpeed         float64

	// Web
	WebPort int

	// CasparCG
	CasparEnabled bool
	CasparHost    string
	CasparPort    int
	CasparChannel int
	CasparLayer   int

	// OBS
	OBSEnabled  bool
	OBSHost     string
	OBSPort     int
	OBSPassword string
	OBSSource   string // scorebug browser-source name inside OBS

	// Optional infrastructure; empty URL disables the integration.
	NATSURL     string
	RedisURL    string
	DatabaseURL string

	// Teams
	HomeTeam string
	AwayTeam string
	Venue    string
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		SerialPort: getEnv("SLAP_SERIAL_PORT", "/dev/ttyUSB0"),
		SerialBaud: getEnvAsInt("SLAP_SERIAL_BAUD", 9600),

		SimulatorEnabled: getEnvAsBool("SLAP_SIMULATOR", false),
		SimPeriodSeconds: getEnvAsInt("SLAP_SIM_PERIOD_SECONDS", 1200),
		SimGoalMin:       getEnvAsInt("SLAP_SIM_GOAL_MIN", 30),
		SimGoalMax:       getEnvAsInt("SLAP_SIM_GOAL_MAX", 90),
		SimPenaltyChance: getEnvAsFloat("SLAP_SIM_PENALTY_CHANCE", 0.1),
		SimSpeed:         getEnvAsFloat("SLAP_SIM_SPEED", 10.0),

		WebPort: getEnvAsInt("SLAP_WEB_PORT", 8080),

		CasparEnabled: getEnvAsBool("SLAP_CASPAR_ENABLED", false),
		CasparHost:    getEnv("SLAP_CASPAR_HOST", "127.0.0.1"),
		CasparPort:    getEnvAsInt("SLAP_CASPAR_PORT", 5250),
		CasparChannel: getEnvAsInt("SLAP_CASPAR_CHANNEL", 1),
		CasparLayer:   getEnvAsInt("SLAP_CASPAR_LAYER", 10),

		OBSEnabled:  getEnvAsBool("SLAP_OBS_ENABLED", false),
		OBSHost:     getEnv("SLAP_OBS_HOST", "localhost"),
		OBSPort:     getEnvAsInt("SLAP_OBS_PORT", 4455),
		OBSPassword: getEnv("SLAP_OBS_PASSWORD", ""),
		OBSSource:   getEnv("SLAP_OBS_SOURCE", "SLAP Scorebug"),

		NATSURL:     getEnv("SLAP_NATS_URL", ""),
		RedisURL:    getEnv("SLAP_REDIS_URL", ""),
		DatabaseURL: getEnv("SLAP_DATABASE_URL", ""),

		HomeTeam: getEnv("SLAP_HOME_TEAM", "HOME"),
		AwayTeam: getEnv("SLAP_AWAY_TEAM", "AWAY"),
		Venue:    getEnv("SLAP_VENUE", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch value {
		case "true", "1", "yes", "TRUE", "Yes", "True":
			return true
		case "false", "0", "no", "FALSE", "No", "False":
			return false
		}
	}
	return defaultValue
}
