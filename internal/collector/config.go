package collector

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config defines device pull collection configuration.
type Config struct {
	BridgeBaseURL string         `yaml:"bridge_base_url"`
	BridgeToken   string         `yaml:"bridge_token"`
	Devices       []string       `yaml:"devices"`
	Schedule      ScheduleConfig `yaml:"schedule"`
	LookbackHours int            `yaml:"lookback_hours"`
}

// ScheduleConfig defines the daily pull schedule.
type ScheduleConfig struct {
	DailyAt string `yaml:"daily_at"`
}

// LoadConfig loads config from yaml or env.
func LoadConfig() (Config, error) {
	cfg := Config{
		BridgeBaseURL: os.Getenv("ZKBRIDGE_BASE_URL"),
		BridgeToken:   os.Getenv("ZKBRIDGE_TOKEN"),
		LookbackHours: getenvIntDefault("COLLECTOR_LOOKBACK_HOURS", 48),
	}

	if path := os.Getenv("COLLECTOR_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if cfg.Schedule.DailyAt == "" {
		cfg.Schedule.DailyAt = getenvDefault("COLLECTOR_DAILY_AT", "01:30")
	}
	if len(cfg.Devices) == 0 {
		cfg.Devices = splitCSV(getenvDefault("COLLECTOR_DEVICES", ""))
	}
	if cfg.LookbackHours <= 0 {
		cfg.LookbackHours = 48
	}
	if len(cfg.Devices) > 0 && cfg.BridgeBaseURL == "" {
		return cfg, errors.New("collector: bridge base url required when devices configured")
	}
	return cfg, nil
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitCSV(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	var result []string
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}
