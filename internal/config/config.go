// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	// slack
	SlackBotToken      string
	SlackSigningSecret string
	SlackAPIBaseURL    string

	// nats
	NatsURL string

	// report
	ExcludedUserIDs []string
	SummaryLimit    int

	// server
	HTTPPort int

	// logging
	LogLevel string
	LogFile  string
}

// Load reads configuration from environment variables with sensible defaults.
// EXCLUSIONS_FILE may point at a YAML file whose excluded_user_ids list is
// merged with the EXCLUDED_USER_IDS env list.
func Load() (*Config, error) {
	cfg := &Config{
		SlackBotToken:      getEnv("SLACK_BOT_TOKEN", ""),
		SlackSigningSecret: getEnv("SLACK_SIGNING_SECRET", ""),
		SlackAPIBaseURL:    getEnv("SLACK_API_BASE_URL", "https://slack.com/api"),
		NatsURL:            getEnv("NATS_URL", ""),
		SummaryLimit:       getEnvInt("SUMMARY_LIMIT", 20),
		HTTPPort:           getEnvInt("HTTP_PORT", 3100),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFile:            getEnv("LOG_FILE", ""),
	}

	cfg.ExcludedUserIDs = splitIDs(getEnv("EXCLUDED_USER_IDS", ""))

	if path := getEnv("EXCLUSIONS_FILE", ""); path != "" {
		fromFile, err := loadExclusionsFile(path)
		if err != nil {
			return nil, fmt.Errorf("load exclusions file: %w", err)
		}
		cfg.ExcludedUserIDs = mergeIDs(cfg.ExcludedUserIDs, fromFile)
	}

	if cfg.SummaryLimit <= 0 {
		cfg.SummaryLimit = 20
	}

	return cfg, nil
}

// exclusionsFile is the YAML shape of the optional exclusions file.
type exclusionsFile struct {
	ExcludedUserIDs []string `yaml:"excluded_user_ids"`
}

func loadExclusionsFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f exclusionsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return f.ExcludedUserIDs, nil
}

// splitIDs parses a comma-separated ID list, trimming whitespace and
// dropping empty entries.
func splitIDs(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if id := strings.TrimSpace(part); id != "" {
			out = append(out, id)
		}
	}
	return out
}

// mergeIDs unions two ID lists preserving first-seen order.
func mergeIDs(a, b []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, id := range append(append([]string{}, a...), b...) {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}
