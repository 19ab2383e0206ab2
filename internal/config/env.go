package config

import (
	"os"
	"strconv"
	"strings"
)

// applyEnv overrides config values from TASKDESK_* environment variables.
func applyEnv(cfg *Config) {
	if v := os.Getenv("TASKDESK_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("TASKDESK_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := getEnvInt("TASKDESK_SESSION_TTL_DAYS"); v > 0 {
		cfg.Auth.SessionTTLDays = v
	}
	if v := getEnvInt("TASKDESK_BCRYPT_COST"); v > 0 {
		cfg.Auth.BcryptCost = v
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv("TASKDESK_COOKIE_SECURE"))) {
	case "1", "true", "yes":
		cfg.Auth.CookieSecure = true
	case "0", "false", "no":
		cfg.Auth.CookieSecure = false
	}
}

func getEnvInt(key string) int {
	val := os.Getenv(key)
	if val == "" {
		return 0
	}
	num, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return num
}
