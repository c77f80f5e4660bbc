// Package config reads process configuration from the environment.
package config

import (
	"os"
	"strconv"
)

type Config struct {
	Addr string // HTTP listen address

	RedisAddr     string // empty: in-memory session store
	RedisPassword string

	PostgresDSN string // empty: judging analytics kept in memory only

	JudgeURL        string // empty: automated judging disabled
	JudgeTimeoutSec int

	EpisodeFile string // default question set, custom-import format
}

func Load() Config {
	return Config{
		Addr:            getEnv("ADDR", ":8080"),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		PostgresDSN:     getEnv("POSTGRES_DSN", ""),
		JudgeURL:        getEnv("JUDGE_URL", ""),
		JudgeTimeoutSec: getEnvAsInt("JUDGE_TIMEOUT_SEC", 15),
		EpisodeFile:     getEnv("EPISODE_FILE", ""),
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
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
