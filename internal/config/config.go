// Package config loads runtime settings from the environment and an optional .env file.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds runtime settings for the profiler service
type Config struct {
	Port string
	Bind string

	LogLevel  string
	LogFormat string

	SysfsCPURoot string
	ReadTimeout  time.Duration

	ReportRoot   string
	ReportSubdir string

	LedgerPath string

	RedisAddress  string
	RedisPassword string
	RedisDB       int
	RedisStream   string
	RedisMaxLen   int64
}

// Load reads configuration from the environment, optionally seeded from a .env file
func Load() *Config {
	_ = godotenv.Load()

	// Logs
	logLevel := getEnv("LOG_LEVEL", "info")
	logFormat := getEnv("LOG_FORMAT", "text")

	// HTTP
	port := getEnv("HTTP_PORT", "8080")
	bind := getEnv("HTTP_BIND", "0.0.0.0")

	// Counter source
	sysfsRoot := getEnv("SYSFS_CPU_ROOT", "/sys/devices/system/cpu")
	readTimeout := 2 * time.Second
	if raw := os.Getenv("READ_TIMEOUT"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			readTimeout = d
		}
	}

	// Reports
	reportRoot := getEnv("REPORT_ROOT", defaultReportRoot())
	reportSubdir := getEnv("REPORT_SUBDIR", "cpu_frequencies")
	ledgerPath := getEnv("LEDGER_PATH", "")

	// Redis
	redisDB := 0
	if raw := os.Getenv("REDIS_DB"); raw != "" {
		if db, err := strconv.Atoi(raw); err == nil && db >= 0 {
			redisDB = db
		}
	}
	var redisMaxLen int64 = 1000
	if raw := os.Getenv("REDIS_MAXLEN"); raw != "" {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil && n > 0 {
			redisMaxLen = n
		}
	}

	return &Config{
		Port: port,
		Bind: bind,

		LogLevel:  logLevel,
		LogFormat: logFormat,

		SysfsCPURoot: sysfsRoot,
		ReadTimeout:  readTimeout,

		ReportRoot:   reportRoot,
		ReportSubdir: reportSubdir,

		LedgerPath: ledgerPath,

		RedisAddress:  getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       redisDB,
		RedisStream:   getEnv("REDIS_STREAM", "cpufreq:reports"),
		RedisMaxLen:   redisMaxLen,
	}
}

func defaultReportRoot() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
