package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigPath  string
	Producers   int
	Consumers   int
	Messages    int
	Capacity    int
	LogLevel    string
	LogFormat   string
	MetricsPort int
	ShowVersion bool
	ShowHelp    bool
}

func parseFlags() *CLIConfig {
	cfg := &CLIConfig{}

	flag.StringVar(&cfg.ConfigPath, "config",
		getEnv("KANAL_BENCH_CONFIG", ""),
		"Optional YAML channel config; overrides -capacity (env: KANAL_BENCH_CONFIG)")

	flag.IntVar(&cfg.Producers, "producers",
		getEnvInt("KANAL_BENCH_PRODUCERS", 4),
		"Number of producer goroutines (env: KANAL_BENCH_PRODUCERS)")

	flag.IntVar(&cfg.Consumers, "consumers",
		getEnvInt("KANAL_BENCH_CONSUMERS", 4),
		"Number of consumer goroutines (env: KANAL_BENCH_CONSUMERS)")

	flag.IntVar(&cfg.Messages, "messages",
		getEnvInt("KANAL_BENCH_MESSAGES", 1_000_000),
		"Total messages to move (env: KANAL_BENCH_MESSAGES)")

	flag.IntVar(&cfg.Capacity, "capacity",
		getEnvInt("KANAL_BENCH_CAPACITY", 1024),
		"Channel capacity: 0 rendezvous, negative unbounded (env: KANAL_BENCH_CAPACITY)")

	flag.StringVar(&cfg.LogLevel, "log-level",
		getEnv("KANAL_BENCH_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: KANAL_BENCH_LOG_LEVEL)")

	flag.StringVar(&cfg.LogFormat, "log-format",
		getEnv("KANAL_BENCH_LOG_FORMAT", "text"),
		"Log format: json, text (env: KANAL_BENCH_LOG_FORMAT)")

	flag.IntVar(&cfg.MetricsPort, "metrics-port",
		getEnvInt("KANAL_BENCH_METRICS_PORT", 0),
		"Prometheus metrics port, 0 to disable (env: KANAL_BENCH_METRICS_PORT)")

	flag.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	flag.BoolVar(&cfg.ShowVersion, "v", false, "Show version information")
	flag.BoolVar(&cfg.ShowHelp, "help", false, "Show help information")
	flag.BoolVar(&cfg.ShowHelp, "h", false, "Show help information")

	flag.Usage = printDetailedHelp
	flag.Parse()

	return cfg
}

func validateFlags(cfg *CLIConfig) error {
	if cfg.ShowVersion || cfg.ShowHelp {
		return nil
	}

	if cfg.Producers <= 0 || cfg.Consumers <= 0 {
		return fmt.Errorf("producers and consumers must be positive")
	}
	if cfg.Messages < cfg.Producers {
		return fmt.Errorf("messages (%d) must be at least producers (%d)", cfg.Messages, cfg.Producers)
	}
	if cfg.ConfigPath != "" {
		if _, err := os.Stat(cfg.ConfigPath); err != nil {
			return fmt.Errorf("config file not found: %s", cfg.ConfigPath)
		}
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, cfg.LogLevel) {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}
	validFormats := []string{"json", "text"}
	if !contains(validFormats, cfg.LogFormat) {
		return fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}
	if cfg.MetricsPort < 0 || cfg.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port: %d", cfg.MetricsPort)
	}

	return nil
}

func printDetailedHelp() {
	_, _ = fmt.Fprintf(os.Stderr, `%s - load driver for kanal channels

Usage: %s [options]

Options:
`, appName, os.Args[0])
	flag.PrintDefaults()
	_, _ = fmt.Fprintf(os.Stderr, `
Examples:
  # Rendezvous channel, pure handoff throughput
  %s --capacity=0

  # Unbounded channel with live metrics
  %s --capacity=-1 --metrics-port=9100

  # Channel declared in a config file
  %s --config=channel.yaml

Version: %s
`, os.Args[0], os.Args[0], os.Args[0], Version)
}

// Environment variable helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func contains(values []string, v string) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}
