package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// GetEnvString returns the variable or the default when unset
func GetEnvString(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return defaultValue
}

func GetEnvInt(key string, defaultValue int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Error parsing %s: %v, will use default value", key, err)
		return defaultValue
	}
	return n
}

func GetEnvBool(key string, defaultValue bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("Error parsing %s: %v, will use default value", key, err)
		return defaultValue
	}
	return b
}

// GetEnvDuration accepts Go duration strings ("15m", "168h")
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("Error parsing %s: %v, will use default value", key, err)
		return defaultValue
	}
	return d
}
