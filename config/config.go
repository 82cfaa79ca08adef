// Package config builds the process configuration from CLI arguments and
// environment variables. The resulting Config is created once at startup and
// only read afterwards.
package config

import (
	"fmt"
	"log"
	"strconv"
)

const (
	// DefaultPort is used when no port argument is given.
	DefaultPort = 3001

	// DefaultPasscode is the fallback shared secret.
	DefaultPasscode = "changeme"

	// DefaultUploadDir is the storage root, relative to the working directory.
	DefaultUploadDir = "uploads"

	// DefaultMaxMultipartMemory is the in-memory threshold for multipart parts.
	// Larger parts spill to temporary files; it does not limit upload size.
	DefaultMaxMultipartMemory int64 = 32 << 20

	// DefaultNATSPort is the embedded bus port.
	DefaultNATSPort = 4222
)

// LookupEnv matches the signature of os.LookupEnv.
type LookupEnv func(key string) (string, bool)

// Config holds the immutable process configuration.
type Config struct {
	// Port is the HTTP listening port (first positional argument).
	Port int

	// Passcode is the shared secret. PASSCODE env wins over the second
	// positional argument.
	Passcode string

	// UploadDir is the storage root path.
	UploadDir string

	// MaxMultipartMemory is passed to gin's engine.
	MaxMultipartMemory int64

	// NATSPort is the port of the embedded NATS server.
	NATSPort int
}

// Load resolves the configuration. args are the positional arguments without
// the program name.
func Load(args []string, lookup LookupEnv) (Config, error) {
	cfg := Config{
		Port:               DefaultPort,
		Passcode:           DefaultPasscode,
		UploadDir:          DefaultUploadDir,
		MaxMultipartMemory: DefaultMaxMultipartMemory,
	}

	if len(args) > 0 && args[0] != "" {
		port, err := strconv.Atoi(args[0])
		if err != nil || port < 1 || port > 65535 {
			return Config{}, fmt.Errorf("invalid port %q", args[0])
		}
		cfg.Port = port
	}

	if value, ok := lookup("PASSCODE"); ok && value != "" {
		cfg.Passcode = value
	} else if len(args) > 1 && args[1] != "" {
		cfg.Passcode = args[1]
	}

	cfg.UploadDir = getEnv(lookup, "UPLOAD_DIR", cfg.UploadDir)
	cfg.MaxMultipartMemory = getEnvInt64(lookup, "MAX_MULTIPART_MEMORY", cfg.MaxMultipartMemory)
	cfg.NATSPort = getEnvInt(lookup, "NATS_PORT", DefaultNATSPort)

	return cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// getEnv returns environment variable value or default.
func getEnv(lookup LookupEnv, key, defaultValue string) string {
	if value, ok := lookup(key); ok && value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns environment variable as int or default.
func getEnvInt(lookup LookupEnv, key string, defaultValue int) int {
	if value, ok := lookup(key); ok && value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		log.Printf("Warning: invalid int value for %s: %s, using default: %d", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvInt64 returns environment variable as int64 or default.
func getEnvInt64(lookup LookupEnv, key string, defaultValue int64) int64 {
	if value, ok := lookup(key); ok && value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil && intVal > 0 {
			return intVal
		}
		log.Printf("Warning: invalid int64 value for %s: %s, using default: %d", key, value, defaultValue)
	}
	return defaultValue
}
