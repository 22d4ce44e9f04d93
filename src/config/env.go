package config

import (
	"os"
	"regexp"
)

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// ExpandEnvVars replaces ${VAR} patterns with environment variable values.
func ExpandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR}.
		varName := envVarPattern.FindStringSubmatch(match)[1]

		value, exists := os.LookupEnv(varName)
		if exists {
			return value
		}

		// Return original if env var not found.
		return match
	})
}

// expandStorageEnvVars expands environment variables in the storage fields.
func expandStorageEnvVars(storage *StorageConfig) {
	storage.Driver = ExpandEnvVars(storage.Driver)
	storage.Endpoint = ExpandEnvVars(storage.Endpoint)
	storage.Region = ExpandEnvVars(storage.Region)
	storage.Bucket = ExpandEnvVars(storage.Bucket)
}
