package configs

import (
	"os"

	"github.com/hilthontt/melody/internal/infrastructure/env"
)

// DetermineConfigPath picks the first of: the explicit flag value,
// MELODY_CONFIG, or a well-known location. An empty result means the
// service runs on defaults and environment variables alone.
func DetermineConfigPath(explicit string) string {
	configPath := explicit

	if configPath == "" {
		configPath = env.GetString("MELODY_CONFIG", "")
	}

	if configPath == "" {
		candidates := []string{
			"./config.yaml",
			"./config.yml",
			"../../config.yaml", // keep for local dev
			"/etc/melody/config.yaml",
			"/app/config.yaml", // common in Docker
		}

		for _, p := range candidates {
			if _, err := os.Stat(p); err == nil {
				configPath = p
				break
			}
		}
	}

	return configPath
}
