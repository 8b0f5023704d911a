package env

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from the given .env files.
// ENV_PATH overrides the defaults. Callers decide whether a missing
// file matters; deployed environments configure through real env vars.
func LoadDotEnv(paths ...string) error {
	if override := os.Getenv("ENV_PATH"); override != "" {
		paths = []string{override}
	}

	return godotenv.Load(paths...)
}
