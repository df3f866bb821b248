package env

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// LoadEnvironmentVariables loads the .env file or crashes the program with an error
func LoadEnvironmentVariables() {
	if err := godotenv.Load(".env"); err != nil {
		fmt.Fprintf(os.Stderr, ".env error: %s\n", err)
		os.Exit(1)
	}
}

// Get reads an environment variable, falling back to a default when unset.
func Get(name string, fallback string) string {
	if value := os.Getenv(name); len(value) > 0 {
		return value
	}

	return fallback
}
