// Refresh the cryptocurrency market cache once and exit
package main

import (
	"fmt"
	"os"

	"github.com/dense-analysis/cryptodash/internal/database"
	"github.com/dense-analysis/cryptodash/internal/env"
	"github.com/dense-analysis/cryptodash/internal/fetch"
)

func main() {
	env.LoadEnvironmentVariables()

	conn, err := database.Connect()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %s\n", err)
		os.Exit(1)
	}

	defer conn.Close()

	if err := database.EnsureSchema(conn); err != nil {
		fmt.Fprintf(os.Stderr, "Schema error: %s\n", err)
		os.Exit(1)
	}

	if err := fetch.NewClient().FetchAll(conn); err != nil {
		fmt.Fprintf(os.Stderr, "Fetch error: %s\n", err)
		os.Exit(1)
	}
}
