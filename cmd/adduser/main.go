// Create a user for logging in to the dashboard
package main

import (
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/dense-analysis/cryptodash/internal/database"
	"github.com/dense-analysis/cryptodash/internal/env"
)

func main() {
	env.LoadEnvironmentVariables()

	if len(os.Args) != 3 {
		fmt.Fprintf(os.Stderr, "Usage: adduser <username> <password>\n")
		os.Exit(1)
	}

	username := os.Args[1]
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(os.Args[2]), 14)

	if err != nil {
		fmt.Fprintf(os.Stderr, "Password hashing error: %s\n", err)
		os.Exit(1)
	}

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

	var existing string
	err = conn.QueryRow(
		"select username from users where username = ?",
		username,
	).Scan(&existing)

	if err == nil {
		fmt.Fprintf(os.Stderr, "User %q already exists\n", username)
		os.Exit(1)
	} else if err != database.ErrNoRows {
		fmt.Fprintf(os.Stderr, "Query error: %s\n", err)
		os.Exit(1)
	}

	err = conn.Exec(
		"insert into users (username, password) values (?, ?)",
		username,
		string(passwordHash),
	)

	if err != nil {
		fmt.Fprintf(os.Stderr, "Query error: %s\n", err)
		os.Exit(1)
	}
}
