package auth

import (
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/dense-analysis/cryptodash/internal/database"
)

func openTestConn(t *testing.T) *database.Conn {
	t.Helper()

	conn, err := database.Open(filepath.Join(t.TempDir(), "test.db"))

	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	t.Cleanup(func() { conn.Close() })

	if err := database.EnsureSchema(conn); err != nil {
		t.Fatalf("failed to ensure schema: %v", err)
	}

	return conn
}

func TestRegisterUserStoresOnlyAHash(t *testing.T) {
	conn := openTestConn(t)

	if err := registerUser(conn, "alice", "hunter2"); err != nil {
		t.Fatalf("registerUser returned error: %v", err)
	}

	var stored string

	if err := conn.QueryRow(
		"select password from users where username = ?",
		"alice",
	).Scan(&stored); err != nil {
		t.Fatalf("failed to load stored password: %v", err)
	}

	if stored == "hunter2" || strings.Contains(stored, "hunter2") {
		t.Fatalf("expected no plaintext password in storage, got %q", stored)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(stored), []byte("hunter2")); err != nil {
		t.Fatalf("stored hash does not verify against the password: %v", err)
	}
}

func TestRegisterDuplicateUsernameKeepsTheFirstAccount(t *testing.T) {
	conn := openTestConn(t)

	if err := registerUser(conn, "alice", "first-password"); err != nil {
		t.Fatalf("first registerUser returned error: %v", err)
	}

	if err := registerUser(conn, "alice", "second-password"); err != errUsernameTaken {
		t.Fatalf("expected errUsernameTaken, got %v", err)
	}

	var count int

	if err := conn.QueryRow("select count(*) from users").Scan(&count); err != nil {
		t.Fatalf("count returned error: %v", err)
	}

	if count != 1 {
		t.Fatalf("expected exactly one user row, got %d", count)
	}

	valid, err := checkLogin(conn, "alice", "second-password")

	if err != nil {
		t.Fatalf("checkLogin returned error: %v", err)
	}

	if valid {
		t.Fatalf("expected the second password not to log in")
	}

	valid, err = checkLogin(conn, "alice", "first-password")

	if err != nil {
		t.Fatalf("checkLogin returned error: %v", err)
	}

	if !valid {
		t.Fatalf("expected the first password to keep working")
	}
}

func TestCheckLoginRejectsBadInput(t *testing.T) {
	conn := openTestConn(t)

	if err := registerUser(conn, "alice", "hunter2"); err != nil {
		t.Fatalf("registerUser returned error: %v", err)
	}

	for _, testCase := range []struct {
		username string
		password string
	}{
		{"alice", "wrong"},
		{"bob", "hunter2"},
		{"alice", ""},
		{"", "hunter2"},
	} {
		valid, err := checkLogin(conn, testCase.username, testCase.password)

		if err != nil {
			t.Fatalf("checkLogin(%q, %q) returned error: %v", testCase.username, testCase.password, err)
		}

		if valid {
			t.Fatalf("expected checkLogin(%q, %q) to fail", testCase.username, testCase.password)
		}
	}
}
