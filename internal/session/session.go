// Package session handles saving/loading users to/from sessions
package session

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gorilla/sessions"

	"github.com/dense-analysis/cryptodash/internal/database"
	"github.com/dense-analysis/cryptodash/internal/model"
)

var sessionStore *sessions.CookieStore

// InitSessionStorage starts up session storage or crashes the program with an error
//
// The signing key is read from SECRET_KEY exactly once here and never
// changes afterwards.
func InitSessionStorage() {
	secretKey := os.Getenv("SECRET_KEY")

	if len(secretKey) == 0 {
		fmt.Fprintf(os.Stderr, "No SECRET_KEY variable set!\n")
		os.Exit(1)
	}

	sessionStore = sessions.NewCookieStore([]byte(secretKey))
}

// LoadUserFromSession loads the logged-in user for a request, if there is one.
//
// The session cookie only names the user; the users table is checked so a
// stale cookie for a missing account does not count as a login.
func LoadUserFromSession(
	conn database.Queryable,
	request *http.Request,
	user *model.User,
) (bool, error) {
	session, sessionError := sessionStore.Get(request, "sessionid")

	if sessionError != nil {
		return false, nil
	}

	if username, ok := session.Values["username"].(string); ok && len(username) > 0 {
		row := conn.QueryRow(
			"select username from users where username = ?",
			username,
		)

		if err := row.Scan(&user.Username); err == nil {
			return true, nil
		} else if err != database.ErrNoRows {
			return false, err
		}
	}

	return false, nil
}

func SaveUserInSession(writer http.ResponseWriter, request *http.Request, user *model.User) error {
	session, _ := sessionStore.Get(request, "sessionid")
	session.Values["username"] = user.Username

	return session.Save(request, writer)
}

func ClearSession(writer http.ResponseWriter, request *http.Request) error {
	session, _ := sessionStore.Get(request, "sessionid")

	for key := range session.Values {
		delete(session.Values, key)
	}

	return session.Save(request, writer)
}

// Flash queues a one-time message to show on the next rendered page.
func Flash(writer http.ResponseWriter, request *http.Request, message string) {
	session, _ := sessionStore.Get(request, "sessionid")
	session.AddFlash(message)
	session.Save(request, writer)
}

// Flashes returns all queued messages and clears them.
func Flashes(writer http.ResponseWriter, request *http.Request) []string {
	session, _ := sessionStore.Get(request, "sessionid")
	flashes := session.Flashes()

	if len(flashes) == 0 {
		return nil
	}

	messageList := make([]string, 0, len(flashes))

	for _, flash := range flashes {
		if message, ok := flash.(string); ok {
			messageList = append(messageList, message)
		}
	}

	session.Save(request, writer)

	return messageList
}
