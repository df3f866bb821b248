// Package auth defines routes for logging in and registering
package auth

import (
	"errors"
	htmltemplate "html/template"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/dense-analysis/cryptodash/internal/database"
	"github.com/dense-analysis/cryptodash/internal/model"
	"github.com/dense-analysis/cryptodash/internal/route/util"
	"github.com/dense-analysis/cryptodash/internal/session"
	"github.com/dense-analysis/cryptodash/internal/template"
)

const bcryptCost = 14

// FormPageData is the template data for the login and register pages.
type FormPageData struct {
	LoggedIn bool
	User     model.User
	Messages []string
}

func renderForm(
	tmpl *htmltemplate.Template,
	conn *database.Conn,
	writer http.ResponseWriter,
	request *http.Request,
) {
	data := FormPageData{}
	data.LoggedIn, _ = session.LoadUserFromSession(conn, request, &data.User)
	data.Messages = session.Flashes(writer, request)
	template.Render(tmpl, writer, data)
}

func HandleViewLoginForm(conn *database.Conn, writer http.ResponseWriter, request *http.Request) {
	renderForm(template.Login, conn, writer, request)
}

func HandleViewRegisterForm(conn *database.Conn, writer http.ResponseWriter, request *http.Request) {
	renderForm(template.Register, conn, writer, request)
}

// checkLogin verifies a username/password pair against the users table.
func checkLogin(conn database.Queryable, username string, password string) (bool, error) {
	if len(username) == 0 || len(password) == 0 {
		return false, nil
	}

	row := conn.QueryRow(
		"select password from users where username = ?",
		username,
	)

	var passwordHash string

	if err := row.Scan(&passwordHash); err != nil {
		if err == database.ErrNoRows {
			return false, nil
		}

		return false, err
	}

	return bcrypt.CompareHashAndPassword(
		[]byte(passwordHash),
		[]byte(password),
	) == nil, nil
}

var errUsernameTaken = errors.New("username already exists")

// registerUser creates a new user with a salted one-way password hash.
//
// Only the bcrypt hash is stored, never the plaintext password.
func registerUser(conn database.Queryable, username string, password string) error {
	row := conn.QueryRow(
		"select username from users where username = ?",
		username,
	)

	var existing string

	if err := row.Scan(&existing); err == nil {
		return errUsernameTaken
	} else if err != database.ErrNoRows {
		return err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)

	if err != nil {
		return err
	}

	return conn.Exec(
		"insert into users (username, password) values (?, ?)",
		username,
		string(passwordHash),
	)
}

func HandleLogin(conn *database.Conn, writer http.ResponseWriter, request *http.Request) {
	request.ParseForm()
	username := request.Form.Get("username")
	password := request.Form.Get("password")

	loginValid, err := checkLogin(conn, username, password)

	if err != nil {
		util.RespondInternalServerError(writer, err)

		return
	}

	if loginValid {
		session.SaveUserInSession(writer, request, &model.User{Username: username})
		http.Redirect(writer, request, "/", http.StatusFound)
	} else {
		// The message never says which of the two fields was wrong.
		session.Flash(writer, request, "Invalid credentials")
		HandleViewLoginForm(conn, writer, request)
	}
}

func HandleRegister(conn *database.Conn, writer http.ResponseWriter, request *http.Request) {
	request.ParseForm()
	username := request.Form.Get("username")
	password := request.Form.Get("password")

	if len(username) == 0 || len(password) == 0 {
		session.Flash(writer, request, "Username and password are required")
		HandleViewRegisterForm(conn, writer, request)

		return
	}

	if err := registerUser(conn, username, password); err != nil {
		if err == errUsernameTaken {
			session.Flash(writer, request, "Username already exists")
			HandleViewRegisterForm(conn, writer, request)
		} else {
			util.RespondInternalServerError(writer, err)
		}

		return
	}

	session.Flash(writer, request, "Registration successful. Please log in.")
	http.Redirect(writer, request, "/login", http.StatusFound)
}

func HandleLogout(conn *database.Conn, writer http.ResponseWriter, request *http.Request) {
	session.ClearSession(writer, request)
	http.Redirect(writer, request, "/", http.StatusFound)
}
