package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/dense-analysis/cryptodash/internal/database"
	"github.com/dense-analysis/cryptodash/internal/env"
	"github.com/dense-analysis/cryptodash/internal/fetch"
	"github.com/dense-analysis/cryptodash/internal/route/auth"
	"github.com/dense-analysis/cryptodash/internal/route/coin"
	"github.com/dense-analysis/cryptodash/internal/route/util"
	"github.com/dense-analysis/cryptodash/internal/scheduler"
	"github.com/dense-analysis/cryptodash/internal/session"
	"github.com/dense-analysis/cryptodash/internal/template"
)

const updateInterval = 5 * time.Minute

type connHandler func(*database.Conn, http.ResponseWriter, *http.Request)

// withConn opens a request-scoped database connection for a handler.
//
// Every request gets its own connection, closed on all exit paths. The
// background fetcher never shares these.
func withConn(handler connHandler) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		conn, err := database.Connect()

		if err != nil {
			util.RespondInternalServerError(writer, err)

			return
		}

		defer conn.Close()

		handler(conn, writer, request)
	}
}

func main() {
	env.LoadEnvironmentVariables()
	session.InitSessionStorage()
	template.Init()

	conn, err := database.Connect()

	if err != nil {
		log.Fatalf("database error: %s", err)
	}

	if err := database.EnsureSchema(conn); err != nil {
		log.Fatalf("schema error: %s", err)
	}

	client := fetch.NewClient()

	// Prime the cache once before serving, so the first page view has
	// data. A failure here just means stale or empty data until the
	// next scheduled cycle.
	if err := client.FetchAll(conn); err != nil {
		log.Printf("initial fetch failed: %s", err)
	}

	conn.Close()

	refresher := scheduler.NewScheduler(client)
	refresher.Start(updateInterval)

	router := mux.NewRouter().StrictSlash(true)

	router.HandleFunc("/", withConn(coin.HandleCoinList)).Methods("GET")
	router.HandleFunc("/coin/{id}", withConn(coin.HandleCoinDetail)).Methods("GET")
	router.HandleFunc("/favorite/{id}", withConn(coin.HandleToggleFavorite)).Methods("POST")
	router.HandleFunc("/export", withConn(coin.HandleExport)).Methods("GET")
	router.HandleFunc("/login", withConn(auth.HandleViewLoginForm)).Methods("GET")
	router.HandleFunc("/login", withConn(auth.HandleLogin)).Methods("POST")
	router.HandleFunc("/register", withConn(auth.HandleViewRegisterForm)).Methods("GET")
	router.HandleFunc("/register", withConn(auth.HandleRegister)).Methods("POST")
	router.HandleFunc("/logout", withConn(auth.HandleLogout)).Methods("GET")

	fileServer := http.FileServer(http.Dir("./static/"))
	router.PathPrefix("/static/").
		Handler(http.StripPrefix("/static/", fileServer))

	server := http.Server{
		Addr:    ":" + env.Get("PORT", "8000"),
		Handler: router,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %s \n", err)
		}
	}()

	log.Println("Server started")
	<-done

	refresher.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server shut down failed: %+v", err)
	}

	log.Println("Server shut down successfully")
}
