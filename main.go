package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shelfmark/server/auth"
	"github.com/shelfmark/server/config"
	"github.com/shelfmark/server/handlers"
	"github.com/shelfmark/server/middleware"
	"github.com/shelfmark/server/search"
	"github.com/shelfmark/server/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config:", err)
	}

	ctx := context.Background()
	var db store.Store
	if cfg.DevMode {
		log.Println("DEV_MODE=1: using in-memory store, data will not survive a restart")
		db = store.NewMemoryStore()
	} else {
		config.ValidateEnv()
		mongoDB, err := store.NewMongoDB(ctx, cfg.MongoURI, cfg.DBName)
		if err != nil {
			log.Fatal("mongodb:", err)
		}
		defer func() {
			if err := mongoDB.Disconnect(context.Background()); err != nil {
				log.Println("mongodb disconnect:", err)
			}
		}()
		db = mongoDB
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	catalog := search.NewClient(cfg.SearchBaseURL, cfg.SearchTimeout, logger)

	authHandler := &handlers.AuthHandler{Store: db, Tokens: tokens}
	usersHandler := &handlers.UsersHandler{Store: db}
	booksHandler := &handlers.BooksHandler{Store: db, Search: catalog}
	metrics := middleware.NewMetrics()

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(metrics.Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/users", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Get("/books/search", booksHandler.SearchCatalog)
		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(tokens))
			r.Get("/me", usersHandler.Me)
			r.Put("/me/books", booksHandler.Save)
			r.Delete("/me/books/{bookId}", booksHandler.Remove)
		})
	})

	server := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		log.Println("server listening on :" + cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Println("shutdown:", err)
	}
}
