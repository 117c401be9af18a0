package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"clinic/internal/domain/clinics"
	"clinic/internal/domain/staff"
	"clinic/internal/domain/users"
	"clinic/internal/platform/config"
	"clinic/internal/platform/db"
	authhandler "clinic/internal/transport/http/handlers/auth"
	clinicshandler "clinic/internal/transport/http/handlers/clinics"
	personshandler "clinic/internal/transport/http/handlers/persons"
	staffhandler "clinic/internal/transport/http/handlers/staff"
	"clinic/internal/transport/http/middleware"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
	}

	staffStore := staff.NewStore(pool)
	staffService := staff.NewService(staffStore, staffStore, staffStore, staffStore)
	clinicService := clinics.NewService(clinics.NewStore(pool))
	userStore := users.NewStore(pool)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(userStore, cfg.JWTSecret, cfg.TokenTTL).RegisterRoutes(r)
		staffhandler.NewHandler(staffService, middleware.NewIdempotencyStore(pool)).RegisterRoutes(r)
		personshandler.NewHandler(staffService).RegisterRoutes(r)
		clinicshandler.NewHandler(clinicService).RegisterRoutes(r)
	})

	log.Printf("clinic server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
