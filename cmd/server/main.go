// Package main is the entry point for the lumen server.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/nightforge/lumen/internal/config"
	"github.com/nightforge/lumen/internal/database"
	"github.com/nightforge/lumen/internal/dmx"
	"github.com/nightforge/lumen/internal/netutil"
	"github.com/nightforge/lumen/internal/services/endpoint"
	"github.com/nightforge/lumen/internal/services/runtime"
	"github.com/nightforge/lumen/internal/services/settings"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()
	printBanner(cfg)

	db, err := database.Connect(database.Config{
		URL:         cfg.DatabaseURL,
		MaxIdleConn: 5,
		MaxOpenConn: 10,
		Debug:       cfg.IsDevelopment(),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close() }()

	settingsStore := settings.New(db)
	ctx := context.Background()

	broadcast, err := settingsStore.LoadArtNetBroadcast(ctx)
	if err != nil {
		log.Printf("Warning: failed to load saved Art-Net broadcast address: %v", err)
	}
	if broadcast == "" {
		broadcast = cfg.ArtNetBroadcast
	}
	if broadcast == "" {
		broadcast = netutil.DefaultBroadcastAddress()
	}
	if broadcast != "" {
		log.Printf("Using Art-Net broadcast address: %s", broadcast)
	}

	endpointConfig, err := settingsStore.LoadEndpointConfig(ctx)
	if err != nil {
		log.Printf("Warning: failed to load saved endpoint config: %v", err)
		endpointConfig = map[dmx.UniverseId][]endpoint.ConfigItem{}
	}
	if len(endpointConfig) == 0 {
		endpointConfig = map[dmx.UniverseId][]endpoint.ConfigItem{
			1: {{Kind: endpoint.KindLogger}},
		}
	}
	for u, items := range endpointConfig {
		for i, item := range items {
			if item.Kind == endpoint.KindArtNet && item.ArtNetBroadcast == "" {
				items[i].ArtNetBroadcast = broadcast
			}
		}
		endpointConfig[u] = items
	}
	if err := settingsStore.SaveEndpointConfig(ctx, endpointConfig); err != nil {
		log.Printf("Warning: failed to persist endpoint config: %v", err)
	}
	if broadcast != "" {
		if err := settingsStore.SaveArtNetBroadcast(ctx, broadcast); err != nil {
			log.Printf("Warning: failed to persist Art-Net broadcast address: %v", err)
		}
	}

	universes := make([]dmx.UniverseId, 0, len(endpointConfig))
	for u := range endpointConfig {
		universes = append(universes, u)
	}
	sort.Slice(universes, func(i, j int) bool { return universes[i].Less(universes[j]) })

	facade := runtime.New(cfg.PlayerTick, cfg.AdaptDrainGrace)
	facade.Start()

	facade.Adapt(&runtime.Project{
		Universes:      universes,
		UniversePatch:  map[dmx.UniverseId]dmx.FixtureUniverse{},
		EndpointConfig: endpointConfig,
	}, false)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.CORSOrigin, "http://localhost:3000", "http://localhost:4000"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
		Debug:            cfg.IsDevelopment(),
	})
	router.Use(corsMiddleware.Handler)

	router.Get("/health", healthCheckHandler)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server listening on http://localhost:%s\n", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	facade.StopPlayer()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}

// healthCheckHandler reports that the server is up.
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	response := fmt.Sprintf(`{
  "status": "ok",
  "timestamp": "%s",
  "version": "%s"
}`, time.Now().UTC().Format(time.RFC3339), Version)

	_, _ = w.Write([]byte(response))
}

// printBanner prints the startup banner.
func printBanner(cfg *config.Config) {
	fmt.Println("============================================")
	fmt.Println("  Lumen Lighting Controller")
	fmt.Printf("  Version: %s\n", Version)
	fmt.Printf("  Build:   %s\n", BuildTime)
	fmt.Printf("  Commit:  %s\n", GitCommit)
	fmt.Println("============================================")
	fmt.Printf("  Environment: %s\n", cfg.Env)
	fmt.Printf("  Port:        %s\n", cfg.Port)
	fmt.Printf("  Database:    %s\n", cfg.DatabaseURL)
	fmt.Printf("  Player tick: %s\n", cfg.PlayerTick)
	fmt.Println("============================================")
}
