package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/vicino/backend/config"
	httpDelivery "github.com/vicino/backend/internal/delivery/http"
	"github.com/vicino/backend/internal/domain"
	"github.com/vicino/backend/internal/infrastructure/cache"
	"github.com/vicino/backend/internal/infrastructure/gazetteer"
	"github.com/vicino/backend/internal/infrastructure/places"
	"github.com/vicino/backend/internal/infrastructure/store"
	"github.com/vicino/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting Vicino Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Cache Type: %s", cfg.Cache.Type)
	log.Printf("Store Type: %s", cfg.Store.Type)

	// Initialize infrastructure dependencies
	cacheRepo := buildCache(cfg)
	venueStore := buildStore(cfg)

	gate := places.NewRateGate(cfg.RateLimit.ProviderPerMinute, cfg.RateLimit.ProviderCooldown)
	placesClient := places.NewClient(cfg.Places.APIKey, cfg.Places.BaseURL, gate)

	// Enable debug mode in development environment
	if cfg.Server.Environment == "development" {
		placesClient.SetDebug(true)
		log.Printf("Places client debug mode enabled")
	}
	log.Printf("Places API configured: %s (quota: %d/min)", cfg.Places.BaseURL, cfg.RateLimit.ProviderPerMinute)

	// Initialize usecase layer
	discovery := usecase.NewDiscoveryService(
		cacheRepo,
		placesClient,
		venueStore,
		usecase.DiscoveryConfig{
			NearbyTTL:     cfg.Cache.NearbyTTL,
			DetailsTTL:    cfg.Cache.DetailsTTL,
			TextTTL:       cfg.Cache.TextTTL,
			DefaultRadius: cfg.Search.DefaultRadiusMeters,
			MaxResults:    cfg.Search.MaxResults,
		},
	)
	orchestrator := usecase.NewSearchOrchestrator(discovery, cfg.Search.MaxQueryVariants)

	records, err := loadGazetteer(cfg)
	if err != nil {
		log.Fatalf("Failed to load city gazetteer: %v", err)
	}
	cityIndex := usecase.NewCityIndex(records)
	log.Printf("City gazetteer loaded: %d records", len(records))

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(discovery, orchestrator, cityIndex, cacheRepo, cfg.Cache.CityTTL)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// buildCache selects the configured cache backend. A Redis connection
// failure is fatal at startup.
func buildCache(cfg *config.Config) domain.CacheRepository {
	if cfg.Cache.Type == "redis" {
		redisCache, err := cache.NewRedisCache(context.Background(), cfg.Cache.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		log.Printf("Redis cache connected")
		return redisCache
	}
	return cache.NewMemoryCacheWithReap(cfg.Cache.ReapInterval)
}

// loadGazetteer reads the configured city file, falling back to the
// embedded dataset.
func loadGazetteer(cfg *config.Config) ([]domain.CityRecord, error) {
	if cfg.Search.GazetteerFile != "" {
		log.Printf("Loading gazetteer from %s", cfg.Search.GazetteerFile)
		return gazetteer.LoadFile(cfg.Search.GazetteerFile)
	}
	return gazetteer.Load()
}

// buildStore selects the configured venue store backend.
func buildStore(cfg *config.Config) domain.VenueRepository {
	if cfg.Store.Type == "postgres" {
		pg, err := store.NewPostgresVenueStore(cfg.Store.PostgresDSN)
		if err != nil {
			log.Fatalf("Failed to connect to Postgres: %v", err)
		}
		log.Printf("Postgres venue store connected")
		return pg
	}
	return store.NewMemoryVenueStore()
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
