package main

import (
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"

	"trip-map-service/internal/adapters/cache"
	"trip-map-service/internal/adapters/ors"
	"trip-map-service/internal/adapters/repositories"
	"trip-map-service/internal/api"
	"trip-map-service/internal/api/handlers"
	"trip-map-service/internal/config"
	"trip-map-service/internal/platform/db"
	"trip-map-service/internal/ports"
)

// main is the application composition root.
// It wires concrete adapters (ORS, SQLite/Postgres, Redis) behind
// ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	port := config.Get("PORT", "8080")
	pipelinePath := config.Get("PIPELINE_CONFIG", "config/pipeline.yaml")

	orsKey := os.Getenv("ORS_API_KEY")
	if strings.TrimSpace(orsKey) == "" {
		log.Fatal("ORS_API_KEY is required")
	}

	tuning, err := config.LoadPipeline(pipelinePath)
	if err != nil {
		log.Fatal(err)
	}

	client, err := ors.NewORSClient(orsKey, 0)
	if err != nil {
		log.Fatal(err)
	}

	geocodeCache, closeDB, err := openGeocodeCache()
	if err != nil {
		log.Fatal(err)
	}
	defer closeDB()

	routeCache := openRouteCache()

	store := repositories.NewMemoryTripStore()
	router := api.NewRouter(store, handlers.PipelineDeps{
		Geocoder:     client,
		GeocodeCache: geocodeCache,
		Directions:   client,
		RouteCache:   routeCache,
		Tuning:       tuning,
	})

	// Timeouts are tuned for cold-cache geocoding (external API latency).
	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

// openGeocodeCache prefers the shared Postgres cache when DATABASE_URL
// is set and falls back to a local SQLite file otherwise.
func openGeocodeCache() (ports.GeocodeCache, func(), error) {
	if databaseURL := os.Getenv("DATABASE_URL"); strings.TrimSpace(databaseURL) != "" {
		pg, err := db.OpenPostgres(databaseURL)
		if err != nil {
			return nil, nil, err
		}
		return cache.NewSQLGeocodeCache(pg), func() { pg.Close() }, nil
	}

	lite, err := db.OpenSqlite(config.Get("DB_PATH", "data/app.db"))
	if err != nil {
		return nil, nil, err
	}
	if err := cache.InitSqliteSchema(lite); err != nil {
		lite.Close()
		return nil, nil, err
	}
	return cache.NewSqliteGeocodeCache(lite), func() { lite.Close() }, nil
}

// openRouteCache uses Redis when REDIS_ADDR is set, otherwise an
// in-process cache scoped to this instance.
func openRouteCache() ports.RouteCache {
	addr := os.Getenv("REDIS_ADDR")
	if strings.TrimSpace(addr) == "" {
		return cache.NewMemoryRouteCache()
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	return cache.NewRedisRouteCache(client, 0)
}
