package main

import (
	"context"
	"log"

	"invoice-console/config"
	"invoice-console/internal/database"
	"invoice-console/internal/editor"
	"invoice-console/internal/gateway"
	"invoice-console/internal/gateway/clients"
	"invoice-console/internal/gateway/middleware"
	"invoice-console/internal/store"
)

func main() {
	cfg := config.LoadConfig()

	invoiceClient := clients.NewInvoiceClient(cfg.Upstream.BaseURL, cfg.Upstream.Timeout)
	collection := store.NewCollection(invoiceClient, nil)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Upstream.Timeout)
	if err := collection.Load(ctx); err != nil {
		log.Printf("Warning: invoice upstream unavailable, serving sample data: %v", err)
	}
	cancel()

	checks := map[string]gateway.HealthCheck{}

	var sessionStore editor.SessionStore
	var revoker middleware.Revoker
	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		rdb := config.NewRedisClient(cfg.Redis)
		defer rdb.Close()
		sessionStore = editor.NewRedisStore(rdb)
		revoker = middleware.NewRedisRevoker(rdb)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	default:
		sessionStore = editor.NewMemoryStore()
		revoker = middleware.NewMemoryRevoker()
	}

	var journal database.Journal
	if cfg.Journal.DSN != "" {
		db, err := database.NewConnection(cfg.Journal.DSN)
		if err != nil {
			log.Fatalf("Failed to connect to journal database: %v", err)
		}
		if err := database.MigrateConsoleDB(db); err != nil {
			log.Fatalf("Failed to migrate journal database: %v", err)
		}
		journal = database.NewGormJournal(db)
		checks["journal"] = func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	} else {
		log.Println("No JOURNAL_DSN set, keeping submission journal in memory")
		journal = database.NewMemoryJournal(0)
	}

	r := gateway.NewRouter(gateway.Dependencies{
		Collection:  collection,
		Deleter:     invoiceClient,
		Editor:      editor.NewManager(sessionStore, invoiceClient, cfg.Session.TTL),
		Journal:     journal,
		Revoker:     revoker,
		JWTSecret:   []byte(cfg.Auth.JWTSecret),
		PageSize:    cfg.Listing.PageSize,
		RateLimit:   cfg.HTTP.RateLimit,
		CORSOrigins: cfg.HTTP.CORSOrigins,
		Checks:      checks,
	})

	log.Printf("Starting server on %s (upstream %s, sessions %s)", cfg.Addr, invoiceClient.BaseURL(), cfg.Session.Backend)
	if err := r.Run(cfg.Addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
