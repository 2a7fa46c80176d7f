package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mind-engage/mindengage-tasks/internal/account"
	api "github.com/mind-engage/mindengage-tasks/internal/api/http"
	"github.com/mind-engage/mindengage-tasks/internal/assignment"
	"github.com/mind-engage/mindengage-tasks/internal/assist"
	auth "github.com/mind-engage/mindengage-tasks/internal/auth/middleware"
	"github.com/mind-engage/mindengage-tasks/internal/config"
	"github.com/mind-engage/mindengage-tasks/internal/db"
	"github.com/mind-engage/mindengage-tasks/internal/genai"
	"github.com/mind-engage/mindengage-tasks/internal/storage"
	syncx "github.com/mind-engage/mindengage-tasks/internal/sync"
)

func main() {
	cfg := config.Load()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	driver, err := db.ParseDriver(cfg.DBDriver)
	if err != nil {
		log.Fatalf("db driver: %v", err)
	}
	dbh, err := db.Open(ctx, driver, cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	defer dbh.Close()

	// --- Blob storage ---
	blobs, files, err := openBlobStore(ctx, cfg)
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}

	// --- Services ---
	authSvc := auth.NewAuthService(cfg.JWTSecret, cfg.TokenTTL)
	accounts := account.NewSQLStore(dbh)
	accSvc := account.NewService(accounts, authSvc)

	asgSvc := assignment.NewService(assignment.NewSQLStore(dbh), accounts, storage.NewUploader(blobs))
	asgSvc.Events = syncx.NewEventRepo(dbh)

	if cfg.GeminiAPIKey == "" {
		log.Printf("GEMINI_API_KEY is not set; AI endpoints will fail")
	}
	gen, err := genai.NewClient(ctx, genai.Config{APIKey: cfg.GeminiAPIKey, Model: cfg.GeminiModel})
	if err != nil {
		log.Fatalf("genai: %v", err)
	}
	assistSvc := assist.NewService(asgSvc, gen)

	r := api.NewRouter(api.Deps{
		Auth:        authSvc,
		AccountSvc:  accSvc,
		Accounts:    accounts,
		Assignments: asgSvc,
		Assist:      assistSvc,
		Files:       files,
		MaxUpload:   cfg.MaxUploadMB << 20,
		CORSOrigins: cfg.CORSOrigins,
		Ready: func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return dbh.PingContext(ctx)
		},
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		log.Printf("listening on %s (db=%s, blobs=%s)", cfg.HTTPAddr, driver, cfg.BlobDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
	defer done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

// openBlobStore returns the configured store, and the store to serve under
// /files when blobs are kept locally.
func openBlobStore(ctx context.Context, cfg config.Config) (storage.BlobStore, storage.BlobStore, error) {
	switch cfg.BlobDriver {
	case "b2":
		s, err := storage.NewB2Store(ctx, cfg.B2KeyID, cfg.B2AppKey, cfg.B2Bucket)
		return s, nil, err
	case "pinata":
		if cfg.PinataJWT == "" {
			return nil, nil, errors.New("PINATA_JWT is required for the pinata driver")
		}
		return storage.NewPinataStore(cfg.PinataJWT, cfg.PinataGateway), nil, nil
	case "", "fs":
		s, err := storage.NewFSStore(cfg.BlobBasePath, cfg.PublicURL)
		return s, s, err
	}
	return nil, nil, errors.New("unknown BLOB_DRIVER " + cfg.BlobDriver)
}
