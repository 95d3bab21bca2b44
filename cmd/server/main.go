package main

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"dataroom/internal/app"
	"dataroom/internal/config"
	"dataroom/internal/handler"
	"dataroom/internal/metrics"
	"dataroom/internal/middleware"
	authSvc "dataroom/internal/service/auth"
	service "dataroom/internal/service/dataroom"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	var out io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, 10)
		if err != nil {
			log.Fatalf("Failed to set up log file: %v", err)
		}
		defer logFile.Close()
		out = io.MultiWriter(os.Stdout, logFile)
	}

	logger := config.NewLogger(cfg, out)
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"store_driver", cfg.StoreDriver,
		"blob_driver", cfg.BlobDriver,
	)

	verifier, err := app.NewVerifier(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to create token verifier: %v", err)
	}
	defer verifier.Close()

	ctx := context.Background()

	stores, err := app.OpenStores(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open metadata store: %v", err)
	}
	defer stores.Close()

	blobs, err := app.OpenBlobStore(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open blob store: %v", err)
	}

	shareCache, closeCache := app.OpenShareCache(ctx, cfg, logger)
	defer closeCache()

	m := metrics.New()

	authorizer := authSvc.NewOwnerBasedAuthorizer(stores.Datarooms, stores.Nodes)
	dataroomService := service.NewDataroomService(stores.Datarooms, stores.Nodes, blobs, m, logger)
	nodeService := service.NewNodeService(stores.Nodes, blobs, stores.TxManager, authorizer, m, logger)
	fileService := service.NewFileService(stores.Nodes, blobs, m, logger)
	shareService := service.NewShareService(
		stores.ShareLinks,
		stores.Datarooms,
		stores.Nodes,
		blobs,
		shareCache,
		authorizer,
		cfg.PublicBaseURL,
		m,
		logger,
	)

	handlers := &handler.Handlers{
		Datarooms: handler.NewDataroomHandler(dataroomService, logger),
		Nodes:     handler.NewNodeHandler(nodeService, logger),
		Uploads:   handler.NewUploadHandler(nodeService, logger),
		Files:     handler.NewFileHandler(fileService, shareService, logger),
		Shares:    handler.NewShareHandler(shareService, logger),
	}

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()
	handlers.Register(mux, func(pattern string, next http.Handler) http.Handler {
		return middleware.Instrument(m, pattern, next)
	})
	mux.Handle("GET /metrics", m.Handler())

	// Order: CORS → Recovery → RequestLogger → Auth → Routes
	var h http.Handler = mux
	h = middleware.Auth(verifier, logger)(h)
	h = middleware.RequestLogger(logger)(h)
	h = middleware.Recovery(logger)(h)

	// CORS must be outermost so pre-flight requests never reach auth
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute, // multipart uploads
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-stop
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
