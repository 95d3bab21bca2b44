package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"dataroom/internal/app"
	"dataroom/internal/auth"
	"dataroom/internal/config"
	"dataroom/internal/metrics"
	"dataroom/internal/repository/postgres"
	"dataroom/internal/seed"
	authSvc "dataroom/internal/service/auth"
	service "dataroom/internal/service/dataroom"

	"github.com/joho/godotenv"
)

func main() {
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed data rooms")
	clearData := flag.Bool("clear-data", false, "Delete all data rooms, nodes and share links (keep schema)")
	fixturePath := flag.String("fixture", "", "YAML fixture to load (default: built-in sample data)")
	userID := flag.String("user", "dev-user", "Owner user id for seeded data rooms")
	email := flag.String("email", "dev@example.com", "Owner email shown to share viewers")
	tokenTTL := flag.Duration("token-ttl", 24*time.Hour, "Lifetime of the printed dev token")
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (*dropTables || *clearData) {
		log.Fatalf("BLOCKED: --drop-tables and --clear-data are not allowed in production")
	}

	if cfg.UsesMemoryStore() {
		log.Fatalf("seed needs a database: set DATABASE_URL (STORE_DRIVER=%s)", cfg.StoreDriver)
	}

	logger := config.NewLogger(cfg, os.Stdout)

	ctx := context.Background()

	// Schema is handled here, not by AUTO_MIGRATE, so drop can run first
	cfg.AutoMigrate = false
	stores, err := app.OpenStores(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer stores.Close()

	if *dropTables {
		logger.Warn("dropping all tables", "prefix", cfg.TablePrefix)
		if err := postgres.DropTables(ctx, stores.Pool, stores.Tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
	}

	if err := postgres.EnsureSchema(ctx, stores.Pool, stores.Tables); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	logger.Info("schema ready", "prefix", cfg.TablePrefix)

	if *schemaOnly {
		return
	}

	if *clearData {
		if err := postgres.ClearData(ctx, stores.Pool, stores.Tables); err != nil {
			log.Fatalf("Failed to clear data: %v", err)
		}
		logger.Info("data cleared")
		return
	}

	var fx *seed.Fixture
	if *fixturePath != "" {
		fx, err = seed.LoadFixture(*fixturePath)
	} else {
		fx, err = seed.DefaultFixture()
	}
	if err != nil {
		log.Fatalf("Failed to load fixture: %v", err)
	}

	blobs, err := app.OpenBlobStore(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open blob store: %v", err)
	}

	m := metrics.New()
	authorizer := authSvc.NewOwnerBasedAuthorizer(stores.Datarooms, stores.Nodes)
	seeder := seed.NewSeeder(
		service.NewDataroomService(stores.Datarooms, stores.Nodes, blobs, m, logger),
		service.NewNodeService(stores.Nodes, blobs, stores.TxManager, authorizer, m, logger),
		service.NewShareService(stores.ShareLinks, stores.Datarooms, stores.Nodes, blobs,
			nil, authorizer, cfg.PublicBaseURL, m, logger),
		logger,
	)

	report, err := seeder.Apply(ctx, fx, *userID, *email)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	logger.Info("seeding complete",
		"datarooms", report.Datarooms,
		"folders", report.Folders,
		"files", report.Files,
		"skipped_files", report.SkippedFiles,
	)
	for _, u := range report.ShareURLs {
		fmt.Println("share:", u)
	}

	if cfg.JWTSecret != "" && cfg.JWKSURL == "" {
		verifier, err := auth.NewSecretVerifier(cfg.JWTSecret, logger)
		if err != nil {
			log.Fatalf("Failed to create token issuer: %v", err)
		}
		token, err := verifier.IssueToken(*userID, *email, *tokenTTL)
		if err != nil {
			log.Fatalf("Failed to issue dev token: %v", err)
		}
		fmt.Println("token:", token)
	}
}
