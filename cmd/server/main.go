package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	emailPkg "garage/internal/adapters/email"
	web "garage/internal/adapters/http"
	"garage/internal/adapters/http/perf"
	"garage/internal/adapters/storage"
	accountStore "garage/internal/adapters/storage/account"
	auditStore "garage/internal/adapters/storage/audit"
	closedDateStore "garage/internal/adapters/storage/closeddate"
	requestStore "garage/internal/adapters/storage/request"
	serviceTypeStore "garage/internal/adapters/storage/servicetype"
	"garage/internal/application/orchestrators"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Local development config lives in .env; missing file is fine.
	_ = godotenv.Load()

	// Initialize database with WAL mode, foreign keys, and busy timeout
	dbPath := envOrDefault("GARAGE_DB_PATH", "garage.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}

	if err := storage.InitDB(db); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// Performance instrumentation: wrap DB with timing, create collector
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector)

	stores := &web.Stores{
		AccountStore:     accountStore.NewSQLiteStore(timedDB),
		RequestStore:     requestStore.NewSQLiteStore(timedDB),
		ClosedDateStore:  closedDateStore.NewSQLiteStore(timedDB),
		ServiceTypeStore: serviceTypeStore.NewSQLiteStore(timedDB),
		AuditStore:       auditStore.NewSQLiteStore(timedDB),
	}

	// Bootstrap the admin account and default service taxonomy
	seedInput := orchestrators.SeedInput{
		AdminEmail:    os.Getenv("GARAGE_ADMIN_EMAIL"),
		AdminPassword: os.Getenv("GARAGE_ADMIN_PASSWORD"),
	}
	seedDeps := orchestrators.SeedDeps{
		AccountStore:     stores.AccountStore,
		ServiceTypeStore: stores.ServiceTypeStore,
		GenerateID:       uuid.NewString,
		Now:              time.Now,
	}
	if err := orchestrators.ExecuteSeed(context.Background(), seedInput, seedDeps); err != nil {
		log.Fatalf("failed to seed database: %v", err)
	}

	// Configure email sender
	resendKey := os.Getenv("GARAGE_RESEND_KEY")
	emailFrom := envOrDefault("GARAGE_EMAIL_FROM", "Garage Bookings <noreply@garage.example>")
	notifyTo := os.Getenv("GARAGE_NOTIFY_EMAIL")
	if resendKey != "" {
		web.SetEmailSender(emailPkg.NewResendSender(resendKey, emailFrom), emailFrom, notifyTo)
		log.Println("Email sender configured (Resend)")
	} else {
		web.SetEmailSender(emailPkg.NewNoopSender(), emailFrom, notifyTo)
		if os.Getenv("GARAGE_ENV") == "production" {
			log.Println("WARNING: GARAGE_RESEND_KEY is not set, email delivery is DISABLED in production")
		} else {
			log.Println("Email sender configured (noop, set GARAGE_RESEND_KEY for real delivery)")
		}
	}

	// Create HTTP handler with middleware (pass collector for timing)
	mux := web.NewMux(stores, collector)

	addr := envOrDefault("GARAGE_ADDR", ":8080")
	log.Printf("Garage %s starting on %s (env=%s)", version, addr, envOrDefault("GARAGE_ENV", "development"))

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
