package web

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"os"
	"time"

	"garage/internal/adapters/email"
	"garage/internal/adapters/http/middleware"
	"garage/internal/adapters/http/perf"
	accountStore "garage/internal/adapters/storage/account"
	auditStore "garage/internal/adapters/storage/audit"
	closedDateStore "garage/internal/adapters/storage/closeddate"
	requestStore "garage/internal/adapters/storage/request"
	serviceTypeStore "garage/internal/adapters/storage/servicetype"
)

// Stores holds all storage dependencies.
type Stores struct {
	AccountStore     accountStore.Store
	RequestStore     requestStore.Store
	ClosedDateStore  closedDateStore.Store
	ServiceTypeStore serviceTypeStore.Store
	AuditStore       auditStore.Store
}

// loadCSRFKey reads the CSRF secret from GARAGE_CSRF_KEY (hex-encoded, 32 bytes).
// In production, the key MUST be set. In development, a random key is generated per startup.
func loadCSRFKey() []byte {
	if keyHex := os.Getenv("GARAGE_CSRF_KEY"); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			log.Fatal("GARAGE_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key
	}
	if os.Getenv("GARAGE_ENV") == "production" {
		log.Fatal("GARAGE_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate CSRF key: %v", err)
	}
	log.Println("WARNING: using random CSRF key. Set GARAGE_CSRF_KEY for production.")
	return key
}

// loadTokenSecret reads the JWT signing secret from GARAGE_TOKEN_SECRET.
// In production, the secret MUST be set. In development, a random secret is
// generated per startup (issued tokens do not survive restarts).
func loadTokenSecret() []byte {
	if secret := os.Getenv("GARAGE_TOKEN_SECRET"); secret != "" {
		return []byte(secret)
	}
	if os.Getenv("GARAGE_ENV") == "production" {
		log.Fatal("GARAGE_TOKEN_SECRET is required in production")
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		log.Fatalf("failed to generate token secret: %v", err)
	}
	log.Println("WARNING: using random token secret. Set GARAGE_TOKEN_SECRET for production.")
	return secret
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global token issuer (set by NewMux)
var tokenIssuer *middleware.TokenIssuer

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// Global email sender instance (set by SetEmailSender)
var emailSender email.Sender

// Email configuration
var emailFromAddress string
var notifyAddress string

// SetEmailSender sets the global email sender for the application.
func SetEmailSender(sender email.Sender, from, notify string) {
	emailSender = sender
	emailFromAddress = from
	notifyAddress = notify
}

// NewMux wires HTTP handlers for the app.
func NewMux(s *Stores, collector *perf.Collector) http.Handler {
	stores = s
	perfCollector = collector
	tokenIssuer = middleware.NewTokenIssuer(loadTokenSecret())

	mux := http.NewServeMux()
	registerRoutes(mux)

	// CSRF key: 32-byte hex-encoded secret from env var
	csrfKey := loadCSRFKey()

	// Rate limiter: configurable requests per second per IP (OWASP A04)
	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Apply middleware: Timing -> Auth -> CSRF -> SecurityHeaders -> RateLimit -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey),
		middleware.Auth(tokenIssuer),
		middleware.RateLimit(limiter),
		middleware.Timing(collector),
	)
}
