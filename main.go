package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"greenergy-billing/internal/audit"
	"greenergy-billing/internal/auth"
	billingapp "greenergy-billing/internal/billing/application"
	billingrepo "greenergy-billing/internal/billing/infrastructure/postgres"
	billinginterfaces "greenergy-billing/internal/billing/interfaces"
	customerapp "greenergy-billing/internal/customer/application"
	customerrepo "greenergy-billing/internal/customer/infrastructure/postgres"
	customerinterfaces "greenergy-billing/internal/customer/interfaces"
	"greenergy-billing/internal/observability/metrics"
	"greenergy-billing/internal/refdata"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	metrics.Init(db, logger)
	auditRepo := audit.NewRepository(db)

	localities, err := refdata.LoadLocalityList(cfg.LocalityList)
	if err != nil {
		logger.Fatalf("locality list error: %v", err)
	}
	prices, err := billingapp.LoadPriceTable()
	if err != nil {
		logger.Fatalf("price table error: %v", err)
	}

	customerRepo := customerrepo.NewCustomerRepository(db)
	billRepo := billingrepo.NewBillRepository(db)

	customerService, err := customerapp.NewService(customerRepo, billRepo, localities)
	if err != nil {
		logger.Fatalf("customer service error: %v", err)
	}
	billingService, err := billingapp.NewBillingService(billRepo, customerRepo, prices, billingapp.SystemClock{})
	if err != nil {
		logger.Fatalf("billing service error: %v", err)
	}

	customerHandler, err := customerinterfaces.NewCustomerHandler(customerService, auditRepo)
	if err != nil {
		logger.Fatalf("customer handler error: %v", err)
	}
	loginHandler, err := customerinterfaces.NewLoginHandler(customerService, []byte(cfg.JWTSecret), cfg.TokenTTL)
	if err != nil {
		logger.Fatalf("login handler error: %v", err)
	}
	billHandler, err := billinginterfaces.NewBillHandler(billingService, customerRepo, auditRepo)
	if err != nil {
		logger.Fatalf("bill handler error: %v", err)
	}

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics", "/api/v1/auth/login"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/auth/login", loginHandler)
	mux.Handle("/api/v1/customers", customerHandler)
	mux.Handle("/api/v1/customers/", customerHandler)
	mux.Handle("/api/v1/bills", billHandler)
	mux.Handle("/api/v1/bills/", billHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	DatabaseURL  string
	HTTPAddr     string
	LocalityList string
	JWTSecret    string
	TokenTTL     time.Duration
}

func loadConfig() config {
	cfg := config{
		DatabaseURL:  getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:     getenvDefault("HTTP_ADDR", ":8080"),
		LocalityList: getenvDefault("LOCALITY_LIST", ""),
		JWTSecret:    getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
		TokenTTL:     getenvDuration("AUTH_TOKEN_TTL", 24*time.Hour),
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL or PG_DSN is required")
	}
	if cfg.LocalityList == "" {
		log.Fatal("LOCALITY_LIST is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
