package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"database/sql"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/storefront-labs/shop-wallet/internal/config"
	"github.com/storefront-labs/shop-wallet/internal/handler"
	"github.com/storefront-labs/shop-wallet/internal/middleware"
	"github.com/storefront-labs/shop-wallet/internal/proofstore"
	"github.com/storefront-labs/shop-wallet/internal/repository"
	"github.com/storefront-labs/shop-wallet/internal/scheduler"
	"github.com/storefront-labs/shop-wallet/internal/service"
	"github.com/storefront-labs/shop-wallet/internal/utils/email"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Initialize layers
	repo := repository.NewRepository(db)
	mailer := email.NewSender(cfg, logger)
	svc := service.NewService(repo, logger, cfg, mailer)
	proofs, err := proofstore.NewStore(cfg.UploadDir, cfg.BaseURL, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize proof store: %v", err)
	}
	h := handler.NewHandler(svc, proofs, cfg, logger)

	// Schedule the nightly ledger audit
	auditor := scheduler.NewAuditor(repo, mailer, logger, cfg.AdminEmail)
	if err := auditor.Start(cfg.AuditSchedule); err != nil {
		logger.Fatalf("Failed to schedule ledger audit: %v", err)
	}
	defer auditor.Stop()
	if cfg.AuditOnStart {
		if _, err := auditor.Run(context.Background()); err != nil {
			logger.Errorf("Startup ledger audit failed: %v", err)
		}
	}

	// Setup router
	r := mux.NewRouter()
	// Public routes
	r.HandleFunc("/health", h.Health).Methods("GET")
	r.HandleFunc("/api/auth/register", h.Register).Methods("POST")
	r.HandleFunc("/api/auth/login", h.Login).Methods("POST")
	r.HandleFunc("/api/product", h.Products).Methods("GET")
	r.PathPrefix("/uploads/").Handler(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir(proofs.Dir()))))

	// Protected routes
	authRouter := r.PathPrefix("/api/transaction").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg))
	authRouter.HandleFunc("/create", h.CreateTransaction).Methods("POST")
	authRouter.HandleFunc("/history", h.History).Methods("GET")
	authRouter.HandleFunc("/balance", h.Balance).Methods("GET")

	// Admin routes
	adminRouter := authRouter.NewRoute().Subrouter()
	adminRouter.Use(middleware.AdminOnly)
	adminRouter.HandleFunc("/all", h.AllTransactions).Methods("GET")
	adminRouter.HandleFunc("/export", h.Export).Methods("GET")
	adminRouter.HandleFunc("/status/{id}", h.UpdateStatus).Methods("PUT")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
