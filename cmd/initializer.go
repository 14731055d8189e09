package main

import (
	"database/sql"
	"log"
	"log/slog"
	"net/http"

	"firebase.google.com/go/messaging"
	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"

	"paylinkBack/internal/cache"
	"paylinkBack/internal/config"
	"paylinkBack/internal/handlers"
	"paylinkBack/internal/repositories"
	"paylinkBack/internal/services"
	"paylinkBack/utils"
)

type application struct {
	errorLog *log.Logger
	infoLog  *log.Logger
	tokens   *utils.Manager

	authHandler     *handlers.AuthHandler
	merchantHandler *handlers.MerchantHandler
	productHandler  *handlers.ProductHandler
	linkHandler     *handlers.PaymentLinkHandler
	paymentHandler  *handlers.PaymentHandler
	webhookHandler  *handlers.WebhookHandler

	db *sql.DB
}

func initializeApp(db *sql.DB, rdb *redis.Client, fcmClient *messaging.Client, cfg config.Config, errorLog, infoLog *log.Logger) (*application, error) {
	slogger := slog.Default()

	// Repositories
	merchantRepo := repositories.MerchantRepository{DB: db}
	productRepo := repositories.ProductRepository{DB: db}
	linkRepo := repositories.PaymentLinkRepository{DB: db}
	paymentRepo := repositories.PaymentRepository{DB: db}

	// Caches
	idemStore := cache.NewIdempotencyStore(rdb)
	paymentCache := cache.NewPaymentCache(rdb)

	tokens, err := utils.NewManager(cfg.JWT.SigningKey)
	if err != nil {
		return nil, err
	}

	mansaService, err := services.NewMansaService(services.MansaConfig{
		BaseURL:      cfg.Mansa.BaseURL,
		ClientKey:    cfg.Mansa.ClientKey,
		ClientSecret: cfg.Mansa.ClientSecret,
		Logger:       slogger,
	})
	if err != nil {
		return nil, err
	}

	var storage *utils.Storage
	if cfg.Storage.Bucket != "" && cfg.Storage.Endpoint != "" {
		storage, err = utils.NewStorage(utils.StorageConfig{
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.Bucket,
			Region:    cfg.Storage.Region,
			Endpoint:  cfg.Storage.Endpoint,
		})
		if err != nil {
			return nil, err
		}
	}

	// Services
	authService := &services.AuthService{MerchantRepo: &merchantRepo, Tokens: tokens}
	productService := &services.ProductService{ProductRepo: &productRepo}
	linkService := &services.PaymentLinkService{LinkRepo: &linkRepo, ProductRepo: &productRepo}
	notifier := &services.NotificationService{
		Client:       fcmClient,
		LinkRepo:     &linkRepo,
		MerchantRepo: &merchantRepo,
		Logger:       slogger,
	}
	paymentService := &services.PaymentService{
		Payments: &paymentRepo,
		Links:    &linkRepo,
		Provider: mansaService,
		Idem:     idemStore,
		Cache:    paymentCache,
		Notifier: notifier,
		Logger:   slogger,
	}

	// Handlers
	authHandler := &handlers.AuthHandler{Service: authService}
	merchantHandler := &handlers.MerchantHandler{Service: authService}
	productHandler := &handlers.ProductHandler{Service: productService, Storage: storage}
	linkHandler := &handlers.PaymentLinkHandler{Service: linkService}
	paymentHandler := &handlers.PaymentHandler{Service: paymentService}
	webhookHandler := &handlers.WebhookHandler{Service: paymentService}

	return &application{
		errorLog:        errorLog,
		infoLog:         infoLog,
		tokens:          tokens,
		authHandler:     authHandler,
		merchantHandler: merchantHandler,
		productHandler:  productHandler,
		linkHandler:     linkHandler,
		paymentHandler:  paymentHandler,
		webhookHandler:  webhookHandler,
		db:              db,
	}, nil
}

func openDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		log.Printf("Failed to open DB: %v", err)
		return nil, err
	}
	if err = db.Ping(); err != nil {
		log.Printf("Failed to ping DB: %v", err)
		return nil, err
	}
	db.SetMaxIdleConns(35)
	log.Println("Successfully connected to database")
	return db, nil
}

func addSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
		w.Header().Set("Cross-Origin-Resource-Policy", "same-origin")
		next.ServeHTTP(w, r)
	})
}
