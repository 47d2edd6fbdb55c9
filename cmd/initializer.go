package main

import (
	"database/sql"
	"log"
	"os"

	"firebase.google.com/go/messaging"
	"github.com/redis/go-redis/v9"

	"rentalBack/internal/config"
	"rentalBack/internal/handlers"
	"rentalBack/internal/repositories"
	"rentalBack/internal/services"
	"rentalBack/utils"
)

type application struct {
	errorLog *log.Logger
	infoLog  *log.Logger

	db         *sql.DB
	tokens     *utils.Manager
	signingKey string
	wsHub      *WSHub

	userRepo    *repositories.UserRepository
	itemRepo    *repositories.ItemRepository
	rentalRepo  *repositories.RentalRepository
	paymentRepo *repositories.PaymentRepository
	reviewRepo  *repositories.ReviewRepository
	itemCache   *repositories.ItemCache

	userHandler    *handlers.UserHandler
	itemHandler    *handlers.ItemHandler
	rentalHandler  *handlers.RentalHandler
	paymentHandler *handlers.PaymentHandler
	reviewHandler  *handlers.ReviewHandler
}

func initializeApp(db *sql.DB, rdb *redis.Client, fcmClient *messaging.Client, cfg config.Config, errorLog, infoLog *log.Logger) *application {
	signingKey := os.Getenv("JWT_SIGNING_KEY")
	tokens, err := utils.NewManager(signingKey)
	if err != nil {
		errorLog.Fatalf("token manager: %v", err)
	}

	// Repositories
	userRepo := &repositories.UserRepository{DB: db}
	itemRepo := &repositories.ItemRepository{DB: db}
	rentalRepo := &repositories.RentalRepository{DB: db, Items: itemRepo}
	paymentRepo := &repositories.PaymentRepository{DB: db}
	reviewRepo := &repositories.ReviewRepository{DB: db}
	itemCache := &repositories.ItemCache{RDB: rdb}

	// Lifecycle event fan-out: websocket always, FCM when configured
	wsHub := NewWSHub(infoLog)
	notifiers := []services.RentalEventNotifier{wsHub}
	if fcmClient != nil {
		notifiers = append(notifiers, services.NewFCMService(fcmClient, userRepo))
	}

	// Payment provider
	tossService, err := services.NewTossService(services.TossConfig{
		SecretKey: os.Getenv("TOSS_SECRET_KEY"),
		BaseURL:   cfg.Toss.BaseURL,
	})
	if err != nil {
		errorLog.Fatalf("toss client: %v", err)
	}

	// Services
	userService := &services.UserService{UserRepo: userRepo, Tokens: tokens}
	itemService := &services.ItemService{ItemRepo: itemRepo, Cache: itemCache}
	rentalService := &services.RentalService{
		RentalRepo: rentalRepo,
		ItemRepo:   itemRepo,
		UserRepo:   userRepo,
		Cache:      itemCache,
		Notifiers:  notifiers,
	}
	paymentService := &services.PaymentService{
		PaymentRepo: paymentRepo,
		RentalRepo:  rentalRepo,
		Provider:    tossService,
		Notifiers:   notifiers,
	}
	reviewService := &services.ReviewService{ReviewRepo: reviewRepo, RentalRepo: rentalRepo}

	return &application{
		errorLog: errorLog,
		infoLog:  infoLog,

		db:         db,
		tokens:     tokens,
		signingKey: signingKey,
		wsHub:      wsHub,

		userRepo:    userRepo,
		itemRepo:    itemRepo,
		rentalRepo:  rentalRepo,
		paymentRepo: paymentRepo,
		reviewRepo:  reviewRepo,
		itemCache:   itemCache,

		userHandler:    &handlers.UserHandler{Service: userService},
		itemHandler:    &handlers.ItemHandler{Service: itemService},
		rentalHandler:  &handlers.RentalHandler{Service: rentalService},
		paymentHandler: &handlers.PaymentHandler{Service: paymentService},
		reviewHandler:  &handlers.ReviewHandler{Service: reviewService},
	}
}
