package main

import (
	"context"
	"log"

	"centavo/internal/domain/budget"
	"centavo/internal/domain/item"
	"centavo/internal/domain/notification"
	"centavo/internal/domain/sync"
	"centavo/internal/infrastructure/crypto"
	"centavo/internal/infrastructure/firebase"
	"centavo/internal/infrastructure/postgres"
	"centavo/internal/infrastructure/provider"
	httphandlers "centavo/internal/interfaces/http"
	"centavo/internal/shared/auth"
	"centavo/internal/shared/config"
	"centavo/internal/shared/messages"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	DB *postgres.DB

	// Handlers
	SyncHandler         *httphandlers.SyncHandler
	WebhookHandler      *httphandlers.WebhookHandler
	BudgetHandler       *httphandlers.BudgetHandler
	ItemHandler         *httphandlers.ItemHandler
	NotificationHandler *httphandlers.NotificationHandler
	HealthHandler       *httphandlers.HealthHandler

	// Auth
	JWT *auth.JWT

	// Services and repositories for the scheduler job provider
	SyncService         *sync.Service
	NotificationService *notification.Service
	ItemRepo            *postgres.ItemRepository
}

// NewDependencies initializes all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}
	log.Println("Connected to database")

	encryptor, err := crypto.NewEncryptor(cfg.Encryption.Key)
	if err != nil {
		return nil, err
	}

	// Repositories
	itemRepo := postgres.NewItemRepository(db, encryptor)
	accountRepo := postgres.NewAccountRepository(db)
	transactionRepo := postgres.NewTransactionRepository(db)
	budgetRepo := postgres.NewBudgetRepository(db)
	deviceTokenRepo := postgres.NewDeviceTokenRepository(db)

	// Provider client and sync engine
	providerClient := provider.NewClient(cfg.Provider.BaseURL, cfg.Provider.ClientID, cfg.Provider.Secret)
	accountReconciler := sync.NewAccountReconciler(accountRepo)
	transactionReconciler := sync.NewTransactionReconciler(transactionRepo, accountRepo)
	syncService := sync.NewService(providerClient, itemRepo, accountReconciler, transactionReconciler)

	// Domain services
	itemService := item.NewService(itemRepo, providerClient)
	budgetService := budget.NewService(budgetRepo, transactionRepo)

	// Push notifications (optional: disabled without Firebase credentials)
	var messenger notification.Messenger
	if cfg.Firebase.CredentialsFile != "" {
		fcmClient, err := firebase.NewClient(ctx, cfg.Firebase.CredentialsFile, deviceTokenRepo.DeactivateToken)
		if err != nil {
			log.Printf("Warning: Failed to initialize Firebase, push notifications disabled: %v", err)
		} else {
			messenger = fcmClient
		}
	}
	msgs, err := messages.Load(cfg.Firebase.MessagesFile)
	if err != nil {
		log.Printf("Warning: Failed to load notification messages, using defaults: %v", err)
		msgs = messages.Default()
	}
	notificationService := notification.NewService(deviceTokenRepo, messenger, msgs)

	jwt := auth.NewJWT(cfg.JWT.Secret)

	return &Dependencies{
		DB:                  db,
		SyncHandler:         httphandlers.NewSyncHandler(syncService),
		WebhookHandler:      httphandlers.NewWebhookHandler(syncService, cfg.Provider.WebhookSecret),
		BudgetHandler:       httphandlers.NewBudgetHandler(budgetService),
		ItemHandler:         httphandlers.NewItemHandler(itemService),
		NotificationHandler: httphandlers.NewNotificationHandler(notificationService),
		HealthHandler:       httphandlers.NewHealthHandler(db),
		JWT:                 jwt,
		SyncService:         syncService,
		NotificationService: notificationService,
		ItemRepo:            itemRepo,
	}, nil
}

// Close releases all resources held by dependencies.
func (d *Dependencies) Close() {
	if d.DB != nil {
		d.DB.Close()
	}
}
