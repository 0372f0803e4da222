package main

import (
	"net/http"

	"centavo/internal/shared/middleware"
)

// SetupRoutes configures all HTTP routes and returns the final handler
// with middleware applied.
func SetupRoutes(deps *Dependencies) http.Handler {
	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("/health", deps.HealthHandler.HandleHealth)
	mux.HandleFunc("/webhooks/provider", deps.WebhookHandler.HandleProviderWebhook)

	// Protected routes
	authMiddleware := middleware.Auth(deps.JWT)

	mux.Handle("/api/sync", authMiddleware(http.HandlerFunc(deps.SyncHandler.HandleTriggerSync)))
	mux.Handle("/api/items", authMiddleware(http.HandlerFunc(deps.ItemHandler.HandleItems)))
	mux.Handle("/api/items/", authMiddleware(http.HandlerFunc(deps.ItemHandler.HandleItemByID)))
	mux.Handle("/api/budgets", authMiddleware(http.HandlerFunc(deps.BudgetHandler.HandleBudgets)))
	mux.Handle("/api/budgets/", authMiddleware(http.HandlerFunc(deps.BudgetHandler.HandleBudgetByID)))
	mux.Handle("/api/devices", authMiddleware(http.HandlerFunc(deps.NotificationHandler.HandleDevices)))

	// Global middleware
	return middleware.Logging(middleware.Tracing(middleware.CORS(mux)))
}
