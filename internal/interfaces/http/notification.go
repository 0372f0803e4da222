package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"centavo/internal/domain/notification"
	"centavo/internal/shared/middleware"
)

// NotificationService is the slice of the notification service the HTTP
// layer needs.
type NotificationService interface {
	RegisterDevice(ctx context.Context, params notification.CreateDeviceTokenParams) (*notification.DeviceToken, error)
	UnregisterDevice(ctx context.Context, token string) error
}

type NotificationHandler struct {
	notifications NotificationService
}

func NewNotificationHandler(notifications NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

type RegisterDeviceRequest struct {
	Token      string `json:"token"`
	DeviceType string `json:"deviceType"`
}

// HandleDevices serves POST (register) and DELETE (unregister) on /api/devices.
func (h *NotificationHandler) HandleDevices(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req RegisterDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodPost:
		dt, err := h.notifications.RegisterDevice(r.Context(), notification.CreateDeviceTokenParams{
			UserID:     userID,
			Token:      req.Token,
			DeviceType: req.DeviceType,
		})
		if err != nil {
			if errors.Is(err, notification.ErrInvalidToken) || errors.Is(err, notification.ErrInvalidDeviceType) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			log.Printf("Error registering device for user %d: %v", userID, err)
			http.Error(w, "Failed to register device", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(dt)

	case http.MethodDelete:
		if err := h.notifications.UnregisterDevice(r.Context(), req.Token); err != nil {
			if errors.Is(err, notification.ErrInvalidToken) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			log.Printf("Error unregistering device for user %d: %v", userID, err)
			http.Error(w, "Failed to unregister device", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
