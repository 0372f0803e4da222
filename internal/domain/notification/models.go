package notification

import (
	"errors"
	"time"
)

var (
	ErrInvalidDeviceType = errors.New("device type must be 'ios' or 'android'")
	ErrInvalidToken      = errors.New("device token is required")
)

// DeviceToken is a registered FCM push target for one of a user's devices.
type DeviceToken struct {
	ID         string    `json:"id"`
	UserID     int64     `json:"userId"`
	Token      string    `json:"token"`
	DeviceType string    `json:"deviceType"`
	IsActive   bool      `json:"isActive"`
	CreatedAt  time.Time `json:"createdAt"`
	LastUsed   time.Time `json:"lastUsed"`
}

// CreateDeviceTokenParams carries the fields needed to register a device.
type CreateDeviceTokenParams struct {
	UserID     int64
	Token      string
	DeviceType string
}

func (p CreateDeviceTokenParams) Validate() error {
	if p.Token == "" {
		return ErrInvalidToken
	}
	switch p.DeviceType {
	case "ios", "android":
		return nil
	default:
		return ErrInvalidDeviceType
	}
}
