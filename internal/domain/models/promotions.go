package models

import "time"

// Coupon is a discount code.
type Coupon struct {
	ID         int64      `json:"id"`
	Code       string     `json:"code"`
	Type       string     `json:"type"`
	Value      float64    `json:"value"`
	UsageLimit int        `json:"usage_limit"`
	Used       int        `json:"used"`
	StartsAt   *time.Time `json:"starts_at,omitempty"`
	EndsAt     *time.Time `json:"ends_at,omitempty"`
	Active     bool       `json:"active"`
}

// CouponPayload creates or updates a coupon. The validity window must be ordered.
type CouponPayload struct {
	Code       string    `json:"code" validate:"required,alphanum,min=3,max=32"`
	Type       string    `json:"type" validate:"required,oneof=percent fixed"`
	Value      float64   `json:"value" validate:"gt=0"`
	UsageLimit int       `json:"usage_limit" validate:"gte=0"`
	StartsAt   time.Time `json:"starts_at" validate:"required"`
	EndsAt     time.Time `json:"ends_at" validate:"required,gtfield=StartsAt"`
	Active     *bool     `json:"active,omitempty"`
}

// Gift is a prepaid gift card.
type Gift struct {
	ID            int64      `json:"id"`
	Code          string     `json:"code"`
	SenderName    string     `json:"sender_name"`
	RecipientName string     `json:"recipient_name"`
	Amount        float64    `json:"amount"`
	Status        string     `json:"status"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}

// GiftPayload issues or edits a gift card.
type GiftPayload struct {
	RecipientName  string     `json:"recipient_name" validate:"required,max=150"`
	RecipientPhone string     `json:"recipient_phone" validate:"required,max=30"`
	Amount         float64    `json:"amount" validate:"gt=0"`
	Message        string     `json:"message" validate:"max=500"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
}
