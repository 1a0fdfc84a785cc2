package models

import "time"

// Booking is a row of the appointments screen.
type Booking struct {
	ID            int64      `json:"id"`
	Code          string     `json:"code"`
	CustomerName  string     `json:"customer_name"`
	CustomerPhone string     `json:"customer_phone"`
	SalonID       int64      `json:"salon_id"`
	SalonName     string     `json:"salon_name"`
	ServiceName   string     `json:"service_name"`
	StaffName     string     `json:"staff_name,omitempty"`
	Status        string     `json:"status"`
	Total         float64    `json:"total"`
	ScheduledAt   *time.Time `json:"scheduled_at,omitempty"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
}

// BookingStatusPayload updates the status of an appointment.
type BookingStatusPayload struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed completed cancelled no_show"`
	Note   string `json:"note" validate:"max=500"`
}

// Payment is a row of the payments screen.
type Payment struct {
	ID        int64      `json:"id"`
	BookingID int64      `json:"booking_id"`
	Amount    float64    `json:"amount"`
	Method    string     `json:"method"`
	Status    string     `json:"status"`
	Reference string     `json:"reference,omitempty"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
}

// PaymentStatusPayload is used for refunds and manual settlement.
type PaymentStatusPayload struct {
	Status string `json:"status" validate:"required,oneof=paid refunded failed pending"`
	Reason string `json:"reason" validate:"required_if=Status refunded,max=500"`
}

// Complaint is a customer complaint about a booking or salon.
type Complaint struct {
	ID           int64      `json:"id"`
	BookingID    int64      `json:"booking_id,omitempty"`
	CustomerName string     `json:"customer_name"`
	Subject      string     `json:"subject"`
	Message      string     `json:"message"`
	Status       string     `json:"status"`
	Reply        string     `json:"reply,omitempty"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
}

// ComplaintReplyPayload answers and optionally closes a complaint.
type ComplaintReplyPayload struct {
	Reply  string `json:"reply" validate:"required,max=2000"`
	Status string `json:"status" validate:"required,oneof=open in_progress resolved closed"`
}

// Review is a customer rating of a salon.
type Review struct {
	ID           int64      `json:"id"`
	SalonID      int64      `json:"salon_id"`
	SalonName    string     `json:"salon_name"`
	CustomerName string     `json:"customer_name"`
	Rating       int        `json:"rating"`
	Comment      string     `json:"comment"`
	Visible      bool       `json:"visible"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
}

// ReviewModerationPayload hides or shows a review.
type ReviewModerationPayload struct {
	Visible *bool `json:"visible" validate:"required"`
}
