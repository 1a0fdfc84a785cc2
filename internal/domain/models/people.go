package models

import "time"

// User is a marketplace account (customer, salon owner or admin).
type User struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	Role      string     `json:"role"`
	Status    string     `json:"status"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// UserPayload edits an account. Password is only sent on create.
type UserPayload struct {
	Name     string `json:"name" validate:"required,max=150"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"max=30"`
	Role     string `json:"role" validate:"required,oneof=admin owner customer"`
	Status   string `json:"status" validate:"omitempty,oneof=active blocked"`
	Password string `json:"password,omitempty" validate:"omitempty,min=8,max=72"`
}

// Staff is an employee of a salon.
type Staff struct {
	ID       int64  `json:"id"`
	SalonID  int64  `json:"salon_id"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Position string `json:"position"`
	Image    string `json:"image,omitempty"`
	Active   bool   `json:"active"`
}

// StaffPayload creates or updates a staff member.
type StaffPayload struct {
	SalonID  int64  `json:"salon_id" validate:"required,gt=0"`
	Name     string `json:"name" validate:"required,max=150"`
	Phone    string `json:"phone" validate:"max=30"`
	Position string `json:"position" validate:"max=100"`
	Image    string `json:"image,omitempty" validate:"omitempty,max=255,excludes=://"`
	Active   *bool  `json:"active,omitempty"`
}

// Holiday closes a salon (or the whole marketplace when SalonID is zero) for a date range.
type Holiday struct {
	ID      int64     `json:"id"`
	SalonID int64     `json:"salon_id,omitempty"`
	Title   string    `json:"title"`
	From    time.Time `json:"from"`
	To      time.Time `json:"to"`
}

// HolidayPayload creates or updates a holiday. To may equal From for a single day.
type HolidayPayload struct {
	SalonID int64     `json:"salon_id,omitempty" validate:"gte=0"`
	Title   string    `json:"title" validate:"required,max=150"`
	From    time.Time `json:"from" validate:"required"`
	To      time.Time `json:"to" validate:"required,gtefield=From"`
}
