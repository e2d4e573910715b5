package model

import (
	"errors"
	"time"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no_show"
)

// ValidStatus reports whether s is one of the five appointment statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// Appointment dates are stored date-only ("2006-01-02") and times as "15:04".
type Appointment struct {
	ID              string    `json:"id"`
	AppointmentDate string    `json:"appointment_date"`
	StartTime       string    `json:"start_time"`
	EndTime         string    `json:"end_time,omitempty"`
	Status          string    `json:"status"`
	CustomerName    string    `json:"customer_name"`
	CustomerPhone   string    `json:"customer_phone,omitempty"`
	CustomerEmail   string    `json:"customer_email,omitempty"`
	ServiceID       string    `json:"service_id"`
	ServiceName     string    `json:"service_name"`
	StaffID         string    `json:"staff_id,omitempty"`
	StaffName       string    `json:"staff_name,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type Staff struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Title     string    `json:"title,omitempty"`
	Email     string    `json:"email,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type Service struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Category        string    `json:"category,omitempty"`
	DurationMinutes int       `json:"duration_minutes"`
	Price           float64   `json:"price"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
}

// AppointmentFilter scopes an appointment listing. Dates are inclusive.
type AppointmentFilter struct {
	StartDate string
	EndDate   string
	StaffID   string
	Status    string
	Limit     int
}

// BookingRequest is the payload for creating an appointment. Date, time,
// service and customer name are required; an empty StaffID means any
// available staff member.
type BookingRequest struct {
	AppointmentDate string `json:"appointment_date"`
	StartTime       string `json:"start_time"`
	ServiceID       string `json:"service_id"`
	CustomerName    string `json:"customer_name"`
	CustomerPhone   string `json:"customer_phone,omitempty"`
	CustomerEmail   string `json:"customer_email,omitempty"`
	StaffID         string `json:"staff_id,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

// Validate checks the fields a booking cannot be created without.
func (r BookingRequest) Validate() error {
	switch {
	case r.AppointmentDate == "":
		return errors.New("date required")
	case r.StartTime == "":
		return errors.New("time required")
	case r.ServiceID == "":
		return errors.New("service required")
	case r.CustomerName == "":
		return errors.New("customer name required")
	}
	return nil
}
