// Package scheduling defines the availability, booking, and calendar-link
// contracts the orchestration core consumes, plus an in-memory reservation
// book used for single-instance deployments and tests.
package scheduling

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors.
var (
	ErrSlotConflict = errors.New("slot already booked")
	ErrPastSlot     = errors.New("slot is in the past")
)

// Contact identifies the person booking a consultation.
type Contact struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

// Slot is one offerable time window on a given date.
type Slot struct {
	Time      string `json:"time"`  // "09:00"
	Label     string `json:"label"` // "9:00 AM"
	Available bool   `json:"available"`
}

// Booking is a committed reservation.
type Booking struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`  // "2026-02-09"
	Start     string    `json:"start"` // "09:00"
	End       string    `json:"end"`   // "09:30"
	Contact   Contact   `json:"contact"`
	Kind      string    `json:"kind"` // "consultation", "followup"
	CreatedAt time.Time `json:"created_at"`
}

// Availability lists offerable dates and slots. Implementations must already
// exclude cancelled or conflicting reservations.
type Availability interface {
	ListAvailableDates(ctx context.Context, windowDays int) ([]string, error)
	ListAvailableSlots(ctx context.Context, date, timezone string) ([]Slot, error)
}

// Booker commits reservations. CreateBooking returns ErrSlotConflict when the
// requested interval overlaps an existing reservation.
type Booker interface {
	CreateBooking(ctx context.Context, date, start string, contact Contact, kind string) (*Booking, error)
}

// CalendarLinks renders add-to-calendar artifacts for a committed booking.
type CalendarLinks interface {
	GenerateLinks(booking *Booking, timezone string) (Links, error)
}

// Links holds the add-to-calendar outputs.
type Links struct {
	Google  string `json:"google"`
	Outlook string `json:"outlook"`
	ICS     string `json:"ics"` // Downloadable file content
}
