package scheduling

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Business hours offered each working day.
var defaultSlotStarts = []string{
	"09:00", "09:30", "10:00", "10:30", "11:00", "11:30",
	"15:00", "15:30", "16:00", "16:30", "17:00",
}

// Book is an in-memory reservation book implementing Availability and Booker.
// One mutex guards the reservations so the availability re-check and the
// commit are atomic: of two concurrent requests for the same interval,
// exactly one wins.
type Book struct {
	slotMinutes int
	now         func() time.Time

	mu       sync.Mutex
	bookings map[string][]*Booking // date -> reservations
}

// NewBook creates an empty reservation book.
func NewBook(slotMinutes int) *Book {
	if slotMinutes <= 0 {
		slotMinutes = 30
	}
	return &Book{
		slotMinutes: slotMinutes,
		now:         time.Now,
		bookings:    make(map[string][]*Booking),
	}
}

// ListAvailableDates implements Availability. Weekends are excluded.
func (b *Book) ListAvailableDates(ctx context.Context, windowDays int) ([]string, error) {
	if windowDays <= 0 {
		windowDays = 14
	}

	var dates []string
	day := b.now()
	for i := 0; i < windowDays; i++ {
		day = day.AddDate(0, 0, 1)
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		dates = append(dates, day.Format("2006-01-02"))
	}
	return dates, nil
}

// ListAvailableSlots implements Availability. Booked intervals are excluded.
func (b *Book) ListAvailableSlots(ctx context.Context, date, timezone string) ([]Slot, error) {
	loc := loadLocation(timezone)

	b.mu.Lock()
	defer b.mu.Unlock()

	var slots []Slot
	for _, start := range defaultSlotStarts {
		end := addMinutes(start, b.slotMinutes)
		taken := b.overlapsLocked(date, start, end)
		slots = append(slots, Slot{
			Time:      start,
			Label:     slotLabel(date, start, loc),
			Available: !taken,
		})
	}
	return slots, nil
}

// CreateBooking implements Booker. The overlap re-check runs under the same
// lock as the insert, closing the race between "slot shown as free" and
// "slot committed".
func (b *Book) CreateBooking(ctx context.Context, date, start string, contact Contact, kind string) (*Booking, error) {
	end := addMinutes(start, b.slotMinutes)

	if t, err := time.Parse("2006-01-02 15:04", date+" "+start); err != nil {
		return nil, fmt.Errorf("parse slot %s %s: %w", date, start, err)
	} else if t.Before(b.now().Add(-time.Minute)) {
		return nil, ErrPastSlot
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.overlapsLocked(date, start, end) {
		return nil, ErrSlotConflict
	}

	booking := &Booking{
		ID:        uuid.NewString(),
		Date:      date,
		Start:     start,
		End:       end,
		Contact:   contact,
		Kind:      kind,
		CreatedAt: b.now(),
	}
	b.bookings[date] = append(b.bookings[date], booking)

	log.Info().
		Str("booking_id", booking.ID).
		Str("date", date).
		Str("start", start).
		Msg("scheduling: booking created")

	return booking, nil
}

// overlapsLocked reports whether [start, end) intersects any reservation on
// date. Half-open intervals: back-to-back slots do not conflict.
func (b *Book) overlapsLocked(date, start, end string) bool {
	for _, existing := range b.bookings[date] {
		if start < existing.End && existing.Start < end {
			return true
		}
	}
	return false
}

// addMinutes advances an "HH:MM" clock string.
func addMinutes(clock string, minutes int) string {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return clock
	}
	return t.Add(time.Duration(minutes) * time.Minute).Format("15:04")
}

func slotLabel(date, start string, loc *time.Location) string {
	t, err := time.ParseInLocation("2006-01-02 15:04", date+" "+start, loc)
	if err != nil {
		return start
	}
	return t.Format("3:04 PM")
}

func loadLocation(timezone string) *time.Location {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
