package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/brightpath-advisory/concierge/internal/llm"
	"github.com/brightpath-advisory/concierge/internal/notify"
	"github.com/brightpath-advisory/concierge/internal/roi"
	"github.com/brightpath-advisory/concierge/internal/scheduling"
	"github.com/brightpath-advisory/concierge/internal/utils"
)

// Tool names.
const (
	ToolGetAvailableDates = "get_available_dates"
	ToolGetAvailableSlots = "get_available_slots"
	ToolCreateBooking     = "create_booking"
	ToolCalculateROI      = "calculate_roi"
	ToolRespondToUser     = "respond_to_user"
)

// SuiteConfig wires the external collaborators into the tool handlers.
type SuiteConfig struct {
	Availability scheduling.Availability
	Booker       scheduling.Booker
	Links        scheduling.CalendarLinks
	Mailer       notify.Mailer
	CRM          notify.CRM

	WindowDays  int
	Timezone    string
	ToolTimeout time.Duration
	LeadWeights roi.ScoreWeights
}

// NewSuite builds the registry with the full tool set.
func NewSuite(cfg SuiteConfig) (*Registry, error) {
	s := &suite{cfg: cfg}
	r := NewRegistry(cfg.ToolTimeout)

	for _, reg := range []struct {
		tool    llm.Tool
		handler Handler
	}{
		{availableDatesTool, s.getAvailableDates},
		{availableSlotsTool, s.getAvailableSlots},
		{createBookingTool, s.createBooking},
		{calculateROITool, s.calculateROI},
		{respondToUserTool, s.respondToUser},
	} {
		if err := r.Register(reg.tool, reg.handler); err != nil {
			return nil, err
		}
	}
	return r, nil
}

type suite struct {
	cfg SuiteConfig
}

var (
	dateArgRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timeArgRe = regexp.MustCompile(`^\d{2}:\d{2}$`)
)

var availableDatesTool = llm.Tool{
	Name:        ToolGetAvailableDates,
	Description: "List upcoming dates with open consultation slots. Dates in YYYY-MM-DD format; offer the user 3-4 options.",
	InputSchema: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"window_days": map[string]any{"type": "integer", "description": "How many days ahead to look (default 14)."},
		},
	},
}

var availableSlotsTool = llm.Tool{
	Name:        ToolGetAvailableSlots,
	Description: "List open time slots for one date. Always check availability before proposing times.",
	InputSchema: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"date":     map[string]any{"type": "string", "description": "Date in YYYY-MM-DD format."},
			"timezone": map[string]any{"type": "string", "description": "IANA timezone for slot labels."},
		},
		"required": []string{"date"},
	},
}

var createBookingTool = llm.Tool{
	Name:        ToolCreateBooking,
	Description: "Commit a consultation booking once date, time, name, and email are confirmed with the user.",
	InputSchema: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"date":      map[string]any{"type": "string", "description": "Date in YYYY-MM-DD format."},
			"time":      map[string]any{"type": "string", "description": "Start time in HH:MM 24h format."},
			"name":      map[string]any{"type": "string"},
			"email":     map[string]any{"type": "string"},
			"company":   map[string]any{"type": "string"},
			"notes":     map[string]any{"type": "string"},
			"industry":  map[string]any{"type": "string"},
			"employees": map[string]any{"type": "integer"},
		},
		"required": []string{"date", "time", "name", "email"},
	},
}

var calculateROITool = llm.Tool{
	Name:        ToolCalculateROI,
	Description: "Estimate automation savings once industry, team size, hourly labor cost, and weekly manual hours are gathered.",
	InputSchema: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"industry":       map[string]any{"type": "string"},
			"employees":      map[string]any{"type": "integer"},
			"hourly_cost":    map[string]any{"type": "number"},
			"hours_per_week": map[string]any{"type": "number"},
		},
		"required": []string{"employees", "hourly_cost", "hours_per_week"},
	},
}

var respondToUserTool = llm.Tool{
	Name:        ToolRespondToUser,
	Description: "Address the user directly, e.g. to ask for their name, email, or preferred time. Use instead of plain text.",
	InputSchema: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"message": map[string]any{"type": "string", "description": "The message to show the user."},
		},
		"required": []string{"message"},
	},
}

func (s *suite) getAvailableDates(ctx context.Context, args json.RawMessage) (Result, error) {
	windowDays := int(gjson.GetBytes(args, "window_days").Int())
	if windowDays <= 0 {
		windowDays = s.cfg.WindowDays
	}

	dates, err := s.cfg.Availability.ListAvailableDates(ctx, windowDays)
	if err != nil {
		return Result{}, fmt.Errorf("list dates: %w", err)
	}

	payload, err := utils.MarshalNoEscape(map[string]any{
		"dates": dates,
		"hint":  "Dates in YYYY-MM-DD format, offer 3-4 options.",
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Content: string(payload)}, nil
}

func (s *suite) getAvailableSlots(ctx context.Context, args json.RawMessage) (Result, error) {
	date := gjson.GetBytes(args, "date").String()
	if !dateArgRe.MatchString(date) {
		return Result{}, fmt.Errorf("date must be YYYY-MM-DD, got %q", date)
	}
	timezone := gjson.GetBytes(args, "timezone").String()
	if timezone == "" {
		timezone = s.cfg.Timezone
	}

	slots, err := s.cfg.Availability.ListAvailableSlots(ctx, date, timezone)
	if err != nil {
		return Result{}, fmt.Errorf("list slots: %w", err)
	}

	open := make([]scheduling.Slot, 0, len(slots))
	for _, slot := range slots {
		if slot.Available {
			open = append(open, slot)
		}
	}

	payload, err := utils.MarshalNoEscape(map[string]any{
		"date":  date,
		"slots": open,
		"hint":  "Offer at most 3-4 options and ask which works best.",
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Content: string(payload)}, nil
}

// createBooking re-checks the slot through the booker even though the model
// was shown availability moments earlier; the booker's conflict check is the
// authority on the race between "shown free" and "committed".
func (s *suite) createBooking(ctx context.Context, args json.RawMessage) (Result, error) {
	date := gjson.GetBytes(args, "date").String()
	start := gjson.GetBytes(args, "time").String()
	contact := scheduling.Contact{
		Name:    strings.TrimSpace(gjson.GetBytes(args, "name").String()),
		Email:   strings.TrimSpace(gjson.GetBytes(args, "email").String()),
		Company: strings.TrimSpace(gjson.GetBytes(args, "company").String()),
		Notes:   strings.TrimSpace(gjson.GetBytes(args, "notes").String()),
	}

	if !dateArgRe.MatchString(date) {
		return Result{}, fmt.Errorf("date must be YYYY-MM-DD, got %q", date)
	}
	if !timeArgRe.MatchString(start) {
		return Result{}, fmt.Errorf("time must be HH:MM, got %q", start)
	}
	if contact.Name == "" || !strings.Contains(contact.Email, "@") {
		return Result{}, errors.New("name and a valid email are required")
	}

	booking, err := s.cfg.Booker.CreateBooking(ctx, date, start, contact, "consultation")
	if errors.Is(err, scheduling.ErrSlotConflict) {
		payload, _ := utils.MarshalNoEscape(map[string]string{
			"error": "slot_conflict",
			"hint":  "That slot was just taken. Fetch fresh availability and offer an alternative.",
		})
		return Result{Content: string(payload), IsError: true}, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("create booking: %w", err)
	}

	links, err := s.cfg.Links.GenerateLinks(booking, s.cfg.Timezone)
	if err != nil {
		return Result{}, fmt.Errorf("calendar links: %w", err)
	}

	// Auxiliary notifications run detached: the booking is confirmed the
	// moment the reservation is committed, and their failure must not undo it.
	leadInputs := roi.Inputs{
		Industry:  gjson.GetBytes(args, "industry").String(),
		Employees: int(gjson.GetBytes(args, "employees").Int()),
	}
	score := roi.LeadScore(leadInputs, contact.Name, contact.Email, contact.Company, s.cfg.LeadWeights)

	notify.Dispatch("confirmation_email", func() error {
		return s.cfg.Mailer.SendConfirmation(context.Background(), booking, links)
	})
	notify.Dispatch("internal_dossier", func() error {
		return s.cfg.Mailer.SendInternalDossier(context.Background(), booking, score)
	})
	notify.Dispatch("crm_upsert", func() error {
		return s.cfg.CRM.UpsertLead(context.Background(), contact, score)
	})

	payload := []byte(`{}`)
	payload, _ = sjson.SetBytes(payload, "status", "confirmed")
	payload, _ = sjson.SetBytes(payload, "booking_id", booking.ID)
	payload, _ = sjson.SetBytes(payload, "date", booking.Date)
	payload, _ = sjson.SetBytes(payload, "start", booking.Start)
	payload, _ = sjson.SetBytes(payload, "end", booking.End)
	payload, _ = sjson.SetBytes(payload, "calendar_links.google", links.Google)
	payload, _ = sjson.SetBytes(payload, "calendar_links.outlook", links.Outlook)
	payload, _ = sjson.SetBytes(payload, "hint", "Confirm the booking to the user and share the calendar links.")
	return Result{Content: string(payload)}, nil
}

func (s *suite) calculateROI(ctx context.Context, args json.RawMessage) (Result, error) {
	in := roi.Inputs{
		Industry:     gjson.GetBytes(args, "industry").String(),
		Employees:    int(gjson.GetBytes(args, "employees").Int()),
		HourlyCost:   gjson.GetBytes(args, "hourly_cost").Float(),
		HoursPerWeek: gjson.GetBytes(args, "hours_per_week").Float(),
	}
	if in.Employees <= 0 || in.HourlyCost <= 0 || in.HoursPerWeek <= 0 {
		return Result{}, errors.New("employees, hourly_cost, and hours_per_week must be positive")
	}

	result := roi.Calculate(in)
	payload, err := utils.MarshalNoEscape(map[string]any{
		"estimate": result,
		"hint":     "Present the estimate as a range, not a guarantee, and offer a consultation.",
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Content: string(payload)}, nil
}

// respondToUser is the escape-hatch tool. The agent loop intercepts it before
// execution; this handler only exists so a stray call still behaves sanely.
func (s *suite) respondToUser(_ context.Context, args json.RawMessage) (Result, error) {
	return Result{Content: gjson.GetBytes(args, "message").String()}, nil
}
