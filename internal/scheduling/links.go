package scheduling

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// LinkBuilder renders Google/Outlook URLs and an ICS payload for a booking.
type LinkBuilder struct {
	Organizer string // Email shown as the event organizer
	Title     string // Event title template, e.g. "Consultation with Brightpath"
}

// GenerateLinks implements CalendarLinks.
func (lb *LinkBuilder) GenerateLinks(booking *Booking, timezone string) (Links, error) {
	loc := loadLocation(timezone)

	start, err := time.ParseInLocation("2006-01-02 15:04", booking.Date+" "+booking.Start, loc)
	if err != nil {
		return Links{}, fmt.Errorf("parse booking start: %w", err)
	}
	end, err := time.ParseInLocation("2006-01-02 15:04", booking.Date+" "+booking.End, loc)
	if err != nil {
		return Links{}, fmt.Errorf("parse booking end: %w", err)
	}

	title := lb.Title
	if title == "" {
		title = "Consultation"
	}

	return Links{
		Google:  googleLink(title, start, end),
		Outlook: outlookLink(title, start, end),
		ICS:     icsPayload(lb.Organizer, title, booking, start, end),
	}, nil
}

func googleLink(title string, start, end time.Time) string {
	q := url.Values{}
	q.Set("action", "TEMPLATE")
	q.Set("text", title)
	q.Set("dates", start.UTC().Format("20060102T150405Z")+"/"+end.UTC().Format("20060102T150405Z"))
	return "https://calendar.google.com/calendar/render?" + q.Encode()
}

func outlookLink(title string, start, end time.Time) string {
	q := url.Values{}
	q.Set("subject", title)
	q.Set("startdt", start.Format(time.RFC3339))
	q.Set("enddt", end.Format(time.RFC3339))
	q.Set("path", "/calendar/action/compose")
	return "https://outlook.live.com/calendar/0/action/compose?" + q.Encode()
}

func icsPayload(organizer, title string, booking *Booking, start, end time.Time) string {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//brightpath//concierge//EN",
		"BEGIN:VEVENT",
		"UID:" + booking.ID,
		"DTSTAMP:" + time.Now().UTC().Format("20060102T150405Z"),
		"DTSTART:" + start.UTC().Format("20060102T150405Z"),
		"DTEND:" + end.UTC().Format("20060102T150405Z"),
		"SUMMARY:" + escapeICS(title),
		"ATTENDEE;CN=" + escapeICS(booking.Contact.Name) + ":mailto:" + booking.Contact.Email,
	}
	if organizer != "" {
		lines = append(lines, "ORGANIZER:mailto:"+organizer)
	}
	lines = append(lines, "END:VEVENT", "END:VCALENDAR")
	return strings.Join(lines, "\r\n")
}

func escapeICS(s string) string {
	r := strings.NewReplacer("\\", "\\\\", ";", "\\;", ",", "\\,", "\n", "\\n")
	return r.Replace(s)
}
