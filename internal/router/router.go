// Package router classifies incoming messages into one of four intents
// without a model call.
//
// DESIGN: Routing must run in microseconds, so it is keyword and pattern
// scoring only. Ordering is load-bearing:
//
//	management phrases > continuation look-back > keyword scoring >
//	clarification override > info default
//
// The continuation check must precede keyword scoring: mid-booking answers
// like "9am" or "jane@acme.com" carry no booking vocabulary and would
// otherwise fall back to the info agent and break the dialog.
package router

import (
	"regexp"
	"strings"

	"github.com/brightpath-advisory/concierge/internal/session"
	"github.com/brightpath-advisory/concierge/internal/utils"
)

// Intent is the coarse-grained purpose of a user message.
type Intent string

const (
	IntentManagement Intent = "management"
	IntentBooking    Intent = "booking"
	IntentROI        Intent = "roi"
	IntentInfo       Intent = "info"
)

// Result is the classification outcome. There is no "unclassifiable" value:
// the router always produces a best guess.
type Result struct {
	Intent     Intent
	Confidence float64
}

// Owner-only phrases. Exact-substring on normalized text, confidence 1.0,
// bypasses everything else.
var managementPhrases = []string{
	"show today's bookings",
	"show todays bookings",
	"daily spend report",
	"usage summary",
	"admin status",
}

// Patterns the assistant uses when it is waiting for booking details. When
// the previous assistant turn matches, the user's next message is almost
// certainly the answer.
var continuationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)your (full )?name`),
	regexp.MustCompile(`(?i)(your )?email( address)?`),
	regexp.MustCompile(`(?i)company( name)?\?`),
	regexp.MustCompile(`(?i)which (day|date|time|slot)`),
	regexp.MustCompile(`(?i)what (day|date|time) (works|suits)`),
	regexp.MustCompile(`(?i)(morning|afternoon) (or|/) (morning|afternoon|evening)`),
	regexp.MustCompile(`(?i)prefer.{0,30}(morning|afternoon|evening|time|date)`),
}

var bookingKeywords = map[string]int{
	"appointment":  3,
	"book":         3,
	"booking":      3,
	"schedule":     3,
	"reschedule":   3,
	"consultation": 2,
	"meeting":      2,
	"slot":         2,
	"availability": 2,
	"available":    2,
	"calendar":     2,
}

var schedulingTimeWords = map[string]int{
	"morning":   1,
	"afternoon": 1,
	"evening":   1,
	"noon":      1,
	"today":     2,
	"tomorrow":  2,
}

var weekdayWords = []string{
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
	"next week", "this week",
}

var roiKeywords = map[string]int{
	"roi":                  3,
	"return on investment": 3,
	"savings":              2,
	"save":                 2,
	"payback":              2,
	"automation":           1,
	"automate":             2,
	"payroll":              1,
	"revenue":              1,
	"profit":               1,
	"cost":                 1,
	"costs":                1,
	"spend":                1,
}

var (
	dateLikeRe  = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2}|\d{1,2}[/.]\d{1,2})\b`)
	clockTimeRe = regexp.MustCompile(`\b\d{1,2}(:\d{2})?\s*(am|pm|h)\b`)
	employeesRe = regexp.MustCompile(`\b\d+\s+(employees?|people|staff|workers?)\b`)
	hoursWeekRe = regexp.MustCompile(`\b\d+\s+hours?\s+(a|per)\s+week\b`)
	moneyRe     = regexp.MustCompile(`[$€]\s?\d+|\b\d+\s?(dollars|euros)\b`)
)

// Phrasing that signals the user wants an explanation, not an action. A weak
// booking score plus one of these resolves to info: ambiguity is settled in
// favor of the non-actionable route.
var clarificationPhrases = []string{
	"how much does", "how much is", "what is", "what are", "what does",
	"tell me about", "how does", "can you explain", "do you offer",
}

const (
	bookingThreshold = 3
	roiThreshold     = 3
)

// Classify scores a message against the intent patterns, with a short
// look-back at the assistant's previous turn.
func Classify(message string, history []session.Turn) Result {
	text := utils.NormalizeSpace(message)

	for _, phrase := range managementPhrases {
		if strings.Contains(text, phrase) {
			return Result{Intent: IntentManagement, Confidence: 1.0}
		}
	}

	if prev, ok := lastAssistantTurn(history); ok {
		for _, re := range continuationPatterns {
			if re.MatchString(prev) {
				return Result{Intent: IntentBooking, Confidence: 0.9}
			}
		}
	}

	bookingScore := scoreBooking(text)
	roiScore := scoreROI(text)

	if bookingScore > 0 && bookingScore < bookingThreshold && hasClarification(text) {
		return Result{Intent: IntentInfo, Confidence: 0.7}
	}

	bookingOK := bookingScore >= bookingThreshold
	roiOK := roiScore >= roiThreshold
	switch {
	case bookingOK && (!roiOK || bookingScore >= roiScore):
		return Result{Intent: IntentBooking, Confidence: normalize(bookingScore)}
	case roiOK:
		return Result{Intent: IntentROI, Confidence: normalize(roiScore)}
	default:
		return Result{Intent: IntentInfo, Confidence: 0.5}
	}
}

func scoreBooking(text string) int {
	score := 0
	for kw, w := range bookingKeywords {
		if strings.Contains(text, kw) {
			score += w
		}
	}
	for kw, w := range schedulingTimeWords {
		if containsWord(text, kw) {
			score += w
		}
	}
	for _, day := range weekdayWords {
		if strings.Contains(text, day) {
			score += 2
		}
	}
	if dateLikeRe.MatchString(text) {
		score += 3
	}
	if clockTimeRe.MatchString(text) {
		score += 3
	}
	return score
}

func scoreROI(text string) int {
	score := 0
	for kw, w := range roiKeywords {
		if containsWord(text, kw) {
			score += w
		}
	}
	if employeesRe.MatchString(text) {
		score += 3
	}
	if hoursWeekRe.MatchString(text) {
		score += 3
	}
	if moneyRe.MatchString(text) {
		score += 2
	}
	return score
}

func hasClarification(text string) bool {
	for _, phrase := range clarificationPhrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}

// normalize maps a raw score into (0, 1). Threshold scores land above 0.5
// and confidence grows toward 0.95 with stronger signals.
func normalize(score int) float64 {
	c := float64(score) / (float64(score) + 2.5)
	if c > 0.95 {
		c = 0.95
	}
	return c
}

func lastAssistantTurn(history []session.Turn) (string, bool) {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == session.RoleAssistant {
			return history[i].Content, true
		}
	}
	return "", false
}

// containsWord matches kw on word boundaries so "am" does not fire inside
// "sample". Multi-word keywords fall back to substring matching.
func containsWord(text, kw string) bool {
	if strings.Contains(kw, " ") {
		return strings.Contains(text, kw)
	}
	for _, w := range strings.Fields(text) {
		if strings.Trim(w, ".,!?;:'\"()") == kw {
			return true
		}
	}
	return false
}
