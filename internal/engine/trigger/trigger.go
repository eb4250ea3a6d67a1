// Package trigger holds the canonical event taxonomy and the compatibility
// table for free-text triggers saved by older editors.
package trigger

import "strings"

// Trigger is a canonical event id, or an unrecognized raw value passed through.
type Trigger string

const (
	ApplicationReceived  Trigger = "application_received"
	InterviewScheduled   Trigger = "interview_scheduled"
	InterviewReminder    Trigger = "interview_reminder"
	InterviewCompleted   Trigger = "interview_completed"
	InterviewCancelled   Trigger = "interview_cancelled"
	InterviewRescheduled Trigger = "interview_rescheduled"
	InterviewUpdated     Trigger = "interview_updated"
	CandidateAccepted    Trigger = "candidate_accepted"
	CandidateRejected    Trigger = "candidate_rejected"
	OfferSent            Trigger = "offer_sent"
	WelcomeNewHire       Trigger = "welcome_new_hire"
)

// Info pairs a canonical trigger with its display name.
type Info struct {
	ID          Trigger `json:"id"`
	DisplayName string  `json:"displayName"`
}

var canonical = []Info{
	{ApplicationReceived, "Application Received"},
	{InterviewScheduled, "Interview Scheduled"},
	{InterviewReminder, "Interview Reminder"},
	{InterviewCompleted, "Interview Completed"},
	{InterviewCancelled, "Interview Cancelled"},
	{InterviewRescheduled, "Interview Rescheduled"},
	{InterviewUpdated, "Interview Updated"},
	{CandidateAccepted, "Candidate Accepted"},
	{CandidateRejected, "Candidate Rejected"},
	{OfferSent, "Offer Sent"},
	{WelcomeNewHire, "Welcome New Hire"},
}

// legacy maps free-text trigger descriptions onto canonical ids.
//
// "When candidate status changes" collapses to candidate_rejected. The old
// editor offered it as a generic status event but every stored rule using it
// sent rejection copy; keep it until product decides otherwise.
var legacy = map[string]Trigger{
	"On application submission":     ApplicationReceived,
	"Application received":          ApplicationReceived,
	"When application is received":  ApplicationReceived,
	"Interview scheduled":           InterviewScheduled,
	"When interview is scheduled":   InterviewScheduled,
	"24 hours before interview":     InterviewReminder,
	"1 hour before interview":       InterviewReminder,
	"Interview reminder":            InterviewReminder,
	"After interview":               InterviewCompleted,
	"Interview completed":           InterviewCompleted,
	"Interview cancelled":           InterviewCancelled,
	"Interview rescheduled":         InterviewRescheduled,
	"Interview updated":             InterviewUpdated,
	"Candidate accepted":            CandidateAccepted,
	"When candidate is accepted":    CandidateAccepted,
	"Candidate rejected":            CandidateRejected,
	"When candidate status changes": CandidateRejected,
	"Offer sent":                    OfferSent,
	"When offer is sent":            OfferSent,
	"Candidate hired":               WelcomeNewHire,
	"On hire":                       WelcomeNewHire,
}

var (
	displayNames = make(map[Trigger]string, len(canonical))
	legacyFolded = make(map[string]Trigger, len(legacy))
)

func init() {
	for _, info := range canonical {
		displayNames[info.ID] = info.DisplayName
	}
	for raw, t := range legacy {
		legacyFolded[strings.ToLower(raw)] = t
	}
}

// Canonicalize maps raw onto a canonical trigger. Canonical ids and exact
// legacy entries match first, then a trimmed case-insensitive legacy match.
// Anything else is returned unchanged; callers check IsKnown.
func Canonicalize(raw string) Trigger {
	if _, ok := displayNames[Trigger(raw)]; ok {
		return Trigger(raw)
	}
	if t, ok := legacy[raw]; ok {
		return t
	}
	folded := strings.ToLower(strings.TrimSpace(raw))
	if t, ok := legacyFolded[folded]; ok {
		return t
	}
	if _, ok := displayNames[Trigger(folded)]; ok {
		return Trigger(folded)
	}
	return Trigger(raw)
}

// IsKnown reports whether t is one of the canonical triggers.
func IsKnown(t Trigger) bool {
	_, ok := displayNames[t]
	return ok
}

// DisplayName returns the human label for t, or t itself when none is registered.
func DisplayName(t Trigger) string {
	if name, ok := displayNames[t]; ok {
		return name
	}
	return string(t)
}

// All returns the canonical triggers in display order.
func All() []Info {
	out := make([]Info, len(canonical))
	copy(out, canonical)
	return out
}

// LegacyEntries returns a copy of the compatibility table.
func LegacyEntries() map[string]Trigger {
	out := make(map[string]Trigger, len(legacy))
	for k, v := range legacy {
		out[k] = v
	}
	return out
}

func (t Trigger) String() string { return string(t) }
