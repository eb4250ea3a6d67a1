package trigger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		raw  string
		want Trigger
	}{
		{"On application submission", ApplicationReceived},
		{"24 hours before interview", InterviewReminder},
		{"Interview scheduled", InterviewScheduled},
		{"When candidate status changes", CandidateRejected},
		{"On hire", WelcomeNewHire},
		{"interview_completed", InterviewCompleted},
		{"  on APPLICATION submission ", ApplicationReceived},
		{"OFFER_SENT", OfferSent},
		{"something unheard of", Trigger("something unheard of")},
		{"", Trigger("")},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, Canonicalize(tt.raw))
		})
	}
}

func TestCanonicalize_LegacyTableTargetsAreCanonical(t *testing.T) {
	for raw, target := range LegacyEntries() {
		got := Canonicalize(raw)
		assert.Equal(t, target, got, raw)
		assert.True(t, IsKnown(got), "legacy %q maps to non-canonical %q", raw, got)
	}
}

func TestCanonicalize_Deterministic(t *testing.T) {
	for _, raw := range []string{"Offer sent", "nope", "interview_updated"} {
		assert.Equal(t, Canonicalize(raw), Canonicalize(raw))
		assert.Equal(t, Canonicalize(raw), Canonicalize(string(Canonicalize(raw))))
	}
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Interview Scheduled", DisplayName(InterviewScheduled))
	assert.Equal(t, "Welcome New Hire", DisplayName(WelcomeNewHire))
	assert.Equal(t, "custom_event", DisplayName(Trigger("custom_event")))
	assert.Equal(t, "", DisplayName(Trigger("")))
}

func TestAll(t *testing.T) {
	all := All()
	require.Len(t, all, 11)
	assert.Equal(t, ApplicationReceived, all[0].ID)

	all[0].DisplayName = "mutated"
	assert.Equal(t, "Application Received", DisplayName(ApplicationReceived))

	for _, info := range all {
		assert.True(t, IsKnown(info.ID))
	}
	assert.False(t, IsKnown(Trigger("Interview scheduled")))
}
