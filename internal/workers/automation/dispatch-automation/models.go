// internal/workers/automation/dispatch-automation/models.go
package dispatchautomation

import (
	"recruit-automation/internal/engine/dispatch"
	"recruit-automation/internal/models"
)

// Input is the job's variable document.
type Input struct {
	Trigger       string                 `json:"trigger"`
	CandidateID   string                 `json:"candidateId,omitempty"`
	JobID         string                 `json:"jobId,omitempty"`
	CompanyID     string                 `json:"companyId,omitempty"`
	SenderID      string                 `json:"senderId,omitempty"`
	InterviewID   string                 `json:"interviewId,omitempty"`
	ApplicationID string                 `json:"applicationId,omitempty"`
	Operator      models.OperatorProfile `json:"operator"`
}

// Event converts the input to a domain event. fallback is used when the job
// names no operator.
func (in Input) Event(fallback models.OperatorProfile) dispatch.Event {
	operator := in.Operator
	if operator.IsZero() {
		operator = fallback
	}
	return dispatch.Event{
		Trigger: in.Trigger,
		Context: models.TriggerContext{
			CandidateID:   in.CandidateID,
			JobID:         in.JobID,
			CompanyID:     in.CompanyID,
			SenderID:      in.SenderID,
			InterviewID:   in.InterviewID,
			ApplicationID: in.ApplicationID,
			Operator:      operator,
		},
	}
}

// Output is written back as process variables.
type Output struct {
	Trigger       string             `json:"trigger"`
	Dispatched    int                `json:"dispatched"`
	Skipped       int                `json:"skipped"`
	Failed        int                `json:"failed"`
	Outcomes      []dispatch.Outcome `json:"outcomes"`
	FetchWarnings []string           `json:"fetchWarnings,omitempty"`
}

func outputFrom(res *dispatch.RunResult) *Output {
	return &Output{
		Trigger:       string(res.Trigger),
		Dispatched:    res.Dispatched,
		Skipped:       res.Skipped,
		Failed:        res.Failed,
		Outcomes:      res.Outcomes,
		FetchWarnings: res.FetchWarnings,
	}
}
