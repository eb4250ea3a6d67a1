// internal/models/context.go
package models

// TriggerContext names the entity ids relevant to one run or preview.
// Any subset may be empty.
type TriggerContext struct {
	CandidateID   string `json:"candidateId,omitempty"`
	JobID         string `json:"jobId,omitempty"`
	CompanyID     string `json:"companyId,omitempty"`
	SenderID      string `json:"senderId,omitempty"`
	InterviewID   string `json:"interviewId,omitempty"`
	ApplicationID string `json:"applicationId,omitempty"`

	// Operator is the acting user; it signs the message when SenderID is empty.
	Operator OperatorProfile `json:"operator"`
}

// OperatorProfile is the signed-in operator's own contact details.
type OperatorProfile struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// IsZero reports whether no profile fields are set.
func (p OperatorProfile) IsZero() bool {
	return p.Name == "" && p.Email == "" && p.Phone == ""
}
