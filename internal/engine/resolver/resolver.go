// Package resolver flattens loaded entity snapshots into a placeholder
// variable map.
package resolver

import (
	"strconv"
	"time"

	"recruit-automation/internal/models"
)

const (
	DateLayout = "Monday, January 2, 2006"
	TimeLayout = "3:04 PM"
)

// VariableMap maps placeholder identifiers to resolved values. It is built
// once per render pass and never modified afterwards.
type VariableMap map[string]string

// Names returns the keys of m; order is unspecified.
func (m VariableMap) Names() []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// Resolve builds the variable map for tc from set. Ids with no loaded snapshot
// contribute nothing. With no SenderID the operator's profile fills the
// sender name, email and phone.
func Resolve(tc models.TriggerContext, set *models.EntitySet) VariableMap {
	vars := make(VariableMap)

	refs := []struct {
		kind models.EntityKind
		id   string
	}{
		{models.KindCandidate, tc.CandidateID},
		{models.KindJob, tc.JobID},
		{models.KindCompany, tc.CompanyID},
		{models.KindSender, tc.SenderID},
		{models.KindInterview, tc.InterviewID},
		{models.KindApplication, tc.ApplicationID},
	}
	for _, ref := range refs {
		if e, ok := set.Get(ref.kind, ref.id); ok {
			apply(vars, e)
		}
	}

	if tc.SenderID == "" && !tc.Operator.IsZero() {
		vars["sender_name"] = tc.Operator.Name
		vars["sender_email"] = tc.Operator.Email
		vars["sender_phone"] = tc.Operator.Phone
	}
	return vars
}

func apply(vars VariableMap, e models.Entity) {
	switch v := e.(type) {
	case models.Candidate:
		vars["candidate_name"] = v.Name
		vars["candidate_email"] = v.Email
		vars["candidate_phone"] = v.Phone
		vars["candidate_location"] = v.Location
		vars["candidate_position"] = v.Position
		vars["candidate_company"] = v.Company
		vars["candidate_experience"] = strconv.Itoa(v.Experience)
	case models.Job:
		vars["job_title"] = v.Title
		vars["job_department"] = v.Department
		vars["job_location"] = v.Location
		vars["job_type"] = v.Type
		vars["job_salary"] = v.Salary
		vars["job_description"] = v.Description
	case models.Company:
		vars["company_name"] = v.Name
		vars["company_industry"] = v.Industry
		vars["company_website"] = v.Website
		vars["company_location"] = v.Location
		vars["client_name"] = v.ClientName
	case models.Sender:
		vars["sender_name"] = v.Name
		vars["sender_email"] = v.Email
		vars["sender_phone"] = v.Phone
		vars["sender_title"] = v.Title
	case models.Interview:
		vars["interview_date"] = formatTime(v.ScheduledAt, DateLayout)
		vars["interview_time"] = formatTime(v.ScheduledAt, TimeLayout)
		vars["interview_type"] = v.Type
		vars["interview_location"] = v.Location
		vars["interview_duration"] = formatMinutes(v.Duration)
		vars["interview_link"] = v.Link
		vars["interview_interviewer"] = v.Interviewer
	case models.Application:
		vars["application_status"] = v.Status
		vars["application_date"] = formatTime(v.AppliedAt, DateLayout)
		vars["application_source"] = v.Source
		vars["application_stage"] = v.Stage
	}
}

func formatTime(t time.Time, layout string) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(layout)
}

func formatMinutes(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n) + " minutes"
}
