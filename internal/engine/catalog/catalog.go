// Package catalog declares which variables each entity kind can supply.
package catalog

import "recruit-automation/internal/models"

// Variable is one placeholder name an entity kind supplies.
type Variable struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type section struct {
	kind models.EntityKind
	vars []Variable
}

// Sections are scanned in this order; a name listed under two kinds belongs
// to the first.
var sections = []section{
	{models.KindCandidate, []Variable{
		{"candidate_name", "Candidate's full name"},
		{"candidate_email", "Candidate's email address"},
		{"candidate_phone", "Candidate's phone number"},
		{"candidate_location", "Candidate's location"},
		{"candidate_position", "Candidate's current position"},
		{"candidate_company", "Candidate's current company"},
		{"candidate_experience", "Candidate's years of experience"},
	}},
	{models.KindJob, []Variable{
		{"job_title", "Job title"},
		{"job_department", "Hiring department"},
		{"job_location", "Job location"},
		{"job_type", "Employment type"},
		{"job_salary", "Salary range"},
		{"job_description", "Job description"},
	}},
	{models.KindCompany, []Variable{
		{"company_name", "Company name"},
		{"company_industry", "Company industry"},
		{"company_website", "Company website"},
		{"company_location", "Company location"},
		{"client_name", "Client name used in signatures"},
	}},
	{models.KindSender, []Variable{
		{"sender_name", "Sender's name"},
		{"sender_email", "Sender's email address"},
		{"sender_phone", "Sender's phone number"},
		{"sender_title", "Sender's job title"},
	}},
	{models.KindInterview, []Variable{
		{"interview_date", "Interview date"},
		{"interview_time", "Interview start time"},
		{"interview_type", "Interview format"},
		{"interview_location", "Interview location"},
		{"interview_duration", "Interview duration"},
		{"interview_link", "Video meeting link"},
		{"interview_interviewer", "Interviewer name"},
	}},
	{models.KindApplication, []Variable{
		{"application_status", "Application status"},
		{"application_date", "Date the application was submitted"},
		{"application_source", "Where the application came from"},
		{"application_stage", "Current pipeline stage"},
	}},
}

type entry struct {
	kind models.EntityKind
	desc string
}

var index = func() map[string]entry {
	m := make(map[string]entry)
	for _, s := range sections {
		for _, v := range s.vars {
			if _, taken := m[v.Name]; !taken {
				m[v.Name] = entry{kind: s.kind, desc: v.Description}
			}
		}
	}
	return m
}()

// Variables returns the variables supplied by kind, in declaration order.
func Variables(kind models.EntityKind) []Variable {
	for _, s := range sections {
		if s.kind == kind {
			out := make([]Variable, len(s.vars))
			copy(out, s.vars)
			return out
		}
	}
	return nil
}

// Known reports whether any entity kind supplies name.
func Known(name string) bool {
	_, ok := index[name]
	return ok
}

// GroupByEntity classifies names by the first kind that supplies each one.
// Unknown names are left out; input order is kept within each kind.
func GroupByEntity(names []string) map[models.EntityKind][]Variable {
	out := make(map[models.EntityKind][]Variable)
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		e, ok := index[name]
		if !ok {
			continue
		}
		out[e.kind] = append(out[e.kind], Variable{Name: name, Description: e.desc})
	}
	return out
}

// Unknown returns the names no entity kind supplies, in input order.
func Unknown(names []string) []string {
	var out []string
	for _, name := range names {
		if !Known(name) {
			out = append(out, name)
		}
	}
	return out
}
