package resolver

import (
	"testing"
	"time"

	"recruit-automation/internal/engine/catalog"
	"recruit-automation/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureSet() *models.EntitySet {
	return models.NewEntitySet(
		models.Candidate{ID: "c1", Name: "Jane Doe", Email: "jane@acme.io", Phone: "+15550100", Location: "Austin",
			Position: "Engineer", Company: "Initech", Experience: 7},
		models.Job{ID: "j1", Title: "Staff Engineer", Department: "Platform", Location: "Remote", Type: "Full-time",
			Salary: "$180k", Description: "Build things"},
		models.Company{ID: "co1", Name: "Acme", Industry: "Robotics", Website: "https://acme.io", Location: "Denver",
			ClientName: "Acme Talent"},
		models.Sender{ID: "s1", Name: "Rita Recruiter", Email: "rita@agency.io", Phone: "+15550199", Title: "Lead Recruiter"},
		models.Interview{ID: "i1", ScheduledAt: time.Date(2024, time.March, 5, 15, 0, 0, 0, time.UTC), Type: "Video",
			Location: "Online", Duration: 45, Link: "https://meet.acme.io/x", Interviewer: "Sam"},
		models.Application{ID: "a1", Status: "In review", AppliedAt: time.Date(2024, time.February, 1, 9, 0, 0, 0, time.UTC),
			Source: "Referral", Stage: "Screening"},
	)
}

func fullContext() models.TriggerContext {
	return models.TriggerContext{
		CandidateID: "c1", JobID: "j1", CompanyID: "co1", SenderID: "s1", InterviewID: "i1", ApplicationID: "a1",
	}
}

func TestResolve_AllEntities(t *testing.T) {
	vars := Resolve(fullContext(), fixtureSet())

	assert.Equal(t, "Jane Doe", vars["candidate_name"])
	assert.Equal(t, "7", vars["candidate_experience"])
	assert.Equal(t, "Staff Engineer", vars["job_title"])
	assert.Equal(t, "Acme Talent", vars["client_name"])
	assert.Equal(t, "Rita Recruiter", vars["sender_name"])
	assert.Equal(t, "Lead Recruiter", vars["sender_title"])
	assert.Equal(t, "Tuesday, March 5, 2024", vars["interview_date"])
	assert.Equal(t, "3:00 PM", vars["interview_time"])
	assert.Equal(t, "45 minutes", vars["interview_duration"])
	assert.Equal(t, "Thursday, February 1, 2024", vars["application_date"])
	assert.Equal(t, "Screening", vars["application_stage"])
}

func TestResolve_EveryKeyIsInCatalog(t *testing.T) {
	vars := Resolve(fullContext(), fixtureSet())
	for name := range vars {
		assert.True(t, catalog.Known(name), "resolver emits %q which the catalog does not declare", name)
	}
	for _, kind := range models.EntityKinds() {
		for _, v := range catalog.Variables(kind) {
			_, ok := vars[v.Name]
			assert.True(t, ok, "catalog declares %q but the resolver never supplies it", v.Name)
		}
	}
}

func TestResolve_MissingEntitiesContributeNothing(t *testing.T) {
	tc := models.TriggerContext{CandidateID: "c1", JobID: "missing", SenderID: "gone"}
	vars := Resolve(tc, fixtureSet())

	assert.Equal(t, "Jane Doe", vars["candidate_name"])
	_, hasJob := vars["job_title"]
	assert.False(t, hasJob)
	_, hasSender := vars["sender_name"]
	assert.False(t, hasSender, "an explicit sender id that does not resolve must not fall back to the operator")
}

func TestResolve_NilSetAndEmptyContext(t *testing.T) {
	assert.Empty(t, Resolve(models.TriggerContext{}, nil))
	assert.Empty(t, Resolve(fullContext(), models.NewEntitySet()))
}

func TestResolve_SenderDefaultsToOperator(t *testing.T) {
	tc := models.TriggerContext{
		CandidateID: "c1",
		Operator:    models.OperatorProfile{Name: "Olive Operator", Email: "olive@agency.io", Phone: "+15550111"},
	}
	vars := Resolve(tc, fixtureSet())

	assert.Equal(t, "Olive Operator", vars["sender_name"])
	assert.Equal(t, "olive@agency.io", vars["sender_email"])
	assert.Equal(t, "+15550111", vars["sender_phone"])
	_, hasTitle := vars["sender_title"]
	assert.False(t, hasTitle)
}

func TestResolve_ExplicitSenderWinsOverOperator(t *testing.T) {
	tc := fullContext()
	tc.Operator = models.OperatorProfile{Name: "Olive Operator"}
	vars := Resolve(tc, fixtureSet())
	assert.Equal(t, "Rita Recruiter", vars["sender_name"])
}

func TestResolve_ZeroTimesRenderEmpty(t *testing.T) {
	set := models.NewEntitySet(models.Interview{ID: "i2", Type: "Phone"})
	vars := Resolve(models.TriggerContext{InterviewID: "i2"}, set)

	require.Contains(t, vars, "interview_date")
	assert.Equal(t, "", vars["interview_date"])
	assert.Equal(t, "", vars["interview_time"])
	assert.Equal(t, "", vars["interview_duration"])
	assert.Equal(t, "Phone", vars["interview_type"])
}
