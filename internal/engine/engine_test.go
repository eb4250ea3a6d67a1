package engine

import (
	"context"
	"testing"

	"recruit-automation/internal/common/errors"
	"recruit-automation/internal/common/logger"
	"recruit-automation/internal/engine/dispatch"
	"recruit-automation/internal/engine/loader"
	"recruit-automation/internal/engine/preview"
	"recruit-automation/internal/engine/rules"
	"recruit-automation/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entitySource struct{ set *models.EntitySet }

func (s entitySource) Load(context.Context) loader.Result {
	return loader.Result{Set: s.set, Failures: map[models.EntityKind]error{}}
}

type templateSource []models.Template

func (s templateSource) FetchTemplates(context.Context) ([]models.Template, error) { return s, nil }

type countingDispatcher struct{ calls int }

func (d *countingDispatcher) Dispatch(context.Context, models.Channel, string, models.RenderedMessage) error {
	d.calls++
	return nil
}

func newEngine(t *testing.T, email string) (*Engine, *countingDispatcher) {
	log := logger.NewTestLogger(t)
	ents := entitySource{set: models.NewEntitySet(models.Candidate{ID: "c1", Name: "Jane", Email: email})}
	tpls := templateSource{{ID: "t1", Subject: "Hello {{job_title}}", Body: "Welcome aboard"}}
	svc := rules.NewService(rules.NewMemoryStore(), log)
	d := &countingDispatcher{}

	exec := preview.NewExecutor(ents, tpls, preview.NewGuard([]string{"example.com"}), log)
	coord := dispatch.NewCoordinator(svc, ents, tpls, d, nil, log)
	return New(svc, exec, coord, tpls), d
}

func draft() models.DraftRule {
	return models.DraftRule{
		Name:        "Welcome",
		Description: "Greets hires",
		Trigger:     "On hire",
		Channel:     models.ChannelEmail,
		ContentMode: models.ContentModeCustom,
		Subject:     "Welcome {{candidate_name}}",
		Body:        "Your start date is {{interview_date}}",
	}
}

func TestGroupVariables(t *testing.T) {
	grouped := GroupVariables("Interview for {{job_title}}", "Hi {{candidate_name}} {{mystery}} {{job_title}}")
	assert.Len(t, grouped, 2)
	assert.Equal(t, "job_title", grouped[models.KindJob][0].Name)
	assert.Equal(t, "candidate_name", grouped[models.KindCandidate][0].Name)
}

func TestTriggers(t *testing.T) {
	assert.Len(t, Triggers(), 11)
}

func TestPreviewDraft(t *testing.T) {
	e, d := newEngine(t, "jane@acme.io")

	res, err := e.PreviewDraft(context.Background(), draft(), models.TriggerContext{CandidateID: "c1"})
	require.NoError(t, err)
	assert.Equal(t, "Welcome Jane", res.Subject)
	assert.Equal(t, []string{"interview_date"}, res.Gaps)
	assert.Zero(t, d.calls)
}

func TestPreviewDraft_InvalidDraft(t *testing.T) {
	e, _ := newEngine(t, "jane@acme.io")
	bad := draft()
	bad.Channel = ""
	bad.Subject = ""

	_, err := e.PreviewDraft(context.Background(), bad, models.TriggerContext{CandidateID: "c1"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidationFailed))
}

func TestPreviewRule_GuardAndNoDispatch(t *testing.T) {
	e, d := newEngine(t, "jane@example.com")
	ctx := context.Background()

	rule, err := e.Rules().Create(ctx, draft())
	require.NoError(t, err)

	_, err = e.PreviewRule(ctx, rule.ID, models.TriggerContext{CandidateID: "c1"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeGuardRefusal))
	assert.Zero(t, d.calls)

	stored, err := e.Rules().Get(ctx, rule.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.LastRunAt)
}

func TestRun_UpdatesLastRun(t *testing.T) {
	e, d := newEngine(t, "jane@acme.io")
	ctx := context.Background()

	rule, err := e.Rules().Create(ctx, draft())
	require.NoError(t, err)

	res, err := e.Run(ctx, dispatch.Event{Trigger: "welcome_new_hire", Context: models.TriggerContext{CandidateID: "c1"}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Dispatched)
	assert.Equal(t, 1, d.calls)

	stored, err := e.Rules().Get(ctx, rule.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastRunAt)
}

func TestDraftVariables(t *testing.T) {
	e, _ := newEngine(t, "jane@acme.io")
	d := draft()
	d.ContentMode = models.ContentModeTemplate
	d.TemplateID = "t1"

	report, err := e.DraftVariables(context.Background(), d)
	require.NoError(t, err)
	assert.Contains(t, report.Groups, models.KindJob)
	assert.Contains(t, report.Groups, models.KindSender)
	assert.Contains(t, report.Groups, models.KindCompany)
	assert.Empty(t, report.Unknown)

	custom := draft()
	custom.Body = "Hi {{candidate_name}}, {{candidate_nickname}}"
	report, err = e.DraftVariables(context.Background(), custom)
	require.NoError(t, err)
	assert.Equal(t, []string{"candidate_nickname"}, report.Unknown)
	assert.Contains(t, report.Groups, models.KindCandidate)

	d.TemplateID = "missing"
	_, err = e.DraftVariables(context.Background(), d)
	assert.True(t, errors.HasCode(err, errors.ErrCodeTemplateNotFound))
}

func TestCatalog(t *testing.T) {
	all := Catalog()
	assert.Len(t, all, len(models.EntityKinds()))
	assert.Equal(t, "candidate_name", all[models.KindCandidate][0].Name)

	var names []string
	for _, v := range all[models.KindCompany] {
		names = append(names, v.Name)
	}
	assert.Contains(t, names, "client_name")
}
