package preview

import (
	"context"
	"fmt"
	"testing"

	"recruit-automation/internal/common/errors"
	"recruit-automation/internal/common/logger"
	"recruit-automation/internal/engine/loader"
	"recruit-automation/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticEntities struct {
	set      *models.EntitySet
	failures map[models.EntityKind]error
}

func (s staticEntities) Load(context.Context) loader.Result {
	return loader.Result{Set: s.set, Failures: s.failures}
}

type stubTemplates struct {
	templates []models.Template
	err       error
	calls     int
}

func (s *stubTemplates) FetchTemplates(context.Context) ([]models.Template, error) {
	s.calls++
	return s.templates, s.err
}

func newExecutor(t *testing.T, entities EntitySource, templates TemplateSource) *Executor {
	return NewExecutor(entities, templates, NewGuard([]string{"example.com"}), logger.NewTestLogger(t))
}

func sampleSet(email string) *models.EntitySet {
	return models.NewEntitySet(
		models.Candidate{ID: "c1", Name: "Jane", Email: email, Phone: "+15550100"},
		models.Job{ID: "j1", Title: "Engineer"},
	)
}

func TestRunTest_RendersPreview(t *testing.T) {
	rule := models.AutomationRule{
		ID:      "r1",
		Channel: models.ChannelEmail,
		Content: models.InlineContent{
			Subject: "Your {{job_title}} application",
			Body:    "Hello {{candidate_name}}, your interview is at {{interview_time}}",
		},
	}
	tpl := &stubTemplates{}
	exec := newExecutor(t, staticEntities{set: sampleSet("jane@acme.io")}, tpl)

	res, err := exec.RunTest(context.Background(), rule, models.TriggerContext{CandidateID: "c1", JobID: "j1"})
	require.NoError(t, err)

	assert.Equal(t, "Your Engineer application", res.Subject)
	assert.Equal(t, "Hello Jane, your interview is at ", res.Body)
	assert.Equal(t, "jane@acme.io", res.Recipient)
	assert.Equal(t, models.ChannelEmail, res.Channel)
	assert.Equal(t, []string{"interview_time"}, res.Gaps)
	assert.Equal(t, 0, tpl.calls, "custom content must not read the template catalog")
}

func TestRunTest_GuardRefusesPlaceholderRecipient(t *testing.T) {
	rule := models.AutomationRule{
		Channel: models.ChannelEmail,
		Content: models.InlineContent{Subject: "s", Body: "b"},
	}
	exec := newExecutor(t, staticEntities{set: sampleSet("jane@example.com")}, &stubTemplates{})

	res, err := exec.RunTest(context.Background(), rule, models.TriggerContext{CandidateID: "c1"})

	assert.Nil(t, res)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeGuardRefusal))
}

func TestRunTest_GuardRefusesMissingCandidate(t *testing.T) {
	rule := models.AutomationRule{Channel: models.ChannelSMS, Content: models.InlineContent{Subject: "s", Body: "b"}}
	exec := newExecutor(t, staticEntities{set: sampleSet("jane@acme.io")}, &stubTemplates{})

	_, err := exec.RunTest(context.Background(), rule, models.TriggerContext{})
	assert.True(t, errors.HasCode(err, errors.ErrCodeGuardRefusal))
}

func TestRunTest_SMSUsesPhone(t *testing.T) {
	rule := models.AutomationRule{Channel: models.ChannelSMS, Content: models.InlineContent{Subject: "", Body: "Hi {{candidate_name}}"}}
	exec := newExecutor(t, staticEntities{set: sampleSet("")}, &stubTemplates{})

	res, err := exec.RunTest(context.Background(), rule, models.TriggerContext{CandidateID: "c1"})
	require.NoError(t, err)
	assert.Equal(t, "+15550100", res.Recipient)
}

func TestRunTest_SMSGuardsSampleEmail(t *testing.T) {
	rule := models.AutomationRule{Channel: models.ChannelSMS, Content: models.InlineContent{Body: "Hi {{candidate_name}}"}}
	exec := newExecutor(t, staticEntities{set: sampleSet("jane@example.com")}, &stubTemplates{})

	res, err := exec.RunTest(context.Background(), rule, models.TriggerContext{CandidateID: "c1"})

	assert.Nil(t, res)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeGuardRefusal))
}

func TestRunTest_TemplateMode(t *testing.T) {
	rule := models.AutomationRule{
		Channel: models.ChannelEmail,
		Content: models.TemplateRef{TemplateID: "t1"},
	}
	tpl := &stubTemplates{templates: []models.Template{{ID: "t1", Subject: "Next steps", Body: `Line one\nLine two`}}}
	entities := staticEntities{
		set:      sampleSet("jane@acme.io"),
		failures: map[models.EntityKind]error{models.KindCompany: fmt.Errorf("timeout")},
	}
	exec := newExecutor(t, entities, tpl)

	tc := models.TriggerContext{CandidateID: "c1", Operator: models.OperatorProfile{Name: "Olive"}}
	res, err := exec.RunTest(context.Background(), rule, tc)
	require.NoError(t, err)

	assert.Equal(t, "Next steps", res.Subject)
	assert.Equal(t, "Dear Jane,\n\nLine one\nLine two\n\nBest regards,\nOlive\n", res.Body)
	assert.Equal(t, []string{"company: timeout"}, res.FetchWarnings)
	assert.Equal(t, 1, tpl.calls)
}

func TestRunTest_TemplateFailuresSurface(t *testing.T) {
	rule := models.AutomationRule{Channel: models.ChannelEmail, Content: models.TemplateRef{TemplateID: "t1"}}

	t.Run("catalog error returned unmodified", func(t *testing.T) {
		storeErr := errors.NewPersistenceFailedError("fetch_templates", fmt.Errorf("db down"))
		exec := newExecutor(t, staticEntities{set: sampleSet("jane@acme.io")}, &stubTemplates{err: storeErr})

		_, err := exec.RunTest(context.Background(), rule, models.TriggerContext{CandidateID: "c1"})
		assert.Same(t, storeErr, err)
	})

	t.Run("dangling reference", func(t *testing.T) {
		exec := newExecutor(t, staticEntities{set: sampleSet("jane@acme.io")}, &stubTemplates{})

		_, err := exec.RunTest(context.Background(), rule, models.TriggerContext{CandidateID: "c1"})
		assert.True(t, errors.HasCode(err, errors.ErrCodeTemplateNotFound))
	})
}

func TestRunTest_DoesNotTouchLastRun(t *testing.T) {
	rule := models.AutomationRule{Channel: models.ChannelEmail, Content: models.InlineContent{Subject: "s", Body: "b"}}
	exec := newExecutor(t, staticEntities{set: sampleSet("jane@acme.io")}, &stubTemplates{})

	_, err := exec.RunTest(context.Background(), rule, models.TriggerContext{CandidateID: "c1"})
	require.NoError(t, err)
	assert.Nil(t, rule.LastRunAt)
}
