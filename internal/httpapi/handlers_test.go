package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"recruit-automation/internal/common/logger"
	"recruit-automation/internal/engine"
	"recruit-automation/internal/engine/dispatch"
	"recruit-automation/internal/engine/loader"
	"recruit-automation/internal/engine/preview"
	"recruit-automation/internal/engine/rules"
	"recruit-automation/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entitySource struct{ set *models.EntitySet }

func (s entitySource) Load(context.Context) loader.Result {
	return loader.Result{Set: s.set, Failures: map[models.EntityKind]error{}}
}

type templateSource []models.Template

func (s templateSource) FetchTemplates(context.Context) ([]models.Template, error) { return s, nil }

type recordingDispatcher struct {
	recipients []string
	messages   []models.RenderedMessage
}

func (d *recordingDispatcher) Dispatch(_ context.Context, _ models.Channel, to string, msg models.RenderedMessage) error {
	d.recipients = append(d.recipients, to)
	d.messages = append(d.messages, msg)
	return nil
}

type stubInvalidator struct {
	calls int
	err   error
}

func (s *stubInvalidator) Invalidate(context.Context) error {
	s.calls++
	return s.err
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

type fixture struct {
	router     *gin.Engine
	dispatcher *recordingDispatcher
	cache      *stubInvalidator
}

func setup(t *testing.T, candidateEmail string) *fixture {
	gin.SetMode(gin.TestMode)
	log := logger.NewTestLogger(t)

	ents := entitySource{set: models.NewEntitySet(
		models.Candidate{ID: "c1", Name: "Jane Doe", Email: candidateEmail},
		models.Job{ID: "j1", Title: "Platform Engineer"},
	)}
	tpls := templateSource{{ID: "t1", Name: "Invite", Subject: "Interview for {{job_title}}", Body: "Hi {{candidate_name}}"}}
	svc := rules.NewService(rules.NewMemoryStore(), log)
	d := &recordingDispatcher{}

	exec := preview.NewExecutor(ents, tpls, preview.NewGuard([]string{"example.com"}), log)
	coord := dispatch.NewCoordinator(svc, ents, tpls, d, nil, log)
	eng := engine.New(svc, exec, coord, tpls)

	cache := &stubInvalidator{}
	h := NewHandler(eng, models.OperatorProfile{Name: "Recruiting Team"}, log, cache)
	return &fixture{
		router:     NewRouter(h, log, map[string]Pinger{"postgres": stubPinger{}}),
		dispatcher: d,
		cache:      cache,
	}
}

func (f *fixture) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func validDraft() models.DraftRule {
	return models.DraftRule{
		Name:        "Interview invite",
		Description: "Sent when an interview is booked",
		Trigger:     "interview_scheduled",
		Channel:     models.ChannelEmail,
		ContentMode: models.ContentModeCustom,
		Subject:     "Interview for {{job_title}}",
		Body:        "Hi {{candidate_name}}, regards {{sender_name}}",
	}
}

func TestRuleLifecycle(t *testing.T) {
	f := setup(t, "jane@acme.io")

	w, env := f.do(t, http.MethodPost, "/api/v1/automations", validDraft())
	require.Equal(t, http.StatusCreated, w.Code)
	require.True(t, env.Success)

	var created models.AutomationRule
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, models.StatusActive, created.Status)

	w, env = f.do(t, http.MethodGet, "/api/v1/automations", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.AutomationRule
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 1)

	w, env = f.do(t, http.MethodPost, "/api/v1/automations/"+created.ID+"/toggle", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var toggled models.AutomationRule
	require.NoError(t, json.Unmarshal(env.Data, &toggled))
	assert.Equal(t, models.StatusInactive, toggled.Status)

	update := validDraft()
	update.Name = "Renamed"
	w, env = f.do(t, http.MethodPut, "/api/v1/automations/"+created.ID, update)
	require.Equal(t, http.StatusOK, w.Code)
	var updated models.AutomationRule
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, models.StatusInactive, updated.Status)

	w, _ = f.do(t, http.MethodDelete, "/api/v1/automations/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, env = f.do(t, http.MethodGet, "/api/v1/automations/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "RULE_NOT_FOUND", env.Error.Code)
}

func TestCreateRule_ValidationFailure(t *testing.T) {
	f := setup(t, "jane@acme.io")
	d := validDraft()
	d.Name = ""

	w, env := f.do(t, http.MethodPost, "/api/v1/automations", d)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)

	var fields []struct {
		Field string `json:"field"`
	}
	require.NoError(t, json.Unmarshal(env.Error.Details, &fields))
	require.NotEmpty(t, fields)
	assert.Equal(t, "name", fields[0].Field)
}

func TestCreateRule_MalformedBody(t *testing.T) {
	f := setup(t, "jane@acme.io")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/automations", bytes.NewBufferString("{"))
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestValidateRule(t *testing.T) {
	f := setup(t, "jane@acme.io")

	_, env := f.do(t, http.MethodPost, "/api/v1/automations/validate", validDraft())
	var ok ValidateResponse
	require.NoError(t, json.Unmarshal(env.Data, &ok))
	assert.True(t, ok.Valid)

	d := validDraft()
	d.Channel = "fax"
	w, env := f.do(t, http.MethodPost, "/api/v1/automations/validate", d)
	assert.Equal(t, http.StatusOK, w.Code)
	var bad ValidateResponse
	require.NoError(t, json.Unmarshal(env.Data, &bad))
	assert.False(t, bad.Valid)
}

func TestPreview_DraftUsesOperatorFallback(t *testing.T) {
	f := setup(t, "jane@acme.io")

	w, env := f.do(t, http.MethodPost, "/api/v1/automations/preview", PreviewRequest{
		Draft:   ptr(validDraft()),
		Context: models.TriggerContext{CandidateID: "c1", JobID: "j1"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res preview.Result
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, "Interview for Platform Engineer", res.Subject)
	assert.Equal(t, "Hi Jane Doe, regards Recruiting Team", res.Body)
	assert.Equal(t, "jane@acme.io", res.Recipient)
	assert.Empty(t, f.dispatcher.recipients)
}

func TestPreview_GuardRefusal(t *testing.T) {
	f := setup(t, "jane@example.com")

	w, env := f.do(t, http.MethodPost, "/api/v1/automations/preview", PreviewRequest{
		Draft:   ptr(validDraft()),
		Context: models.TriggerContext{CandidateID: "c1"},
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "GUARD_REFUSAL", env.Error.Code)
}

func TestPreview_RequiresRuleOrDraft(t *testing.T) {
	f := setup(t, "jane@acme.io")
	w, _ := f.do(t, http.MethodPost, "/api/v1/automations/preview", PreviewRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env := f.do(t, http.MethodPost, "/api/v1/automations/preview", PreviewRequest{RuleID: "missing"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "RULE_NOT_FOUND", env.Error.Code)
}

func TestVariables(t *testing.T) {
	f := setup(t, "jane@acme.io")

	d := validDraft()
	d.ContentMode = models.ContentModeTemplate
	d.TemplateID = "t1"
	_, env := f.do(t, http.MethodPost, "/api/v1/automations/variables", d)

	var report struct {
		Groups map[string][]struct {
			Name string `json:"name"`
		} `json:"groups"`
		Unknown []string `json:"unknown"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &report))
	assert.Len(t, report.Groups, 4)
	assert.Equal(t, "job_title", report.Groups["job"][0].Name)
	assert.Equal(t, "candidate_name", report.Groups["candidate"][0].Name)
	assert.Equal(t, "sender_name", report.Groups["sender"][0].Name)
	assert.Equal(t, "client_name", report.Groups["company"][0].Name)
	assert.Empty(t, report.Unknown)

	custom := validDraft()
	custom.Body = "Hi {{candidate_name}} {{favourite_color}}"
	_, env = f.do(t, http.MethodPost, "/api/v1/automations/variables", custom)
	require.NoError(t, json.Unmarshal(env.Data, &report))
	assert.Equal(t, []string{"favourite_color"}, report.Unknown)

	d.TemplateID = "gone"
	w, env := f.do(t, http.MethodPost, "/api/v1/automations/variables", d)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "TEMPLATE_NOT_FOUND", env.Error.Code)
}

func TestTriggersAndTemplates(t *testing.T) {
	f := setup(t, "jane@acme.io")

	_, env := f.do(t, http.MethodGet, "/api/v1/variables", nil)
	var catalog map[string][]map[string]string
	require.NoError(t, json.Unmarshal(env.Data, &catalog))
	assert.Len(t, catalog, 6)

	_, env = f.do(t, http.MethodGet, "/api/v1/triggers", nil)
	var triggers []map[string]string
	require.NoError(t, json.Unmarshal(env.Data, &triggers))
	assert.Len(t, triggers, 11)

	_, env = f.do(t, http.MethodGet, "/api/v1/templates", nil)
	var templates []models.Template
	require.NoError(t, json.Unmarshal(env.Data, &templates))
	assert.Len(t, templates, 1)
}

func TestFireEvent(t *testing.T) {
	f := setup(t, "jane@acme.io")
	_, _ = f.do(t, http.MethodPost, "/api/v1/automations", validDraft())

	w, env := f.do(t, http.MethodPost, "/api/v1/events", dispatch.Event{
		Trigger: "Interview scheduled",
		Context: models.TriggerContext{CandidateID: "c1", JobID: "j1"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res dispatch.RunResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, 1, res.Dispatched)
	assert.Equal(t, []string{"jane@acme.io"}, f.dispatcher.recipients)
	assert.Equal(t, "Interview for Platform Engineer", f.dispatcher.messages[0].Subject)

	w, _ = f.do(t, http.MethodPost, "/api/v1/events", dispatch.Event{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRefreshCache(t *testing.T) {
	f := setup(t, "jane@acme.io")

	w, _ := f.do(t, http.MethodPost, "/api/v1/cache/refresh", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, f.cache.calls)

	f.cache.err = fmt.Errorf("redis down")
	w, _ = f.do(t, http.MethodPost, "/api/v1/cache/refresh", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHealthAndReady(t *testing.T) {
	f := setup(t, "jane@acme.io")

	w, _ := f.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))

	w, _ = f.do(t, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	router := NewRouter(NewHandler(nil, models.OperatorProfile{}, logger.NewNoOpLogger()), logger.NewNoOpLogger(),
		map[string]Pinger{"redis": stubPinger{err: fmt.Errorf("connection refused")}})
	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func ptr[T any](v T) *T { return &v }
