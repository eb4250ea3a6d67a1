// Package preview runs a rule against operator-selected sample entities and
// returns the rendered message instead of sending it.
package preview

import (
	"context"

	"recruit-automation/internal/common/errors"
	"recruit-automation/internal/common/logger"
	"recruit-automation/internal/common/metrics"
	"recruit-automation/internal/engine/loader"
	"recruit-automation/internal/engine/pipeline"
	"recruit-automation/internal/engine/render"
	"recruit-automation/internal/engine/resolver"
	"recruit-automation/internal/models"
)

// EntitySource loads every entity kind for one pass.
type EntitySource interface {
	Load(ctx context.Context) loader.Result
}

// TemplateSource lists the template catalog.
type TemplateSource interface {
	FetchTemplates(ctx context.Context) ([]models.Template, error)
}

// Result is the preview payload handed to the editor.
type Result struct {
	Subject       string               `json:"subject"`
	Body          string               `json:"body"`
	Channel       models.Channel       `json:"channel"`
	Recipient     string               `json:"recipient"`
	Variables     resolver.VariableMap `json:"variables"`
	Gaps          []string             `json:"gaps,omitempty"`
	FetchWarnings []string             `json:"fetchWarnings,omitempty"`
}

// Executor has no dispatcher and no rule store: a test run can neither send
// nor touch lastRunAt.
type Executor struct {
	entities  EntitySource
	templates TemplateSource
	guard     Guard
	logger    logger.Logger
}

func NewExecutor(entities EntitySource, templates TemplateSource, guard Guard, log logger.Logger) *Executor {
	return &Executor{
		entities:  entities,
		templates: templates,
		guard:     guard,
		logger:    logger.ForComponent(log, "preview"),
	}
}

// RunTest resolves and renders rule for tc. It fails with GUARD_REFUSAL when
// the recipient is blank or a placeholder address, with TEMPLATE_NOT_FOUND
// for a dangling template reference, and with the collaborator error when
// the template catalog cannot be read.
func (e *Executor) RunTest(ctx context.Context, rule models.AutomationRule, tc models.TriggerContext) (*Result, error) {
	var templates render.TemplateIndex
	if _, ok := rule.Content.(models.TemplateRef); ok {
		list, err := e.templates.FetchTemplates(ctx)
		if err != nil {
			metrics.PreviewsTotal.WithLabelValues("error").Inc()
			return nil, err
		}
		templates = render.IndexTemplates(list)
	}

	loaded := e.entities.Load(ctx)

	prepared, err := pipeline.Prepare(rule, tc, loaded.Set, templates)
	if err != nil {
		metrics.PreviewsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	if err := e.checkSample(rule.Channel, prepared); err != nil {
		metrics.PreviewsTotal.WithLabelValues("refused").Inc()
		e.logger.Info("test run refused", map[string]interface{}{
			"ruleId":    rule.ID,
			"channel":   string(rule.Channel),
			"errorCode": string(errors.CodeOf(err)),
		})
		return nil, err
	}

	result := &Result{
		Subject:       prepared.Message.Subject,
		Body:          prepared.Message.Body,
		Channel:       rule.Channel,
		Recipient:     prepared.Recipient,
		Variables:     prepared.Variables,
		Gaps:          prepared.Gaps,
		FetchWarnings: loaded.Warnings(),
	}

	outcome := "ok"
	if len(result.Gaps) > 0 {
		outcome = "gaps"
	}
	metrics.PreviewsTotal.WithLabelValues(outcome).Inc()

	e.logger.Debug("test run rendered", map[string]interface{}{
		"ruleId": rule.ID,
		"gaps":   len(result.Gaps),
	})
	return result, nil
}

// checkSample guards the channel recipient and, for channels that do not
// address by email, the sample candidate's email as well.
func (e *Executor) checkSample(channel models.Channel, prepared pipeline.Prepared) error {
	if err := e.guard.Check(prepared.Recipient); err != nil {
		return err
	}
	if pipeline.RecipientVariable(channel) == "candidate_email" {
		return nil
	}
	if email := prepared.Variables["candidate_email"]; email != "" {
		return e.guard.Check(email)
	}
	return nil
}
