// Package engine is the surface the editor API and the job worker use.
package engine

import (
	"context"

	"recruit-automation/internal/common/errors"
	"recruit-automation/internal/common/validation"
	"recruit-automation/internal/engine/catalog"
	"recruit-automation/internal/engine/dispatch"
	"recruit-automation/internal/engine/placeholder"
	"recruit-automation/internal/engine/preview"
	"recruit-automation/internal/engine/render"
	"recruit-automation/internal/engine/rules"
	"recruit-automation/internal/engine/trigger"
	"recruit-automation/internal/models"
)

type Engine struct {
	rules       *rules.Service
	preview     *preview.Executor
	coordinator *dispatch.Coordinator
	templates   preview.TemplateSource
}

func New(
	ruleSvc *rules.Service,
	executor *preview.Executor,
	coordinator *dispatch.Coordinator,
	templates preview.TemplateSource,
) *Engine {
	return &Engine{
		rules:       ruleSvc,
		preview:     executor,
		coordinator: coordinator,
		templates:   templates,
	}
}

// Rules exposes the lifecycle operations.
func (e *Engine) Rules() *rules.Service {
	return e.rules
}

// Preview renders rule against sample entities without sending.
func (e *Engine) Preview(ctx context.Context, rule models.AutomationRule, tc models.TriggerContext) (*preview.Result, error) {
	return e.preview.RunTest(ctx, rule, tc)
}

// PreviewRule previews a stored rule.
func (e *Engine) PreviewRule(ctx context.Context, id string, tc models.TriggerContext) (*preview.Result, error) {
	rule, err := e.rules.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return e.preview.RunTest(ctx, *rule, tc)
}

// PreviewDraft previews unsaved editor state. Drafts that fail validation
// are rejected first.
func (e *Engine) PreviewDraft(ctx context.Context, d models.DraftRule, tc models.TriggerContext) (*preview.Result, error) {
	if errs := ValidateRule(d); len(errs) > 0 {
		return nil, errors.NewValidationError(errs)
	}
	return e.preview.RunTest(ctx, rules.FromDraft(d), tc)
}

// Run fires a domain event through every matching active rule.
func (e *Engine) Run(ctx context.Context, ev dispatch.Event) (*dispatch.RunResult, error) {
	return e.coordinator.Run(ctx, ev)
}

// Templates lists the template catalog.
func (e *Engine) Templates(ctx context.Context) ([]models.Template, error) {
	return e.templates.FetchTemplates(ctx)
}

// VariableReport is the editor's view of the data a draft depends on.
// Unknown lists placeholders no entity supplies; they always render empty.
type VariableReport struct {
	Groups  map[models.EntityKind][]catalog.Variable `json:"groups"`
	Unknown []string                                 `json:"unknown"`
}

// DraftVariables groups the placeholders a draft depends on. In template
// mode the template's subject and framed body are scanned.
func (e *Engine) DraftVariables(ctx context.Context, d models.DraftRule) (*VariableReport, error) {
	subject, body := d.Subject, d.Body
	if d.ContentMode == models.ContentModeTemplate {
		list, err := e.templates.FetchTemplates(ctx)
		if err != nil {
			return nil, err
		}
		content, err := render.EffectiveContent(models.TemplateRef{TemplateID: d.TemplateID}, render.IndexTemplates(list))
		if err != nil {
			return nil, err
		}
		subject, body = content.Subject, content.Body
	}

	names := placeholder.ExtractAll(subject, body)
	unknown := catalog.Unknown(names)
	if unknown == nil {
		unknown = []string{}
	}
	return &VariableReport{Groups: catalog.GroupByEntity(names), Unknown: unknown}, nil
}

// Catalog lists every variable each entity kind supplies.
func Catalog() map[models.EntityKind][]catalog.Variable {
	out := make(map[models.EntityKind][]catalog.Variable)
	for _, kind := range models.EntityKinds() {
		out[kind] = catalog.Variables(kind)
	}
	return out
}

// ValidateRule returns the field errors for d.
func ValidateRule(d models.DraftRule) []validation.ValidationError {
	return rules.ValidateRule(d)
}

// GroupVariables extracts placeholders from subject then body and groups
// them by the entity kind that supplies each.
func GroupVariables(subject, body string) map[models.EntityKind][]catalog.Variable {
	return catalog.GroupByEntity(placeholder.ExtractAll(subject, body))
}

// Triggers lists canonical triggers with display names.
func Triggers() []trigger.Info {
	return trigger.All()
}
