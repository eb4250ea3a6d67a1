package rules

import (
	"strings"

	"recruit-automation/internal/common/validation"
	"recruit-automation/internal/engine/trigger"
	"recruit-automation/internal/models"
)

const (
	maxNameLength        = 200
	maxDescriptionLength = 2000
	maxSubjectLength     = 500
)

// ValidateRule checks a draft before anything is persisted. It returns one
// error per offending field, in form order, or nil.
func ValidateRule(d models.DraftRule) []validation.ValidationError {
	var errs []validation.ValidationError

	errs = validation.Required(errs, "name", d.Name)
	errs = validation.MaxLength(errs, "name", d.Name, maxNameLength)
	errs = validation.Required(errs, "description", d.Description)
	errs = validation.MaxLength(errs, "description", d.Description, maxDescriptionLength)

	if strings.TrimSpace(d.Trigger) == "" {
		errs = validation.Required(errs, "trigger", d.Trigger)
	} else if !trigger.IsKnown(trigger.Canonicalize(d.Trigger)) {
		errs = validation.Invalid(errs, "trigger", "unknown trigger "+d.Trigger)
	}

	if d.Channel == "" {
		errs = validation.Required(errs, "channel", "")
	} else if !d.Channel.Valid() {
		errs = validation.Invalid(errs, "channel", "channel must be one of email, sms, in_app")
	}

	switch d.ContentMode {
	case models.ContentModeTemplate:
		errs = validation.Required(errs, "templateId", d.TemplateID)
	case models.ContentModeCustom:
		errs = validation.Required(errs, "subject", d.Subject)
		errs = validation.MaxLength(errs, "subject", d.Subject, maxSubjectLength)
		errs = validation.Required(errs, "body", d.Body)
	case "":
		errs = validation.Required(errs, "contentMode", "")
	default:
		errs = validation.Invalid(errs, "contentMode", "contentMode must be template or custom")
	}

	if d.Status != "" && !d.Status.Valid() {
		errs = validation.Invalid(errs, "status", "status must be active or inactive")
	}
	return errs
}

// contentOf builds the content variant; call only on a validated draft.
func contentOf(d models.DraftRule) models.Content {
	if d.ContentMode == models.ContentModeTemplate {
		return models.TemplateRef{TemplateID: strings.TrimSpace(d.TemplateID)}
	}
	return models.InlineContent{Subject: d.Subject, Body: d.Body}
}

// FromDraft builds an unsaved rule, e.g. to preview an editor draft. An
// unknown content mode falls back to custom.
func FromDraft(d models.DraftRule) models.AutomationRule {
	status := d.Status
	if status == "" {
		status = models.StatusActive
	}
	return models.AutomationRule{
		Name:        strings.TrimSpace(d.Name),
		Description: strings.TrimSpace(d.Description),
		Trigger:     trigger.Canonicalize(d.Trigger),
		Channel:     d.Channel,
		Content:     contentOf(d),
		Status:      status,
	}
}

// ToDraft is the inverse of FromDraft, used to seed the editor.
func ToDraft(r models.AutomationRule) models.DraftRule {
	mode, templateID, subject, body := models.ContentFields(r.Content)
	return models.DraftRule{
		Name:        r.Name,
		Description: r.Description,
		Trigger:     string(r.Trigger),
		Channel:     r.Channel,
		ContentMode: mode,
		TemplateID:  templateID,
		Subject:     subject,
		Body:        body,
		Status:      r.Status,
	}
}
