// Package pipeline runs the resolve and render pass shared by previews and
// real dispatch.
package pipeline

import (
	"time"

	"recruit-automation/internal/common/metrics"
	"recruit-automation/internal/engine/render"
	"recruit-automation/internal/engine/resolver"
	"recruit-automation/internal/models"
)

// Prepared is one rule rendered against one trigger context.
type Prepared struct {
	Message   models.RenderedMessage
	Recipient string
	Variables resolver.VariableMap
	// Gaps are placeholders with no resolved value; they rendered as "".
	Gaps []string
}

// Prepare resolves variables for tc, picks the rule's effective content,
// renders it and selects the recipient for the rule's channel. It only fails
// when a referenced template is missing.
func Prepare(
	rule models.AutomationRule,
	tc models.TriggerContext,
	set *models.EntitySet,
	templates render.TemplateIndex,
) (Prepared, error) {
	start := time.Now()

	content, err := render.EffectiveContent(rule.Content, templates)
	if err != nil {
		return Prepared{}, err
	}

	vars := resolver.Resolve(tc, set)
	msg := render.Render(content.Subject, content.Body, vars)

	mode := "unknown"
	if rule.Content != nil {
		mode = string(rule.Content.Mode())
	}
	metrics.RenderDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())

	return Prepared{
		Message:   msg,
		Recipient: Recipient(rule.Channel, vars),
		Variables: vars,
		Gaps:      render.Gaps(content.Subject, content.Body, vars),
	}, nil
}

// RecipientVariable names the variable holding the address for channel.
func RecipientVariable(channel models.Channel) string {
	if channel == models.ChannelSMS {
		return "candidate_phone"
	}
	return "candidate_email"
}

// Recipient returns the address for channel from vars, or "".
func Recipient(channel models.Channel, vars resolver.VariableMap) string {
	return vars[RecipientVariable(channel)]
}
