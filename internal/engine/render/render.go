// Package render substitutes resolved variables into message text.
package render

import (
	"strings"

	"recruit-automation/internal/common/errors"
	"recruit-automation/internal/engine/placeholder"
	"recruit-automation/internal/models"
)

// Template-mode frame. Content goes between salutation and signature.
const (
	salutation = "Dear {{candidate_name}},\n\n"
	signature  = "\n\nBest regards,\n{{sender_name}}\n{{client_name}}"
)

var unescaper = strings.NewReplacer(`\r\n`, "\n", `\n`, "\n")

// Render replaces every placeholder in subject and body with its value in
// vars. Placeholders missing from vars become the empty string.
func Render(subject, body string, vars map[string]string) models.RenderedMessage {
	return models.RenderedMessage{
		Subject: substitute(subject, vars),
		Body:    substitute(body, vars),
	}
}

// substitute is a single left-to-right pass, so values containing {{...}}
// are never expanded again.
func substitute(text string, vars map[string]string) string {
	if text == "" || !strings.Contains(text, "{{") {
		return text
	}
	return placeholder.Pattern.ReplaceAllStringFunc(text, func(token string) string {
		return vars[token[2:len(token)-2]]
	})
}

// Unescape turns literal \n and \r\n sequences into newlines.
func Unescape(s string) string {
	return unescaper.Replace(s)
}

// Gaps lists placeholders in subject and body that vars has no value for.
func Gaps(subject, body string, vars map[string]string) []string {
	var out []string
	for _, name := range placeholder.ExtractAll(subject, body) {
		if _, ok := vars[name]; !ok {
			out = append(out, name)
		}
	}
	return out
}

// TemplateIndex looks templates up by id.
type TemplateIndex map[string]models.Template

func IndexTemplates(templates []models.Template) TemplateIndex {
	idx := make(TemplateIndex, len(templates))
	for _, t := range templates {
		idx[t.ID] = t
	}
	return idx
}

// EffectiveContent returns the unrendered subject and body for content.
// Template mode uses the template's subject and wraps its unescaped body in
// the salutation and signature frame; custom mode is used verbatim.
func EffectiveContent(content models.Content, templates TemplateIndex) (models.RenderedMessage, error) {
	switch c := content.(type) {
	case models.TemplateRef:
		tpl, ok := templates[c.TemplateID]
		if !ok {
			return models.RenderedMessage{}, errors.NewTemplateNotFoundError(c.TemplateID)
		}
		return models.RenderedMessage{
			Subject: tpl.Subject,
			Body:    salutation + Unescape(tpl.Body) + signature,
		}, nil
	case models.InlineContent:
		return models.RenderedMessage{Subject: c.Subject, Body: c.Body}, nil
	default:
		return models.RenderedMessage{}, errors.NewInvalidInputError("rule has no content")
	}
}
