// internal/models/rule.go
package models

import (
	"encoding/json"
	"fmt"
	"time"

	"recruit-automation/internal/engine/trigger"
)

// Channel is the delivery medium of a rule.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
	ChannelInApp Channel = "in_app"
)

// Channels lists every supported channel.
func Channels() []Channel {
	return []Channel{ChannelEmail, ChannelSMS, ChannelInApp}
}

func (c Channel) Valid() bool {
	switch c {
	case ChannelEmail, ChannelSMS, ChannelInApp:
		return true
	}
	return false
}

type RuleStatus string

const (
	StatusActive   RuleStatus = "active"
	StatusInactive RuleStatus = "inactive"
)

func (s RuleStatus) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// Toggle flips Active and Inactive. Anything else is treated as Inactive.
func (s RuleStatus) Toggle() RuleStatus {
	if s == StatusActive {
		return StatusInactive
	}
	return StatusActive
}

type ContentMode string

const (
	ContentModeTemplate ContentMode = "template"
	ContentModeCustom   ContentMode = "custom"
)

// Content is either a TemplateRef or an InlineContent; no other
// implementations exist.
type Content interface {
	Mode() ContentMode
	isContent()
}

// TemplateRef points into the template catalog. Its subject and body
// supersede anything typed inline.
type TemplateRef struct {
	TemplateID string `json:"templateId"`
}

func (TemplateRef) Mode() ContentMode { return ContentModeTemplate }
func (TemplateRef) isContent()        {}

// InlineContent is operator-authored text used verbatim.
type InlineContent struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (InlineContent) Mode() ContentMode { return ContentModeCustom }
func (InlineContent) isContent()        {}

// AutomationRule binds a trigger to a channel and message content.
type AutomationRule struct {
	ID          string
	Name        string
	Description string
	Trigger     trigger.Trigger
	Channel     Channel
	Content     Content
	Status      RuleStatus
	LastRunAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsActive reports whether real events fire this rule.
func (r AutomationRule) IsActive() bool {
	return r.Status == StatusActive
}

type ruleJSON struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Trigger     string      `json:"trigger"`
	Channel     Channel     `json:"channel"`
	ContentMode ContentMode `json:"contentMode"`
	TemplateID  string      `json:"templateId,omitempty"`
	Subject     string      `json:"subject,omitempty"`
	Body        string      `json:"body,omitempty"`
	Status      RuleStatus  `json:"status"`
	LastRunAt   *time.Time  `json:"lastRunAt,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// MarshalJSON flattens Content into contentMode/templateId/subject/body.
func (r AutomationRule) MarshalJSON() ([]byte, error) {
	out := ruleJSON{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Trigger:     string(r.Trigger),
		Channel:     r.Channel,
		Status:      r.Status,
		LastRunAt:   r.LastRunAt,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	switch c := r.Content.(type) {
	case TemplateRef:
		out.ContentMode = ContentModeTemplate
		out.TemplateID = c.TemplateID
	case InlineContent:
		out.ContentMode = ContentModeCustom
		out.Subject = c.Subject
		out.Body = c.Body
	}
	return json.Marshal(out)
}

func (r *AutomationRule) UnmarshalJSON(data []byte) error {
	var in ruleJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	content, err := BuildContent(in.ContentMode, in.TemplateID, in.Subject, in.Body)
	if err != nil {
		return err
	}
	*r = AutomationRule{
		ID:          in.ID,
		Name:        in.Name,
		Description: in.Description,
		Trigger:     trigger.Trigger(in.Trigger),
		Channel:     in.Channel,
		Content:     content,
		Status:      in.Status,
		LastRunAt:   in.LastRunAt,
		CreatedAt:   in.CreatedAt,
		UpdatedAt:   in.UpdatedAt,
	}
	return nil
}

// BuildContent assembles the content variant for mode from flat fields.
func BuildContent(mode ContentMode, templateID, subject, body string) (Content, error) {
	switch mode {
	case ContentModeTemplate:
		return TemplateRef{TemplateID: templateID}, nil
	case ContentModeCustom:
		return InlineContent{Subject: subject, Body: body}, nil
	default:
		return nil, fmt.Errorf("unknown content mode %q", mode)
	}
}

// ContentFields is the inverse of BuildContent.
func ContentFields(c Content) (mode ContentMode, templateID, subject, body string) {
	switch v := c.(type) {
	case TemplateRef:
		return ContentModeTemplate, v.TemplateID, "", ""
	case InlineContent:
		return ContentModeCustom, "", v.Subject, v.Body
	}
	return "", "", "", ""
}

// DraftRule is the editor's immutable view of a rule being created or edited.
// Trigger is kept raw so legacy free text can be canonicalized on save.
type DraftRule struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Trigger     string      `json:"trigger"`
	Channel     Channel     `json:"channel"`
	ContentMode ContentMode `json:"contentMode"`
	TemplateID  string      `json:"templateId,omitempty"`
	Subject     string      `json:"subject,omitempty"`
	Body        string      `json:"body,omitempty"`
	Status      RuleStatus  `json:"status,omitempty"`
}

// RulePatch is the full set of editable fields handed to the store on update.
// Status is nil unless the edit explicitly changes it.
type RulePatch struct {
	Name        string
	Description string
	Trigger     trigger.Trigger
	Channel     Channel
	Content     Content
	Status      *RuleStatus
}
