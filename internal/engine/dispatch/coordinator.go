package dispatch

import (
	"context"
	"time"

	"recruit-automation/internal/common/errors"
	"recruit-automation/internal/common/logger"
	"recruit-automation/internal/common/metrics"
	"recruit-automation/internal/engine/loader"
	"recruit-automation/internal/engine/pipeline"
	"recruit-automation/internal/engine/render"
	"recruit-automation/internal/engine/trigger"
	"recruit-automation/internal/models"

	"github.com/google/uuid"
)

// Outcome statuses.
const (
	StatusSent    = "sent"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
)

// RuleSource supplies the rules a trigger fires and records runs.
type RuleSource interface {
	ActiveFor(ctx context.Context, t trigger.Trigger) ([]models.AutomationRule, error)
	MarkRun(ctx context.Context, id string, at time.Time) error
}

type EntitySource interface {
	Load(ctx context.Context) loader.Result
}

type TemplateSource interface {
	FetchTemplates(ctx context.Context) ([]models.Template, error)
}

// Event is a domain event that may fire automations.
type Event struct {
	Trigger string                `json:"trigger"`
	Context models.TriggerContext `json:"context"`
}

// Outcome reports what happened to one rule.
type Outcome struct {
	RuleID     string         `json:"ruleId"`
	RuleName   string         `json:"ruleName"`
	Channel    models.Channel `json:"channel"`
	Recipient  string         `json:"recipient,omitempty"`
	Status     string         `json:"status"`
	DispatchID string         `json:"dispatchId,omitempty"`
	ErrorCode  string         `json:"errorCode,omitempty"`
	Error      string         `json:"error,omitempty"`
	Gaps       []string       `json:"gaps,omitempty"`
}

// RunResult summarizes one event.
type RunResult struct {
	Trigger       trigger.Trigger `json:"trigger"`
	Dispatched    int             `json:"dispatched"`
	Skipped       int             `json:"skipped"`
	Failed        int             `json:"failed"`
	Outcomes      []Outcome       `json:"outcomes"`
	FetchWarnings []string        `json:"fetchWarnings,omitempty"`
}

// Coordinator runs every active rule for an event through the render
// pipeline and hands the result to the dispatcher. Nothing is retried.
type Coordinator struct {
	rules      RuleSource
	entities   EntitySource
	templates  TemplateSource
	dispatcher Dispatcher
	audit      AuditSink
	logger     logger.Logger
	now        func() time.Time
}

func NewCoordinator(
	rules RuleSource,
	entities EntitySource,
	templates TemplateSource,
	dispatcher Dispatcher,
	audit AuditSink,
	log logger.Logger,
) *Coordinator {
	if audit == nil {
		audit = NopAudit{}
	}
	return &Coordinator{
		rules:      rules,
		entities:   entities,
		templates:  templates,
		dispatcher: dispatcher,
		audit:      audit,
		logger:     logger.ForComponent(log, "dispatch"),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Run fires ev. It only returns an error when the rule or template store
// fails; per-rule failures are reported in the outcomes.
func (c *Coordinator) Run(ctx context.Context, ev Event) (*RunResult, error) {
	t := trigger.Canonicalize(ev.Trigger)
	result := &RunResult{Trigger: t, Outcomes: []Outcome{}}

	active, err := c.rules.ActiveFor(ctx, t)
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		c.logger.Debug("no active rules for trigger", map[string]interface{}{"trigger": string(t)})
		return result, nil
	}

	var templates render.TemplateIndex
	if needsTemplates(active) {
		list, err := c.templates.FetchTemplates(ctx)
		if err != nil {
			return nil, err
		}
		templates = render.IndexTemplates(list)
	}

	loaded := c.entities.Load(ctx)
	result.FetchWarnings = loaded.Warnings()

	for _, rule := range active {
		out := c.runRule(ctx, t, rule, ev.Context, loaded.Set, templates)
		switch out.Status {
		case StatusSent:
			result.Dispatched++
		case StatusSkipped:
			result.Skipped++
		default:
			result.Failed++
		}
		result.Outcomes = append(result.Outcomes, out)
	}

	c.logger.Info("automation run finished", map[string]interface{}{
		"trigger":    string(t),
		"rules":      len(active),
		"dispatched": result.Dispatched,
		"skipped":    result.Skipped,
		"failed":     result.Failed,
	})
	return result, nil
}

func (c *Coordinator) runRule(
	ctx context.Context,
	t trigger.Trigger,
	rule models.AutomationRule,
	tc models.TriggerContext,
	set *models.EntitySet,
	templates render.TemplateIndex,
) Outcome {
	out := Outcome{
		RuleID:     rule.ID,
		RuleName:   rule.Name,
		Channel:    rule.Channel,
		DispatchID: uuid.NewString(),
	}
	log := c.logger.WithFields(map[string]interface{}{
		"ruleId":     rule.ID,
		"dispatchId": out.DispatchID,
		"channel":    string(rule.Channel),
	})

	prepared, err := pipeline.Prepare(rule, tc, set, templates)
	switch {
	case err != nil:
		c.fail(&out, StatusFailed, err)
	case prepared.Recipient == "":
		out.Gaps = prepared.Gaps
		c.fail(&out, StatusSkipped, errors.NewRecipientMissingError(string(rule.Channel)))
	default:
		out.Recipient = prepared.Recipient
		out.Gaps = prepared.Gaps
		if err := c.dispatcher.Dispatch(ctx, rule.Channel, prepared.Recipient, prepared.Message); err != nil {
			c.fail(&out, StatusFailed, err)
		} else {
			out.Status = StatusSent
			if err := c.rules.MarkRun(ctx, rule.ID, c.now()); err != nil {
				log.Warn("failed to record last run", map[string]interface{}{"error": err.Error()})
			}
		}
	}

	metrics.DispatchesTotal.WithLabelValues(string(rule.Channel), out.Status).Inc()
	if out.Status != StatusSent {
		log.Warn("rule not dispatched", map[string]interface{}{
			"status":    out.Status,
			"errorCode": out.ErrorCode,
			"error":     out.Error,
		})
	}

	entry := AuditEntry{
		DispatchID: out.DispatchID,
		RuleID:     rule.ID,
		RuleName:   rule.Name,
		Trigger:    string(t),
		Channel:    string(rule.Channel),
		Recipient:  out.Recipient,
		Subject:    prepared.Message.Subject,
		Status:     out.Status,
		ErrorCode:  out.ErrorCode,
		Gaps:       out.Gaps,
		SentAt:     c.now(),
	}
	if err := c.audit.Record(ctx, entry); err != nil {
		log.Warn("audit write failed", map[string]interface{}{"error": err.Error()})
	}
	return out
}

func (c *Coordinator) fail(out *Outcome, status string, err error) {
	out.Status = status
	out.ErrorCode = string(errors.CodeOf(err))
	out.Error = err.Error()
}

func needsTemplates(rules []models.AutomationRule) bool {
	for _, r := range rules {
		if _, ok := r.Content.(models.TemplateRef); ok {
			return true
		}
	}
	return false
}
