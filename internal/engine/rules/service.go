// Package rules implements the automation rule lifecycle on top of an
// external rule store.
package rules

import (
	"context"
	"time"

	"recruit-automation/internal/common/errors"
	"recruit-automation/internal/common/logger"
	"recruit-automation/internal/engine/trigger"
	"recruit-automation/internal/models"

	"github.com/google/uuid"
)

// Store persists rules. Implementations return RULE_NOT_FOUND for unknown
// ids and PERSISTENCE_FAILED for everything else that goes wrong.
type Store interface {
	LoadAutomationRules(ctx context.Context) ([]models.AutomationRule, error)
	GetAutomationRule(ctx context.Context, id string) (*models.AutomationRule, error)
	CreateAutomationRule(ctx context.Context, rule models.AutomationRule) (*models.AutomationRule, error)
	UpdateAutomationRule(ctx context.Context, id string, patch models.RulePatch) (*models.AutomationRule, error)
	DeleteAutomationRule(ctx context.Context, id string) error
	ToggleAutomationRule(ctx context.Context, id string) (*models.AutomationRule, error)
	MarkRun(ctx context.Context, id string, at time.Time) error
}

// Service validates drafts and forwards lifecycle operations to the store.
// Store errors are returned as-is and never retried.
type Service struct {
	store  Store
	logger logger.Logger
	now    func() time.Time
}

func NewService(store Store, log logger.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger.ForComponent(log, "rules"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) List(ctx context.Context) ([]models.AutomationRule, error) {
	return s.store.LoadAutomationRules(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*models.AutomationRule, error) {
	return s.store.GetAutomationRule(ctx, id)
}

// ActiveFor returns the active rules whose trigger canonicalizes to t. Rules
// saved with legacy free text are matched too.
func (s *Service) ActiveFor(ctx context.Context, t trigger.Trigger) ([]models.AutomationRule, error) {
	all, err := s.store.LoadAutomationRules(ctx)
	if err != nil {
		return nil, err
	}
	want := trigger.Canonicalize(string(t))
	var out []models.AutomationRule
	for _, r := range all {
		if r.IsActive() && trigger.Canonicalize(string(r.Trigger)) == want {
			out = append(out, r)
		}
	}
	return out, nil
}

// Create validates d and stores a new rule. Status defaults to active.
func (s *Service) Create(ctx context.Context, d models.DraftRule) (*models.AutomationRule, error) {
	if errs := ValidateRule(d); len(errs) > 0 {
		return nil, errors.NewValidationError(errs)
	}

	rule := FromDraft(d)
	rule.ID = uuid.NewString()
	rule.CreatedAt = s.now()
	rule.UpdatedAt = rule.CreatedAt

	created, err := s.store.CreateAutomationRule(ctx, rule)
	if err != nil {
		return nil, err
	}
	s.logger.Info("automation rule created", map[string]interface{}{
		"ruleId":  created.ID,
		"trigger": string(created.Trigger),
		"channel": string(created.Channel),
	})
	return created, nil
}

// Update replaces the editable fields of rule id. Status changes only when
// the draft sets one.
func (s *Service) Update(ctx context.Context, id string, d models.DraftRule) (*models.AutomationRule, error) {
	if errs := ValidateRule(d); len(errs) > 0 {
		return nil, errors.NewValidationError(errs)
	}

	rule := FromDraft(d)
	patch := models.RulePatch{
		Name:        rule.Name,
		Description: rule.Description,
		Trigger:     rule.Trigger,
		Channel:     rule.Channel,
		Content:     rule.Content,
	}
	if d.Status != "" {
		status := d.Status
		patch.Status = &status
	}

	updated, err := s.store.UpdateAutomationRule(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.logger.Info("automation rule updated", map[string]interface{}{"ruleId": id})
	return updated, nil
}

// Toggle flips the rule between active and inactive.
func (s *Service) Toggle(ctx context.Context, id string) (*models.AutomationRule, error) {
	rule, err := s.store.ToggleAutomationRule(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Info("automation rule toggled", map[string]interface{}{
		"ruleId": id,
		"status": string(rule.Status),
	})
	return rule, nil
}

// Delete removes the rule permanently.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteAutomationRule(ctx, id); err != nil {
		return err
	}
	s.logger.Info("automation rule deleted", map[string]interface{}{"ruleId": id})
	return nil
}

// MarkRun records a real dispatch of rule id at at.
func (s *Service) MarkRun(ctx context.Context, id string, at time.Time) error {
	return s.store.MarkRun(ctx, id, at)
}
