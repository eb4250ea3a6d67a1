package rules

import (
	"context"
	"sort"
	"sync"
	"time"

	"recruit-automation/internal/common/errors"
	"recruit-automation/internal/models"
)

// MemoryStore is a process-local Store used by tests and local runs.
type MemoryStore struct {
	mu    sync.RWMutex
	rules map[string]models.AutomationRule
	now   func() time.Time
}

func NewMemoryStore(seed ...models.AutomationRule) *MemoryStore {
	m := &MemoryStore{
		rules: make(map[string]models.AutomationRule),
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, r := range seed {
		m.rules[r.ID] = r
	}
	return m
}

func (m *MemoryStore) LoadAutomationRules(_ context.Context) ([]models.AutomationRule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.AutomationRule, 0, len(m.rules))
	for _, r := range m.rules {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemoryStore) GetAutomationRule(_ context.Context, id string) (*models.AutomationRule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.rules[id]
	if !ok {
		return nil, errors.NewRuleNotFoundError(id)
	}
	return &r, nil
}

func (m *MemoryStore) CreateAutomationRule(_ context.Context, rule models.AutomationRule) (*models.AutomationRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rules[rule.ID] = rule
	return &rule, nil
}

func (m *MemoryStore) UpdateAutomationRule(_ context.Context, id string, patch models.RulePatch) (*models.AutomationRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rules[id]
	if !ok {
		return nil, errors.NewRuleNotFoundError(id)
	}
	r.Name = patch.Name
	r.Description = patch.Description
	r.Trigger = patch.Trigger
	r.Channel = patch.Channel
	r.Content = patch.Content
	if patch.Status != nil {
		r.Status = *patch.Status
	}
	r.UpdatedAt = m.now()
	m.rules[id] = r
	return &r, nil
}

func (m *MemoryStore) DeleteAutomationRule(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rules[id]; !ok {
		return errors.NewRuleNotFoundError(id)
	}
	delete(m.rules, id)
	return nil
}

func (m *MemoryStore) ToggleAutomationRule(_ context.Context, id string) (*models.AutomationRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rules[id]
	if !ok {
		return nil, errors.NewRuleNotFoundError(id)
	}
	r.Status = r.Status.Toggle()
	r.UpdatedAt = m.now()
	m.rules[id] = r
	return &r, nil
}

func (m *MemoryStore) MarkRun(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rules[id]
	if !ok {
		return errors.NewRuleNotFoundError(id)
	}
	at = at.UTC()
	r.LastRunAt = &at
	m.rules[id] = r
	return nil
}
