// Package postgres implements the rule, template and entity collaborators
// on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"recruit-automation/internal/common/database"
	"recruit-automation/internal/common/errors"
	"recruit-automation/internal/engine/trigger"
	"recruit-automation/internal/models"
)

const ruleColumns = `id, name, description, trigger, channel, content_mode, template_id, subject, body,
	status, last_run_at, created_at, updated_at`

// RuleStore persists automation rules in the automation_rules table.
type RuleStore struct {
	db *sql.DB
}

func NewRuleStore(pg *database.PostgresClient) *RuleStore {
	return &RuleStore{db: pg.DB}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRule(row rowScanner) (*models.AutomationRule, error) {
	var (
		r                            models.AutomationRule
		trig, mode, tplID, subj, bod string
		lastRun                      sql.NullTime
	)
	if err := row.Scan(
		&r.ID, &r.Name, &r.Description, &trig, &r.Channel, &mode, &tplID, &subj, &bod,
		&r.Status, &lastRun, &r.CreatedAt, &r.UpdatedAt,
	); err != nil {
		return nil, err
	}

	content, err := models.BuildContent(models.ContentMode(mode), tplID, subj, bod)
	if err != nil {
		return nil, err
	}
	r.Trigger = trigger.Trigger(trig)
	r.Content = content
	if lastRun.Valid {
		t := lastRun.Time.UTC()
		r.LastRunAt = &t
	}
	return &r, nil
}

func (s *RuleStore) LoadAutomationRules(ctx context.Context) ([]models.AutomationRule, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+ruleColumns+` FROM automation_rules ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, errors.NewPersistenceFailedError("load_rules", err)
	}
	defer rows.Close()

	var out []models.AutomationRule
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, errors.NewPersistenceFailedError("load_rules", err)
		}
		out = append(out, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewPersistenceFailedError("load_rules", err)
	}
	return out, nil
}

func (s *RuleStore) GetAutomationRule(ctx context.Context, id string) (*models.AutomationRule, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+ruleColumns+` FROM automation_rules WHERE id = $1`, id)
	return s.single(row, id, "get_rule")
}

func (s *RuleStore) CreateAutomationRule(ctx context.Context, rule models.AutomationRule) (*models.AutomationRule, error) {
	mode, tplID, subj, body := models.ContentFields(rule.Content)
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO automation_rules
			(id, name, description, trigger, channel, content_mode, template_id, subject, body, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+ruleColumns,
		rule.ID, rule.Name, rule.Description, string(rule.Trigger), string(rule.Channel),
		string(mode), tplID, subj, body, string(rule.Status), rule.CreatedAt, rule.UpdatedAt,
	)
	r, err := scanRule(row)
	if err != nil {
		return nil, errors.NewPersistenceFailedError("create_rule", err)
	}
	return r, nil
}

// UpdateAutomationRule replaces the editable fields; status is kept when
// patch.Status is nil.
func (s *RuleStore) UpdateAutomationRule(ctx context.Context, id string, patch models.RulePatch) (*models.AutomationRule, error) {
	mode, tplID, subj, body := models.ContentFields(patch.Content)
	var status sql.NullString
	if patch.Status != nil {
		status = sql.NullString{String: string(*patch.Status), Valid: true}
	}

	row := s.db.QueryRowContext(ctx,
		`UPDATE automation_rules SET
			name = $2, description = $3, trigger = $4, channel = $5,
			content_mode = $6, template_id = $7, subject = $8, body = $9,
			status = COALESCE($10, status), updated_at = NOW()
		WHERE id = $1
		RETURNING `+ruleColumns,
		id, patch.Name, patch.Description, string(patch.Trigger), string(patch.Channel),
		string(mode), tplID, subj, body, status,
	)
	return s.single(row, id, "update_rule")
}

func (s *RuleStore) DeleteAutomationRule(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM automation_rules WHERE id = $1`, id)
	return s.affected(res, err, id, "delete_rule")
}

// ToggleAutomationRule flips the status in a single statement so concurrent
// toggles cannot lose an update.
func (s *RuleStore) ToggleAutomationRule(ctx context.Context, id string) (*models.AutomationRule, error) {
	row := s.db.QueryRowContext(ctx,
		`UPDATE automation_rules SET
			status = CASE WHEN status = 'active' THEN 'inactive' ELSE 'active' END,
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+ruleColumns, id)
	return s.single(row, id, "toggle_rule")
}

func (s *RuleStore) MarkRun(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE automation_rules SET last_run_at = $2 WHERE id = $1`, id, at.UTC())
	return s.affected(res, err, id, "mark_run")
}

func (s *RuleStore) single(row *sql.Row, id, op string) (*models.AutomationRule, error) {
	r, err := scanRule(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewRuleNotFoundError(id)
	}
	if err != nil {
		return nil, errors.NewPersistenceFailedError(op, err)
	}
	return r, nil
}

func (s *RuleStore) affected(res sql.Result, err error, id, op string) error {
	if err != nil {
		return errors.NewPersistenceFailedError(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.NewPersistenceFailedError(op, err)
	}
	if n == 0 {
		return errors.NewRuleNotFoundError(id)
	}
	return nil
}
