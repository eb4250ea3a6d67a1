package postgres

import (
	"context"
	"database/sql"

	"recruit-automation/internal/common/database"
	"recruit-automation/internal/common/errors"
	"recruit-automation/internal/models"
)

// TemplateStore reads the message_templates catalog. The engine never writes it.
type TemplateStore struct {
	db *sql.DB
}

func NewTemplateStore(pg *database.PostgresClient) *TemplateStore {
	return &TemplateStore{db: pg.DB}
}

func (s *TemplateStore) FetchTemplates(ctx context.Context) ([]models.Template, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, subject, body FROM message_templates ORDER BY name, id`)
	if err != nil {
		return nil, errors.NewPersistenceFailedError("fetch_templates", err)
	}
	defer rows.Close()

	var out []models.Template
	for rows.Next() {
		var t models.Template
		if err := rows.Scan(&t.ID, &t.Name, &t.Subject, &t.Body); err != nil {
			return nil, errors.NewPersistenceFailedError("fetch_templates", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewPersistenceFailedError("fetch_templates", err)
	}
	return out, nil
}
