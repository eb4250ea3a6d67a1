package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"recruit-automation/internal/common/database"
	"recruit-automation/internal/models"
)

type listFunc func(ctx context.Context, db *sql.DB) ([]models.Entity, error)

// entityQueries maps each entity kind to the query that lists it.
var entityQueries = map[models.EntityKind]listFunc{
	models.KindCandidate:   listCandidates,
	models.KindJob:         listJobs,
	models.KindCompany:     listCompanies,
	models.KindSender:      listSenders,
	models.KindInterview:   listInterviews,
	models.KindApplication: listApplications,
}

// EntityProvider lists entity snapshots from the recruitment tables.
type EntityProvider struct {
	db *sql.DB
}

func NewEntityProvider(pg *database.PostgresClient) *EntityProvider {
	return &EntityProvider{db: pg.DB}
}

func (p *EntityProvider) FetchEntityList(ctx context.Context, kind models.EntityKind) ([]models.Entity, error) {
	fn, ok := entityQueries[kind]
	if !ok {
		return nil, fmt.Errorf("unsupported entity kind %q", kind)
	}
	out, err := fn(ctx, p.db)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	return out, nil
}

func collect(ctx context.Context, db *sql.DB, query string, scan func(*sql.Rows) (models.Entity, error)) ([]models.Entity, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Entity
	for rows.Next() {
		e, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func listCandidates(ctx context.Context, db *sql.DB) ([]models.Entity, error) {
	return collect(ctx, db,
		`SELECT id, name, email, phone, location, position, company, experience FROM candidates ORDER BY name`,
		func(rows *sql.Rows) (models.Entity, error) {
			var c models.Candidate
			err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Location, &c.Position, &c.Company, &c.Experience)
			return c, err
		})
}

func listJobs(ctx context.Context, db *sql.DB) ([]models.Entity, error) {
	return collect(ctx, db,
		`SELECT id, title, department, location, job_type, salary, description FROM jobs ORDER BY title`,
		func(rows *sql.Rows) (models.Entity, error) {
			var j models.Job
			err := rows.Scan(&j.ID, &j.Title, &j.Department, &j.Location, &j.Type, &j.Salary, &j.Description)
			return j, err
		})
}

func listCompanies(ctx context.Context, db *sql.DB) ([]models.Entity, error) {
	return collect(ctx, db,
		`SELECT id, name, industry, website, location, client_name FROM companies ORDER BY name`,
		func(rows *sql.Rows) (models.Entity, error) {
			var c models.Company
			err := rows.Scan(&c.ID, &c.Name, &c.Industry, &c.Website, &c.Location, &c.ClientName)
			return c, err
		})
}

func listSenders(ctx context.Context, db *sql.DB) ([]models.Entity, error) {
	return collect(ctx, db,
		`SELECT id, name, email, phone, title FROM senders ORDER BY name`,
		func(rows *sql.Rows) (models.Entity, error) {
			var s models.Sender
			err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.Phone, &s.Title)
			return s, err
		})
}

func listInterviews(ctx context.Context, db *sql.DB) ([]models.Entity, error) {
	return collect(ctx, db,
		`SELECT id, scheduled_at, interview_type, location, duration_minutes, meeting_link, interviewer
		FROM interviews ORDER BY scheduled_at`,
		func(rows *sql.Rows) (models.Entity, error) {
			var (
				i  models.Interview
				at sql.NullTime
			)
			err := rows.Scan(&i.ID, &at, &i.Type, &i.Location, &i.Duration, &i.Link, &i.Interviewer)
			if at.Valid {
				i.ScheduledAt = at.Time
			}
			return i, err
		})
}

func listApplications(ctx context.Context, db *sql.DB) ([]models.Entity, error) {
	return collect(ctx, db,
		`SELECT id, status, applied_at, source, stage FROM applications ORDER BY applied_at DESC`,
		func(rows *sql.Rows) (models.Entity, error) {
			var (
				a  models.Application
				at sql.NullTime
			)
			err := rows.Scan(&a.ID, &a.Status, &at, &a.Source, &a.Stage)
			if at.Valid {
				a.AppliedAt = at.Time
			}
			return a, err
		})
}
