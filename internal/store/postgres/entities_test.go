package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"recruit-automation/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityProvider_Candidates(t *testing.T) {
	pg, mock := newMock(t)
	mock.ExpectQuery("FROM candidates").WillReturnRows(
		sqlmock.NewRows([]string{"id", "name", "email", "phone", "location", "position", "company", "experience"}).
			AddRow("c1", "Jane", "jane@acme.io", "+1555", "Austin", "Engineer", "Initech", 7))

	got, err := NewEntityProvider(pg).FetchEntityList(context.Background(), models.KindCandidate)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.Candidate{ID: "c1", Name: "Jane", Email: "jane@acme.io", Phone: "+1555",
		Location: "Austin", Position: "Engineer", Company: "Initech", Experience: 7}, got[0])
}

func TestEntityProvider_InterviewsWithNullTime(t *testing.T) {
	pg, mock := newMock(t)
	at := time.Date(2024, 3, 5, 15, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM interviews").WillReturnRows(
		sqlmock.NewRows([]string{"id", "scheduled_at", "interview_type", "location", "duration_minutes", "meeting_link", "interviewer"}).
			AddRow("i1", at, "Video", "Online", 45, "https://meet", "Sam").
			AddRow("i2", nil, "Phone", "", 0, "", ""))

	got, err := NewEntityProvider(pg).FetchEntityList(context.Background(), models.KindInterview)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, at.Equal(got[0].(models.Interview).ScheduledAt))
	assert.True(t, got[1].(models.Interview).ScheduledAt.IsZero())
}

func TestEntityProvider_EveryKindHasAQuery(t *testing.T) {
	for _, kind := range models.EntityKinds() {
		_, ok := entityQueries[kind]
		assert.True(t, ok, kind)
	}
}

func TestEntityProvider_Errors(t *testing.T) {
	pg, mock := newMock(t)
	mock.ExpectQuery("FROM jobs").WillReturnError(fmt.Errorf("relation \"jobs\" does not exist"))

	p := NewEntityProvider(pg)
	_, err := p.FetchEntityList(context.Background(), models.KindJob)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list job")

	_, err = p.FetchEntityList(context.Background(), models.EntityKind("recruiter"))
	assert.Error(t, err)
}
