package postgres

import (
	"context"
	"fmt"
	"testing"

	"recruit-automation/internal/common/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateStore_FetchTemplates(t *testing.T) {
	pg, mock := newMock(t)
	mock.ExpectQuery("FROM message_templates ORDER BY name").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "subject", "body"}).
			AddRow("t1", "Invite", "Interview for {{job_title}}", `Line\nLine`).
			AddRow("t2", "Reject", "Update", "Sorry"))

	got, err := NewTemplateStore(pg).FetchTemplates(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, `Line\nLine`, got[0].Body)
}

func TestTemplateStore_FetchTemplatesError(t *testing.T) {
	pg, mock := newMock(t)
	mock.ExpectQuery("FROM message_templates").WillReturnError(fmt.Errorf("timeout"))

	_, err := NewTemplateStore(pg).FetchTemplates(context.Background())
	assert.True(t, errors.HasCode(err, errors.ErrCodePersistenceFailed))
}
