package database

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"recruit-automation/internal/common/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgres_EnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	client := NewPostgresFromDB(db)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS automation_rules").
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, client.EnsureSchema(context.Background()))

	mock.ExpectExec("CREATE TABLE").WillReturnError(errors.New("permission denied"))
	err = client.EnsureSchema(context.Background())
	assert.ErrorContains(t, err, "apply schema")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedis_Ping(t *testing.T) {
	mr := miniredis.RunT(t)
	client := NewRedis(config.RedisConfig{Address: mr.Addr()})
	defer client.Close()

	require.NoError(t, client.Ping(context.Background()))

	mr.Close()
	assert.ErrorContains(t, client.Ping(context.Background()), "redis ping failed")
}

// fakeCluster answers index HEAD/PUT requests the way Elasticsearch does.
func fakeCluster(t *testing.T, existsStatus, createStatus int) (*ElasticsearchClient, *[]string) {
	t.Helper()
	var calls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		calls = append(calls, r.Method+" "+r.URL.Path)
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodHead:
			w.WriteHeader(existsStatus)
		case http.MethodPut:
			w.WriteHeader(createStatus)
			_, _ = w.Write([]byte(`{"acknowledged":true}`))
		default:
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{}`))
		}
	}))
	t.Cleanup(srv.Close)

	client, err := NewElasticsearch(config.ElasticsearchConfig{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return client, &calls
}

func TestElasticsearch_EnsureIndex(t *testing.T) {
	tests := []struct {
		name         string
		existsStatus int
		createStatus int
		wantCalls    []string
		wantErr      bool
	}{
		{
			name:         "index already present",
			existsStatus: http.StatusOK,
			wantCalls:    []string{"HEAD /audit"},
		},
		{
			name:         "index created",
			existsStatus: http.StatusNotFound,
			createStatus: http.StatusOK,
			wantCalls:    []string{"HEAD /audit", "PUT /audit"},
		},
		{
			name:         "concurrent creator wins",
			existsStatus: http.StatusNotFound,
			createStatus: http.StatusBadRequest,
			wantCalls:    []string{"HEAD /audit", "PUT /audit"},
		},
		{
			name:         "cluster rejects create",
			existsStatus: http.StatusNotFound,
			createStatus: http.StatusForbidden,
			wantCalls:    []string{"HEAD /audit", "PUT /audit"},
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, calls := fakeCluster(t, tt.existsStatus, tt.createStatus)

			err := client.EnsureIndex(context.Background(), "audit")
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantCalls, *calls)
		})
	}
}

func TestElasticsearch_Ping(t *testing.T) {
	client, _ := fakeCluster(t, http.StatusOK, http.StatusOK)
	assert.NoError(t, client.Ping(context.Background()))
}
