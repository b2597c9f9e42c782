package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaenox/discipline-bot/internal/storage"
	"go.uber.org/zap/zaptest"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func get(t *testing.T, s *Server) (*httptest.ResponseRecorder, Status) {
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	var st Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	return rec, st
}

func TestHealthOK(t *testing.T) {
	s := NewServer(":0", storage.NewMemoryStorage(), func() int { return 3 }, 12, zaptest.NewLogger(t))

	rec, st := get(t, s)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, Status{Status: "ok", Storage: "ok", Sessions: 3, Quotes: 12}, st)
}

func TestHealthDegraded(t *testing.T) {
	failing := pingFunc(func(ctx context.Context) error { return storage.ErrUnavailable })
	s := NewServer(":0", failing, nil, 1, zaptest.NewLogger(t))

	rec, st := get(t, s)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "degraded", st.Status)
	assert.Equal(t, storage.ErrUnavailable.Error(), st.Storage)
}
