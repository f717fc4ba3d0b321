package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadyzHandler_AllHealthy(t *testing.T) {
	t.Parallel()
	srv := &Server{
		DBCheck:    func(context.Context) error { return nil },
		RedisCheck: func(context.Context) error { return nil },
	}
	w := httptest.NewRecorder()
	srv.ReadyzHandler()(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReadyzHandler_DependencyDown(t *testing.T) {
	t.Parallel()
	srv := &Server{
		DBCheck:    func(context.Context) error { return nil },
		RedisCheck: func(context.Context) error { return errors.New("connection refused") },
	}
	w := httptest.NewRecorder()
	srv.ReadyzHandler()(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}
