package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"timelock.keep/internal/logger"
	"timelock.keep/internal/store"
	"timelock.keep/internal/timelock"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	router *chi.Mux
	now    time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}

	svc := timelock.NewService(
		store.NewMemoryStore(),
		func() time.Time { return env.now },
		1, 100,
		logger.Nop(),
	)
	env.router = SetupRouter(svc, logger.Nop())
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) createSecret(t *testing.T, value string, holdDays int) string {
	t.Helper()
	rr := e.do(t, http.MethodPost, "/api/secrets", CreateRequest{Value: value, HoldDays: holdDays})
	require.Equal(t, http.StatusCreated, rr.Code)

	var resp RecordResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.ID
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/api/health", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestCreateSecret(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/api/secrets", CreateRequest{
		Value:       "S3CR3T",
		HoldDays:    3,
		Description: "backup key",
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	var resp RecordResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "backup key", resp.Description)
	assert.False(t, resp.IsExpired)
	assert.Equal(t, 3, resp.Remaining.Days)
	assert.NotContains(t, rr.Body.String(), "S3CR3T", "create response must not echo the value")
}

func TestCreateSecret_HoldDaysValidation(t *testing.T) {
	env := newTestEnv(t)

	for _, days := range []int{0, 101} {
		rr := env.do(t, http.MethodPost, "/api/secrets", CreateRequest{Value: "x", HoldDays: days})
		assert.Equal(t, http.StatusBadRequest, rr.Code, "hold_days=%d", days)
	}
}

func TestCreateSecret_MalformedBody(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/secrets", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateSecret_RejectsNonJSON(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/secrets", strings.NewReader("value=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rr.Code)
}

func TestListSecrets_NeverContainsValue(t *testing.T) {
	env := newTestEnv(t)
	env.createSecret(t, "hunter2", 1)
	env.createSecret(t, "hunter3", 10)

	// One record expired, one still held.
	env.now = env.now.Add(25 * time.Hour)

	rr := env.do(t, http.MethodGet, "/api/secrets", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp []RecordResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.NotContains(t, rr.Body.String(), "hunter")
	assert.NotContains(t, rr.Body.String(), `"value"`)
}

func TestGetSecret_SingleReveal(t *testing.T) {
	env := newTestEnv(t)
	id := env.createSecret(t, "S3CR3T", 1)
	path := fmt.Sprintf("/api/secrets/%s", id)

	// Before expiry: metadata only.
	env.now = env.now.Add(time.Hour)
	rr := env.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp RecordResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.False(t, resp.IsExpired)
	assert.Empty(t, resp.Value)
	assert.Equal(t, 23, resp.Remaining.Hours)

	// First read past expiry discloses.
	env.now = env.now.Add(24 * time.Hour)
	rr = env.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.IsExpired)
	assert.Equal(t, "S3CR3T", resp.Value)

	// And the record is gone afterwards.
	rr = env.do(t, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGetSecret_Unknown(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/api/secrets/no-such-id", nil)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "not found or expired")
}

func TestDeleteSecret(t *testing.T) {
	env := newTestEnv(t)
	id := env.createSecret(t, "S3CR3T", 1)
	path := fmt.Sprintf("/api/secrets/%s", id)

	rr := env.do(t, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "S3CR3T")

	// Deleted before expiry: the value is never disclosed, even much later.
	env.now = env.now.Add(200 * 24 * time.Hour)
	rr = env.do(t, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	// Repeat delete of a known id stays idempotent.
	rr = env.do(t, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestDeleteSecret_Unknown(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodDelete, "/api/secrets/no-such-id", nil)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
