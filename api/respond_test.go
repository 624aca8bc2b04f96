package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sfrosal/portfolio-api/errs"
)

func testResponder() Responder {
	return NewResponder(zerolog.Nop())
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	testResponder().WriteJSON(rec, map[string]string{"hello": "world"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"hello":"world"}`, rec.Body.String())
}

func TestWriteStatusJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	testResponder().WriteStatusJSON(rec, http.StatusCreated, map[string]string{"id": "1"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"id":"1"}`, rec.Body.String())
}

func TestWriteError_ApiErr(t *testing.T) {
	rec := httptest.NewRecorder()
	testResponder().WriteError(rec, errs.NewTokenExpiredError())

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, errs.CodeTokenExpired, body["code"])
	assert.Equal(t, "credential expired", body["error"])
}

func TestWriteError_ValidationFields(t *testing.T) {
	rec := httptest.NewRecorder()
	testResponder().WriteError(rec, errs.NewValidationError([]string{"name", "message"}, "2 fields failed"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.ElementsMatch(t, []interface{}{"name", "message"}, body["fields"])
	assert.Equal(t, "2 fields failed", body["details"])
}

func TestWriteError_UnknownErrorStaysGeneric(t *testing.T) {
	rec := httptest.NewRecorder()
	testResponder().WriteError(rec, errors.New("pq: password authentication failed for user postgres"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	// Internals never leak to the client.
	assert.NotContains(t, rec.Body.String(), "postgres")
	assert.JSONEq(t, `{"error":"internal server error","status":"error"}`, rec.Body.String())
}
