package apperr

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAndDecode(t *testing.T, err error) (int, errorBody) {
	t.Helper()
	rec := httptest.NewRecorder()
	Write(rec, err)

	var body errorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return rec.Code, body
}

func TestWriteValidation(t *testing.T) {
	status, body := writeAndDecode(t, Validation("name", "must be between 2 and 100 characters"))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "must be between 2 and 100 characters", body.Error)
	assert.Equal(t, "name", body.Field)
}

func TestWriteNotFound(t *testing.T) {
	status, body := writeAndDecode(t, ErrNotFound)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not found", body.Error)
}

func TestWriteWrappedNotFound(t *testing.T) {
	status, _ := writeAndDecode(t, errors.Join(errors.New("lookup"), ErrNotFound))
	assert.Equal(t, http.StatusNotFound, status)
}

func TestWriteForbidden(t *testing.T) {
	status, body := writeAndDecode(t, Forbidden("access denied"))
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "access denied", body.Error)
}

func TestWriteConflict(t *testing.T) {
	status, body := writeAndDecode(t, Conflict("lead is already converted"))
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "lead is already converted", body.Error)
}

func TestWriteUnknownErrorIsOpaque(t *testing.T) {
	status, body := writeAndDecode(t, errors.New("pq: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "operation failed", body.Error)
	assert.NotContains(t, body.Error, "pq")
}
