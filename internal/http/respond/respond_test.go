package respond

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusCreated, "Registered", map[string]string{"email": "a@example.com"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got struct {
		Code    int               `json:"code"`
		Message string            `json:"message"`
		Data    map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, http.StatusCreated, got.Code)
	assert.Equal(t, "Registered", got.Message)
	assert.Equal(t, "a@example.com", got.Data["email"])
}

func TestErrorEnvelopeOmitsData(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, http.StatusConflict, "insufficient funds")

	assert.Equal(t, http.StatusConflict, rec.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, float64(http.StatusConflict), got["code"])
	assert.Equal(t, "insufficient funds", got["message"])
	assert.NotContains(t, got, "data")
}
