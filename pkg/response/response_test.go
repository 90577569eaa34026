package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/formation-api/pkg/errors"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestErrorBusinessFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Error(c, appErrors.Clone(appErrors.ErrCapacityExceeded, ""))

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, StatusFail, body["status"])
	assert.Equal(t, "CAPACITY_EXCEEDED", body["error"].(map[string]interface{})["code"])
	assert.Len(t, c.Errors, 1)
}

func TestErrorHidesInternalDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Error(c, appErrors.Internal(fmt.Errorf("pq: connection refused"), "failed to load formation"))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
	assert.NotContains(t, w.Body.String(), "failed to load formation")
	body := decode(t, w)
	assert.Equal(t, StatusError, body["status"])
	require.Len(t, c.Errors, 1)
	assert.Contains(t, c.Errors[0].Error(), "connection refused")
}

func TestListIncludesZeroResults(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	List(c, []string{}, 0)

	body := decode(t, w)
	assert.Equal(t, StatusSuccess, body["status"])
	assert.Equal(t, float64(0), body["results"])
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}
