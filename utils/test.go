package utils

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Govind-619/MenuSphere/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRequest represents a test HTTP request
type TestRequest struct {
	Method  string
	Path    string
	Body    interface{}
	Headers map[string]string
	Cookies []*http.Cookie
}

// TestResponse represents a test HTTP response
type TestResponse struct {
	StatusCode int
	Body       map[string]interface{}
	Cookies    []*http.Cookie
	Header     http.Header
}

// MakeTestRequest runs req against router and decodes the JSON envelope
func MakeTestRequest(t *testing.T, router http.Handler, req TestRequest) TestResponse {
	t.Helper()

	var body []byte
	switch b := req.Body.(type) {
	case nil:
	case string:
		body = []byte(b)
	default:
		var err error
		body, err = json.Marshal(b)
		require.NoError(t, err, "marshal request body")
	}

	httpReq, err := http.NewRequest(req.Method, req.Path, bytes.NewReader(body))
	require.NoError(t, err)
	httpReq.Header.Set("Content-Type", "application/json")
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}
	for _, cookie := range req.Cookies {
		httpReq.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httpReq)

	var responseBody map[string]interface{}
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") == gin.MIMEJSON+"; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &responseBody), "unmarshal response body")
	}

	return TestResponse{
		StatusCode: w.Code,
		Body:       responseBody,
		Cookies:    w.Result().Cookies(),
		Header:     w.Header(),
	}
}

// AssertResponse checks the status code and, when expectedStatus is set, the envelope status
func AssertResponse(t *testing.T, response TestResponse, expectedStatusCode int, expectedStatus string) {
	t.Helper()
	assert.Equal(t, expectedStatusCode, response.StatusCode)
	if expectedStatus != "" {
		assert.Equal(t, expectedStatus, response.Body["status"])
	}
}

// ResponseData returns the data object of the envelope
func ResponseData(t *testing.T, response TestResponse) map[string]interface{} {
	t.Helper()
	data, ok := response.Body["data"].(map[string]interface{})
	require.True(t, ok, "response has no data object: %v", response.Body)
	return data
}

// GetTestToken signs a short-lived token for user
func GetTestToken(t *testing.T, user *models.User, secret string) string {
	t.Helper()
	token, err := GenerateToken(user, secret, 0)
	require.NoError(t, err, "generate test token")
	return token
}

// BearerHeader returns the Authorization header for token
func BearerHeader(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}
