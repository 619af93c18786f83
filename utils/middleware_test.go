package utils

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRequestIDAndRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RequestIDMiddleware(), RecoveryMiddleware(), SecurityHeadersMiddleware())
	router.GET("/ok", func(c *gin.Context) { Success(c, "ok", gin.H{"id": c.GetString(RequestIDKey)}) })
	router.GET("/panic", func(c *gin.Context) { panic("boom") })

	resp := MakeTestRequest(t, router, TestRequest{Method: http.MethodGet, Path: "/ok", Headers: map[string]string{"X-Request-ID": "req-42"}})
	AssertResponse(t, resp, http.StatusOK, "success")
	assert.Equal(t, "req-42", resp.Header.Get("X-Request-ID"))
	assert.Equal(t, "req-42", ResponseData(t, resp)["id"])
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))

	resp = MakeTestRequest(t, router, TestRequest{Method: http.MethodGet, Path: "/ok"})
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp = MakeTestRequest(t, router, TestRequest{Method: http.MethodGet, Path: "/panic"})
	AssertResponse(t, resp, http.StatusInternalServerError, "error")
}
