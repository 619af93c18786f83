package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// StandardResponse represents the standard API response structure
type StandardResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success sends a standardized success response
func Success(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, StandardResponse{
		Status:  "success",
		Message: message,
		Data:    data,
	})
}

// Created sends a standardized created response (201)
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, StandardResponse{
		Status:  "success",
		Message: message,
		Data:    data,
	})
}

// Error sends a standardized error response
func Error(c *gin.Context, statusCode int, message string, err interface{}) {
	response := StandardResponse{
		Status:  "error",
		Message: message,
	}
	if err != nil {
		response.Data = gin.H{"error": err}
	}
	c.JSON(statusCode, response)
}

// BadRequest sends a 400 Bad Request response
func BadRequest(c *gin.Context, message string, err interface{}) {
	Error(c, http.StatusBadRequest, message, err)
}

// Unauthorized sends a 401 Unauthorized response
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message, nil)
}

// Forbidden sends a 403 Forbidden response
func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, message, nil)
}

// NotFound sends a 404 Not Found response
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message, nil)
}

// InternalServerError sends a 500 Internal Server Error response
func InternalServerError(c *gin.Context, message string, err interface{}) {
	Error(c, http.StatusInternalServerError, message, err)
}

// ValidationError sends a 422 Unprocessable Entity response
func ValidationError(c *gin.Context, message string, err interface{}) {
	Error(c, http.StatusUnprocessableEntity, message, err)
}

// RespondError translates a service error into the standard envelope.
// Anything that is not an AppError is logged and reported as a generic failure.
func RespondError(c *gin.Context, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		data := gin.H{}
		if appErr.Reason != "" {
			data["reason"] = appErr.Reason
		}
		if appErr.Data != nil {
			data["details"] = appErr.Data
		}
		var fields FieldValidationErrors
		if errors.As(appErr.Err, &fields) {
			data["errors"] = fields
		}

		response := StandardResponse{Status: "error", Message: appErr.Message}
		if len(data) > 0 {
			response.Data = data
		}
		LogDebug("%s %s -> %d %s", c.Request.Method, c.Request.URL.Path, appErr.Code, appErr.Error())
		c.JSON(appErr.Code, response)
		return
	}

	var fields FieldValidationErrors
	if errors.As(err, &fields) {
		c.JSON(http.StatusUnprocessableEntity, StandardResponse{
			Status:  "error",
			Message: "Validation failed",
			Data:    gin.H{"errors": fields},
		})
		return
	}

	LogError("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	InternalServerError(c, "Operation failed", nil)
}
