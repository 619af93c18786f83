package utils

import (
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateIBAN(t *testing.T) {
	tests := []struct {
		iban  string
		valid bool
	}{
		{"GB82WEST12345698765432", true},
		{"DE89370400440532013000", true},
		{"FR1420041010050500013M02606", true},
		{"GB82WEST12345698765433", false},
		{"GB82", false},
		{"1234WEST12345698765432", false},
		{"gb82west12345698765432", false},
	}
	for _, tt := range tests {
		t.Run(tt.iban, func(t *testing.T) {
			ok, msg := ValidateIBAN(tt.iban)
			assert.Equal(t, tt.valid, ok, msg)
		})
	}

	assert.Equal(t, "GB82WEST12345698765432", NormalizeIBAN(" gb82 west 1234 5698 7654 32 "))
}

func TestValidatePassword(t *testing.T) {
	ok, _ := ValidatePassword("Secret123")
	assert.True(t, ok)

	for _, weak := range []string{"Sec1", "secret123", "SECRET123", "SecretSecret"} {
		ok, msg := ValidatePassword(weak)
		assert.False(t, ok, weak)
		assert.NotEmpty(t, msg)
	}
}

type strictPayload struct {
	Name  string `json:"name" binding:"required"`
	Count int    `json:"count" binding:"min=1"`
}

func TestBindStrictJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.POST("/bind", func(c *gin.Context) {
		var payload strictPayload
		if err := BindStrictJSON(c, &payload); err != nil {
			RespondError(c, err)
			return
		}
		Success(c, "ok", payload)
	})

	resp := MakeTestRequest(t, router, TestRequest{Method: http.MethodPost, Path: "/bind", Body: `{"name":"menu","count":2}`})
	AssertResponse(t, resp, http.StatusOK, "success")
	assert.Equal(t, "menu", ResponseData(t, resp)["name"])

	resp = MakeTestRequest(t, router, TestRequest{Method: http.MethodPost, Path: "/bind", Body: `{"name":"menu","count":2,"admin":true}`})
	AssertResponse(t, resp, http.StatusBadRequest, "error")

	resp = MakeTestRequest(t, router, TestRequest{Method: http.MethodPost, Path: "/bind", Body: `{"count":0}`})
	AssertResponse(t, resp, http.StatusUnprocessableEntity, "error")
	fieldErrs, ok := ResponseData(t, resp)["errors"].([]interface{})
	require.True(t, ok)
	assert.Len(t, fieldErrs, 2)

	resp = MakeTestRequest(t, router, TestRequest{Method: http.MethodPost, Path: "/bind"})
	AssertResponse(t, resp, http.StatusUnprocessableEntity, "error")
}

func TestFieldValidationErrorsErr(t *testing.T) {
	var errs FieldValidationErrors
	assert.NoError(t, errs.Err())

	errs.Add("iban", "IBAN checksum is invalid")
	err := errs.Err()
	require.Error(t, err)

	var appErr *AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusUnprocessableEntity, appErr.Code)

	var fields FieldValidationErrors
	require.ErrorAs(t, err, &fields)
	assert.Equal(t, "iban", fields[0].Field)
}
