package controllers

import (
	"strconv"

	"github.com/Govind-619/MenuSphere/middleware"
	"github.com/Govind-619/MenuSphere/models"
	"github.com/Govind-619/MenuSphere/utils"
	"github.com/gin-gonic/gin"
)

// parseIDParam reads a positive numeric path parameter, answering 400 otherwise
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		utils.LogError("Invalid %s parameter: %q", name, raw)
		utils.BadRequest(c, utils.ErrInvalidID, nil)
		return 0, false
	}
	return uint(id), true
}

// requireUser returns the authenticated user, answering 401 when absent
func requireUser(c *gin.Context) (models.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.LogError("User not found in context: %s %s", c.Request.Method, c.Request.URL.Path)
		utils.Unauthorized(c, utils.ErrUnauthorized)
		return models.User{}, false
	}
	return user, true
}

// boolQuery parses an optional boolean query parameter
func boolQuery(c *gin.Context, name string) (*bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		var errs utils.FieldValidationErrors
		errs.Add(name, "must be true or false")
		return nil, errs.Err()
	}
	return &v, nil
}

// uintQuery parses an optional numeric query parameter
func uintQuery(c *gin.Context, name string) (uint, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		var errs utils.FieldValidationErrors
		errs.Add(name, "must be a positive integer")
		return 0, errs.Err()
	}
	return uint(v), nil
}
