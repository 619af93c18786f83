package controllers

import (
	"github.com/Govind-619/MenuSphere/services"
	"github.com/Govind-619/MenuSphere/utils"
	"github.com/gin-gonic/gin"
)

// AdminAffiliateController manages affiliates and program settings
type AdminAffiliateController struct {
	affiliates *services.AffiliateService
	settings   *services.SettingsService
}

// NewAdminAffiliateController creates an AdminAffiliateController
func NewAdminAffiliateController(affiliates *services.AffiliateService, settings *services.SettingsService) *AdminAffiliateController {
	return &AdminAffiliateController{affiliates: affiliates, settings: settings}
}

type updateAffiliateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// List pages through affiliates, ?status= filters
func (ac *AdminAffiliateController) List(c *gin.Context) {
	page := utils.NewPagination(c)
	partners, err := ac.affiliates.List(c.Request.Context(), c.Query("status"), page)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SendPaginatedResponse(c, "Affiliates retrieved successfully", partners, page)
}

// UpdateStatus approves, suspends, bans or reinstates an affiliate
func (ac *AdminAffiliateController) UpdateStatus(c *gin.Context) {
	admin, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req updateAffiliateStatusRequest
	if err := utils.BindStrictJSON(c, &req); err != nil {
		utils.RespondError(c, err)
		return
	}

	partner, err := ac.affiliates.UpdateStatus(c.Request.Context(), id, req.Status, admin.ID)
	if err != nil {
		utils.LogError("Failed to move affiliate %d to %s: %v", id, req.Status, err)
		utils.RespondError(c, err)
		return
	}
	utils.LogInfo("Admin %d moved affiliate %d to %s", admin.ID, id, partner.Status)
	utils.Success(c, "Affiliate status updated successfully", partner)
}

// Stats returns program-wide totals
func (ac *AdminAffiliateController) Stats(c *gin.Context) {
	stats, err := ac.affiliates.Stats(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Affiliate stats retrieved successfully", stats)
}

// GetSettings returns the current program settings
func (ac *AdminAffiliateController) GetSettings(c *gin.Context) {
	settings, err := ac.settings.Get(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Affiliate settings retrieved successfully", settings)
}

// UpdateSettings applies a partial settings update
func (ac *AdminAffiliateController) UpdateSettings(c *gin.Context) {
	var input services.UpdateSettingsInput
	if err := utils.BindStrictJSON(c, &input); err != nil {
		utils.RespondError(c, err)
		return
	}
	settings, err := ac.settings.Update(c.Request.Context(), input)
	if err != nil {
		utils.LogError("Failed to update affiliate settings: %v", err)
		utils.RespondError(c, err)
		return
	}
	utils.LogInfo("Affiliate settings updated")
	utils.Success(c, "Affiliate settings updated successfully", settings)
}
