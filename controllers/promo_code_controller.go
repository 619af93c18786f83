package controllers

import (
	"github.com/Govind-619/MenuSphere/middleware"
	"github.com/Govind-619/MenuSphere/services"
	"github.com/Govind-619/MenuSphere/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// PromoCodeController serves promo code administration and redemption previews
type PromoCodeController struct {
	promos *services.PromoCodeService
}

// NewPromoCodeController creates a PromoCodeController
func NewPromoCodeController(promos *services.PromoCodeService) *PromoCodeController {
	return &PromoCodeController{promos: promos}
}

type applyPromoCodeRequest struct {
	Code   string          `json:"code" binding:"required,max=50"`
	Amount decimal.Decimal `json:"amount"`
	PlanID string          `json:"plan_id" binding:"omitempty,max=50"`
}

// Create adds a promo code
func (pc *PromoCodeController) Create(c *gin.Context) {
	admin, ok := requireUser(c)
	if !ok {
		return
	}
	var input services.CreatePromoCodeInput
	if err := utils.BindStrictJSON(c, &input); err != nil {
		utils.RespondError(c, err)
		return
	}

	promo, err := pc.promos.Create(c.Request.Context(), admin.ID, input)
	if err != nil {
		utils.LogError("Failed to create promo code %s: %v", input.Code, err)
		utils.RespondError(c, err)
		return
	}
	utils.LogInfo("Admin %d created promo code %s", admin.ID, promo.Code)
	utils.Created(c, "Promo code created successfully", promo)
}

// List pages through promo codes, ?is_active= and ?type= filter
func (pc *PromoCodeController) List(c *gin.Context) {
	isActive, err := boolQuery(c, "is_active")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	page := utils.NewPagination(c)
	items, err := pc.promos.List(c.Request.Context(), services.PromoCodeFilter{IsActive: isActive, Type: c.Query("type")}, page)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SendPaginatedResponse(c, "Promo codes retrieved successfully", items, page)
}

// Update changes a promo code
func (pc *PromoCodeController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var input services.UpdatePromoCodeInput
	if err := utils.BindStrictJSON(c, &input); err != nil {
		utils.RespondError(c, err)
		return
	}

	promo, err := pc.promos.Update(c.Request.Context(), id, input)
	if err != nil {
		utils.LogError("Failed to update promo code %d: %v", id, err)
		utils.RespondError(c, err)
		return
	}
	utils.LogInfo("Promo code %d updated", id)
	utils.Success(c, "Promo code updated successfully", promo)
}

// Delete removes a promo code and its usage history
func (pc *PromoCodeController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := pc.promos.Delete(c.Request.Context(), id); err != nil {
		utils.LogError("Failed to delete promo code %d: %v", id, err)
		utils.RespondError(c, err)
		return
	}
	utils.LogInfo("Promo code %d deleted", id)
	utils.Success(c, "Promo code deleted successfully", nil)
}

// ListUsages pages through the redemptions of a promo code
func (pc *PromoCodeController) ListUsages(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	page := utils.NewPagination(c)
	usages, err := pc.promos.ListUsages(c.Request.Context(), id, page)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SendPaginatedResponse(c, "Promo code usages retrieved successfully", usages, page)
}

// Validate checks a code, ?plan_id= narrows to a plan. Anonymous callers skip
// the per-user check.
func (pc *PromoCodeController) Validate(c *gin.Context) {
	var userID *uint
	if user, ok := middleware.CurrentUser(c); ok {
		userID = &user.ID
	}

	summary, err := pc.promos.Validate(c.Request.Context(), c.Param("code"), userID, c.Query("plan_id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Promo code is valid", summary)
}

// Apply prices an amount with a code without redeeming it
func (pc *PromoCodeController) Apply(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
		return
	}
	var req applyPromoCodeRequest
	if err := utils.BindStrictJSON(c, &req); err != nil {
		utils.RespondError(c, err)
		return
	}

	quote, err := pc.promos.Preview(c.Request.Context(), req.Code, req.Amount, req.PlanID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Promo code applied successfully", quote)
}

// MyUsages lists the caller's redemptions
func (pc *PromoCodeController) MyUsages(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	usages, err := pc.promos.ListMyUsages(c.Request.Context(), user.ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Promo code usages retrieved successfully", usages)
}
