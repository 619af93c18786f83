package controllers

import (
	"github.com/Govind-619/MenuSphere/services"
	"github.com/Govind-619/MenuSphere/utils"
	"github.com/gin-gonic/gin"
)

// AffiliateController serves the affiliate dashboard of the signed-in user
type AffiliateController struct {
	affiliates  *services.AffiliateService
	frontendURL string
}

// NewAffiliateController creates an AffiliateController
func NewAffiliateController(affiliates *services.AffiliateService, frontendURL string) *AffiliateController {
	return &AffiliateController{affiliates: affiliates, frontendURL: frontendURL}
}

// Apply enrolls the caller in the affiliate program
func (ac *AffiliateController) Apply(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var input services.BankInfoInput
	if err := utils.BindStrictJSON(c, &input); err != nil {
		utils.RespondError(c, err)
		return
	}

	partner, err := ac.affiliates.Apply(c.Request.Context(), user.ID, input)
	if err != nil {
		utils.LogError("Affiliate application failed for user %d: %v", user.ID, err)
		utils.RespondError(c, err)
		return
	}
	utils.LogInfo("User %d applied as affiliate %d (%s)", user.ID, partner.ID, partner.Status)
	utils.Created(c, "Affiliate application submitted", partner)
}

// GetMine returns the caller's affiliate record with earnings stats
func (ac *AffiliateController) GetMine(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	overview, err := ac.affiliates.GetMine(c.Request.Context(), user.ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Affiliate retrieved successfully", overview)
}

// GetLink returns the caller's shareable referral link
func (ac *AffiliateController) GetLink(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	link, err := ac.affiliates.GetReferralLink(c.Request.Context(), user.ID, ac.frontendURL)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Referral link retrieved successfully", link)
}

// ListReferrals pages through the users the caller referred
func (ac *AffiliateController) ListReferrals(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	page := utils.NewPagination(c)
	referrals, err := ac.affiliates.ListMyReferrals(c.Request.Context(), user.ID, page)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SendPaginatedResponse(c, "Referrals retrieved successfully", referrals, page)
}

// ListCommissions pages through the caller's commissions, ?is_paid= filters
func (ac *AffiliateController) ListCommissions(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	isPaid, err := boolQuery(c, "is_paid")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	page := utils.NewPagination(c)
	commissions, err := ac.affiliates.ListMyCommissions(c.Request.Context(), user.ID, isPaid, page)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SendPaginatedResponse(c, "Commissions retrieved successfully", commissions, page)
}

// UpdateBankInfo replaces the caller's payout destination
func (ac *AffiliateController) UpdateBankInfo(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var input services.BankInfoInput
	if err := utils.BindStrictJSON(c, &input); err != nil {
		utils.RespondError(c, err)
		return
	}
	partner, err := ac.affiliates.UpdateBankInfo(c.Request.Context(), user.ID, input)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.LogInfo("Bank info updated for affiliate %d", partner.ID)
	utils.Success(c, "Bank info updated successfully", partner)
}
