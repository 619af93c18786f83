package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/Govind-619/MenuSphere/services"
	"github.com/Govind-619/MenuSphere/utils"
	"github.com/gin-gonic/gin"
)

// PayoutController settles affiliate commissions
type PayoutController struct {
	payouts  *services.PayoutService
	currency string
}

// NewPayoutController creates a PayoutController
func NewPayoutController(payouts *services.PayoutService, currency string) *PayoutController {
	return &PayoutController{payouts: payouts, currency: currency}
}

// Create bundles unpaid commissions into a payout
func (pc *PayoutController) Create(c *gin.Context) {
	admin, ok := requireUser(c)
	if !ok {
		return
	}
	var input services.CreatePayoutInput
	if err := utils.BindStrictJSON(c, &input); err != nil {
		utils.RespondError(c, err)
		return
	}

	payout, err := pc.payouts.CreatePayout(c.Request.Context(), admin.ID, input)
	if err != nil {
		utils.LogError("Failed to create payout for affiliate %d: %v", input.AffiliateID, err)
		utils.RespondError(c, err)
		return
	}
	utils.LogInfo("Admin %d created payout %d of %s for affiliate %d", admin.ID, payout.ID, payout.Amount, payout.AffiliateID)
	utils.Created(c, "Payout created successfully", payout)
}

// UpdateStatus advances a payout; FAILED and CANCELLED release its commissions
func (pc *PayoutController) UpdateStatus(c *gin.Context) {
	admin, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var input services.UpdatePayoutStatusInput
	if err := utils.BindStrictJSON(c, &input); err != nil {
		utils.RespondError(c, err)
		return
	}

	payout, err := pc.payouts.UpdatePayoutStatus(c.Request.Context(), id, admin.ID, input)
	if err != nil {
		utils.LogError("Failed to move payout %d to %s: %v", id, input.Status, err)
		utils.RespondError(c, err)
		return
	}
	utils.LogInfo("Admin %d moved payout %d to %s", admin.ID, id, payout.Status)
	utils.Success(c, "Payout status updated successfully", payout)
}

func payoutFilter(c *gin.Context) (services.PayoutFilter, error) {
	affiliateID, err := uintQuery(c, "affiliate_id")
	if err != nil {
		return services.PayoutFilter{}, err
	}
	return services.PayoutFilter{Status: c.Query("status"), AffiliateID: affiliateID}, nil
}

// List pages through payouts, ?status= and ?affiliate_id= filter
func (pc *PayoutController) List(c *gin.Context) {
	filter, err := payoutFilter(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	page := utils.NewPagination(c)
	payouts, err := pc.payouts.List(c.Request.Context(), filter, page)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SendPaginatedResponse(c, "Payouts retrieved successfully", payouts, page)
}

// Export downloads the filtered payouts as an Excel workbook
func (pc *PayoutController) Export(c *gin.Context) {
	filter, err := payoutFilter(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	payouts, err := pc.payouts.ListAll(c.Request.Context(), filter)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	now := time.Now()
	file, err := services.BuildPayoutsWorkbook(payouts, now)
	if err != nil {
		utils.LogError("Failed to build payouts workbook: %v", err)
		utils.InternalServerError(c, "Failed to generate export", nil)
		return
	}

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		utils.LogError("Failed to write payouts workbook: %v", err)
		utils.InternalServerError(c, "Failed to generate export", nil)
		return
	}
	utils.LogInfo("Exported %d payouts", len(payouts))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=payouts_%s.xlsx", now.Format("20060102")))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// Statement downloads a PDF statement for one payout
func (pc *PayoutController) Statement(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	payout, err := pc.payouts.Get(c.Request.Context(), id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := services.WritePayoutStatementPDF(&buf, payout, pc.currency); err != nil {
		utils.LogError("Failed to render statement for payout %d: %v", id, err)
		utils.InternalServerError(c, "Failed to generate statement", nil)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=payout_%d.pdf", payout.ID))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
