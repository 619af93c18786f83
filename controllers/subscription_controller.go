package controllers

import (
	"github.com/Govind-619/MenuSphere/services"
	"github.com/Govind-619/MenuSphere/utils"
	"github.com/gin-gonic/gin"
)

// SubscriptionController sells plans
type SubscriptionController struct {
	subscriptions *services.SubscriptionService
}

// NewSubscriptionController creates a SubscriptionController
func NewSubscriptionController(subscriptions *services.SubscriptionService) *SubscriptionController {
	return &SubscriptionController{subscriptions: subscriptions}
}

// ListPlans returns the plans on sale
func (sc *SubscriptionController) ListPlans(c *gin.Context) {
	plans, err := sc.subscriptions.ListPlans(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Plans retrieved successfully", plans)
}

// Checkout starts a purchase
func (sc *SubscriptionController) Checkout(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var input services.CheckoutInput
	if err := utils.BindStrictJSON(c, &input); err != nil {
		utils.RespondError(c, err)
		return
	}

	result, err := sc.subscriptions.Checkout(c.Request.Context(), user.ID, input)
	if err != nil {
		utils.LogError("Checkout failed for user %d plan %s: %v", user.ID, input.PlanID, err)
		utils.RespondError(c, err)
		return
	}
	utils.LogInfo("User %d checked out subscription %d (%s)", user.ID, result.Subscription.ID, result.Subscription.Status)
	utils.Created(c, "Checkout created successfully", result)
}

// Verify confirms the payment of a pending subscription
func (sc *SubscriptionController) Verify(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var input services.ConfirmPaymentInput
	if err := utils.BindStrictJSON(c, &input); err != nil {
		utils.RespondError(c, err)
		return
	}

	sub, err := sc.subscriptions.ConfirmPayment(c.Request.Context(), user.ID, input)
	if err != nil {
		utils.LogError("Payment verification failed for subscription %d: %v", input.SubscriptionID, err)
		utils.RespondError(c, err)
		return
	}
	utils.LogInfo("Subscription %d activated for user %d", sub.ID, user.ID)
	utils.Success(c, "Payment verified successfully", sub)
}

// Cancel abandons a pending subscription
func (sc *SubscriptionController) Cancel(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	sub, err := sc.subscriptions.Cancel(c.Request.Context(), user.ID, id)
	if err != nil {
		utils.LogError("Cancel failed for subscription %d: %v", id, err)
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Subscription cancelled successfully", sub)
}

// ListMine returns the caller's subscriptions
func (sc *SubscriptionController) ListMine(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	subs, err := sc.subscriptions.ListMine(c.Request.Context(), user.ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Subscriptions retrieved successfully", subs)
}
