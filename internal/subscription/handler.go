package subscription

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mechamederoot1/projeto-unipass/internal/api"
	"github.com/mechamederoot1/projeto-unipass/internal/auth"
	"github.com/mechamederoot1/projeto-unipass/internal/coupon"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type planView struct {
	Plan
	FeaturesList      []string `json:"features"`
	SavingsYearlyCent int      `json:"savings_yearly_cents"`
}

// ListPlans godoc
// @Summary      List subscription plans
// @Tags         subscriptions
// @Produce      json
// @Success      200  {array}   planView
// @Failure      500  {object}  gin.H
// @Router       /api/subscriptions/plans [get]
func (h *Handler) ListPlans(c *gin.Context) {
	plans, err := h.service.Plans(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch plans"})
		return
	}

	views := make([]planView, 0, len(plans))
	for _, p := range plans {
		views = append(views, planView{
			Plan:              p,
			FeaturesList:      p.FeaturesList(),
			SavingsYearlyCent: p.SavingsYearlyCents(),
		})
	}

	c.JSON(http.StatusOK, views)
}

// MySubscription godoc
// @Summary      Get the current subscription
// @Tags         subscriptions
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  gin.H
// @Router       /api/subscriptions/my-subscription [get]
func (h *Handler) MySubscription(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	sub, err := h.service.MySubscription(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNoActiveSubscription) {
			c.JSON(http.StatusOK, gin.H{"message": "No active subscription", "subscription": nil})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch subscription"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"subscription": sub, "days_remaining": sub.DaysRemaining()})
}

// Subscribe godoc
// @Summary      Subscribe to a plan
// @Description  Charges the plan price and activates the subscription. An
// @Description  optional coupon code discounts the charge.
// @Tags         subscriptions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        planID   path      int               true  "Plan ID"
// @Param        request  body      SubscribeRequest  true  "Billing options"
// @Success      201      {object}  SubscribeResult
// @Failure      400      {object}  gin.H
// @Failure      402      {object}  gin.H
// @Failure      404      {object}  gin.H
// @Failure      409      {object}  gin.H
// @Router       /api/subscriptions/subscribe/{planID} [post]
func (h *Handler) Subscribe(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	planID, err := strconv.Atoi(c.Param("planID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid plan ID"})
		return
	}

	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BindingError(c, err)
		return
	}

	result, err := h.service.Subscribe(c.Request.Context(), userID, planID, req, c.ClientIP())
	if err != nil {
		switch {
		case errors.Is(err, ErrPlanNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Plan not found"})
		case errors.Is(err, ErrActiveSubscriptionExists):
			c.JSON(http.StatusConflict, gin.H{"error": "User already has an active subscription"})
		case errors.Is(err, ErrYearlyUnavailable):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Yearly pricing not available for this plan"})
		case errors.Is(err, ErrPaymentFailed):
			c.JSON(http.StatusPaymentRequired, gin.H{"error": "Payment failed"})
		case errors.Is(err, coupon.ErrCouponNotFound),
			errors.Is(err, coupon.ErrCouponNotActive),
			errors.Is(err, coupon.ErrCouponExhausted),
			errors.Is(err, coupon.ErrUserLimitReached),
			errors.Is(err, coupon.ErrBelowMinPurchase):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create subscription"})
		}
		return
	}

	c.JSON(http.StatusCreated, result)
}

// Cancel godoc
// @Summary      Cancel the current subscription
// @Description  Access remains until the paid period ends.
// @Tags         subscriptions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CancelRequest  true  "Cancellation reason"
// @Success      200      {object}  gin.H
// @Failure      404      {object}  gin.H
// @Router       /api/subscriptions/cancel [post]
func (h *Handler) Cancel(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BindingError(c, err)
		return
	}

	sub, err := h.service.Cancel(c.Request.Context(), userID, req.Reason, c.ClientIP())
	if err != nil {
		if errors.Is(err, ErrNoActiveSubscription) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No active subscription found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel subscription"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Subscription cancelled successfully",
		"access_until": sub.EndDate,
	})
}

// Renew godoc
// @Summary      Renew the subscription
// @Description  Extends from the current end date; a cancelled subscription
// @Description  reactivates.
// @Tags         subscriptions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      RenewRequest  true  "Payment method"
// @Success      200      {object}  gin.H
// @Failure      402      {object}  gin.H
// @Failure      404      {object}  gin.H
// @Router       /api/subscriptions/renew [post]
func (h *Handler) Renew(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req RenewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BindingError(c, err)
		return
	}

	sub, pay, err := h.service.Renew(c.Request.Context(), userID, req.PaymentMethod, c.ClientIP())
	if err != nil {
		switch {
		case errors.Is(err, ErrNoActiveSubscription):
			c.JSON(http.StatusNotFound, gin.H{"error": "No subscription found"})
		case errors.Is(err, ErrPaymentFailed):
			c.JSON(http.StatusPaymentRequired, gin.H{"error": "Payment failed"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to renew subscription"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":           "Subscription renewed successfully",
		"new_end_date":      sub.EndDate,
		"amount_paid_cents": pay.AmountCents,
	})
}

// Limits godoc
// @Summary      Get check-in limits for the current plan
// @Tags         subscriptions
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  Limits
// @Failure      500  {object}  gin.H
// @Router       /api/subscriptions/limits [get]
func (h *Handler) Limits(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	limits, err := h.service.Limits(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch limits"})
		return
	}

	c.JSON(http.StatusOK, limits)
}

// PaymentHistory godoc
// @Summary      List the user's payments
// @Tags         subscriptions
// @Security     BearerAuth
// @Produce      json
// @Param        limit  query     int  false  "Max results"
// @Success      200    {object}  gin.H
// @Failure      500    {object}  gin.H
// @Router       /api/subscriptions/payment-history [get]
func (h *Handler) PaymentHistory(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	payments, err := h.service.PaymentHistory(c.Request.Context(), userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch payment history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"payments": payments})
}
