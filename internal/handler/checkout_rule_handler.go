package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hostelworks/hostel-core-api/internal/models"
	"github.com/hostelworks/hostel-core-api/internal/service"
	appErrors "github.com/hostelworks/hostel-core-api/pkg/errors"
	"github.com/hostelworks/hostel-core-api/pkg/response"
)

type checkoutRuleService interface {
	Create(ctx context.Context, req service.CreateRuleRequest) (*models.CheckoutRule, error)
	Activate(ctx context.Context, ruleID string) (*models.CheckoutRule, error)
	Deactivate(ctx context.Context, ruleID string) (*models.CheckoutRule, error)
	Delete(ctx context.Context, ruleID string) error
	ResolveActive(ctx context.Context, personID string, category models.PersonCategory) (*models.CheckoutRule, error)
	ListByPerson(ctx context.Context, personID string, category models.PersonCategory) ([]models.CheckoutRule, error)
}

// CheckoutRuleHandler wires the rule registry to HTTP endpoints.
type CheckoutRuleHandler struct {
	service checkoutRuleService
}

// NewCheckoutRuleHandler constructs the handler.
func NewCheckoutRuleHandler(service checkoutRuleService) *CheckoutRuleHandler {
	return &CheckoutRuleHandler{service: service}
}

// Create godoc
// @Summary Create a checkout deduction rule
// @Tags CheckoutRules
// @Accept json
// @Produce json
// @Param payload body service.CreateRuleRequest true "Rule payload"
// @Success 201 {object} response.Envelope
// @Router /checkout-rules [post]
func (h *CheckoutRuleHandler) Create(c *gin.Context) {
	var req service.CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	rule, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, rule)
}

// Activate godoc
// @Summary Activate a checkout rule
// @Tags CheckoutRules
// @Produce json
// @Param id path string true "Rule ID"
// @Success 200 {object} response.Envelope
// @Router /checkout-rules/{id}/activate [post]
func (h *CheckoutRuleHandler) Activate(c *gin.Context) {
	rule, err := h.service.Activate(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rule, nil)
}

// Deactivate godoc
// @Summary Deactivate a checkout rule
// @Tags CheckoutRules
// @Produce json
// @Param id path string true "Rule ID"
// @Success 200 {object} response.Envelope
// @Router /checkout-rules/{id}/deactivate [post]
func (h *CheckoutRuleHandler) Deactivate(c *gin.Context) {
	rule, err := h.service.Deactivate(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rule, nil)
}

// Delete godoc
// @Summary Delete a checkout rule without ledger history
// @Tags CheckoutRules
// @Produce json
// @Param id path string true "Rule ID"
// @Success 204
// @Router /checkout-rules/{id} [delete]
func (h *CheckoutRuleHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// personScope reads the person_id + category query pair shared by the rule
// read endpoints.
func personScope(c *gin.Context) (string, models.PersonCategory, bool) {
	personID := strings.TrimSpace(c.Query("person_id"))
	if personID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "person_id is required"))
		return "", "", false
	}
	category := models.PersonCategory(strings.ToLower(strings.TrimSpace(c.Query("category"))))
	if !category.Valid() {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "category must be resident or staff"))
		return "", "", false
	}
	return personID, category, true
}

// Active godoc
// @Summary Resolve the active rule for a person
// @Tags CheckoutRules
// @Produce json
// @Param person_id query string true "Person ID"
// @Param category query string true "Person category (resident|staff)"
// @Success 200 {object} response.Envelope
// @Router /checkout-rules/active [get]
func (h *CheckoutRuleHandler) Active(c *gin.Context) {
	personID, category, ok := personScope(c)
	if !ok {
		return
	}
	rule, err := h.service.ResolveActive(c.Request.Context(), personID, category)
	if err != nil {
		response.Error(c, err)
		return
	}
	// A person with no active rule is a valid answer, not an error.
	payload := gin.H{"has_active_rule": rule != nil}
	if rule != nil {
		payload["rule"] = rule
	}
	response.JSON(c, http.StatusOK, payload, nil)
}

// List godoc
// @Summary List all rules for a person
// @Tags CheckoutRules
// @Produce json
// @Param person_id query string true "Person ID"
// @Param category query string true "Person category (resident|staff)"
// @Success 200 {object} response.Envelope
// @Router /checkout-rules [get]
func (h *CheckoutRuleHandler) List(c *gin.Context) {
	personID, category, ok := personScope(c)
	if !ok {
		return
	}
	rules, err := h.service.ListByPerson(c.Request.Context(), personID, category)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rules, nil)
}
