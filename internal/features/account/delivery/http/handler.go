package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"trading-portal-backend/internal/common/middleware"
	"trading-portal-backend/internal/common/validation"
	"trading-portal-backend/internal/features/account/models"
	"trading-portal-backend/internal/features/account/service"
)

type AccountHandler struct {
	service service.AccountService
}

func NewAccountHandler(service service.AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

func (h *AccountHandler) RegisterRoutes(api *gin.RouterGroup) {
	owner := api.Group("")
	owner.Use(middleware.RequireAuth())
	{
		owner.POST("/account-setup", h.accountSetup)
		owner.GET("/my-accounts", h.myAccounts)
		owner.POST("/account/change-trading-password/:id", h.changeTradingPassword)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	{
		admin.POST("/update-balance/:id", h.updateBalance)
		admin.POST("/set-mt-credentials/:id", h.setMTCredentials)
		admin.POST("/update-leverage/:id", h.updateLeverage)
	}
}

func (h *AccountHandler) accountSetup(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var input models.AccountSetupRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "All account fields are required"})
		return
	}

	account, err := h.service.Create(c.Request.Context(), user.ID, user.Email, user.DisplayName(), &input)
	if err != nil {
		if err == service.ErrAccountLimit {
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"account":  account,
		"redirect": "/my-accounts",
	})
}

func (h *AccountHandler) myAccounts(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	accounts, err := h.service.ListByOwner(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load accounts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "accounts": accounts})
}

func (h *AccountHandler) changeTradingPassword(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	id := c.Param("id")
	if err := validation.ValidateID(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	var input models.ChangeTradingPasswordRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Password is required"})
		return
	}

	if err := h.service.ChangeTradingPassword(c.Request.Context(), user.ID, user.Email, id, input.Password); err != nil {
		if err == service.ErrAccountNotFound || err == service.ErrNotOwner {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Account not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AccountHandler) updateBalance(c *gin.Context) {
	id := c.Param("id")
	if err := validation.ValidateID(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	var input models.UpdateBalanceRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Balance is required"})
		return
	}

	if err := h.service.UpdateBalance(c.Request.Context(), id, input.Balance); err != nil {
		if err == service.ErrAccountNotFound {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Account not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AccountHandler) setMTCredentials(c *gin.Context) {
	id := c.Param("id")
	if err := validation.ValidateID(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	var input models.SetMTCredentialsRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "MT login and server are required"})
		return
	}

	if err := h.service.SetMTCredentials(c.Request.Context(), id, input.MTLogin, input.MTServer); err != nil {
		if err == service.ErrAccountNotFound {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Account not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update credentials"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AccountHandler) updateLeverage(c *gin.Context) {
	id := c.Param("id")
	if err := validation.ValidateID(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	var input models.UpdateLeverageRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Leverage is required"})
		return
	}

	if err := h.service.UpdateLeverage(c.Request.Context(), id, input.Leverage); err != nil {
		if err == service.ErrAccountNotFound {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Account not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update leverage"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
