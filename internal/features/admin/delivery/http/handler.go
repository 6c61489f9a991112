package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"trading-portal-backend/internal/common/logger"
	"trading-portal-backend/internal/common/middleware"
	"trading-portal-backend/internal/common/validation"
	accountservice "trading-portal-backend/internal/features/account/service"
	authservice "trading-portal-backend/internal/features/auth/service"
)

// AdminHandler: тонкая консоль поверх пользовательских и счетовых операций
type AdminHandler struct {
	auth     authservice.AuthService
	accounts accountservice.AccountService
}

func NewAdminHandler(auth authservice.AuthService, accounts accountservice.AccountService) *AdminHandler {
	return &AdminHandler{
		auth:     auth,
		accounts: accounts,
	}
}

func (h *AdminHandler) RegisterRoutes(api *gin.RouterGroup) {
	admin := api.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	{
		admin.GET("/users", h.listUsers)
		admin.DELETE("/delete-user/:id", h.deleteUser)
		admin.GET("/users-no-account-type", h.usersWithoutAccounts)
	}
}

func (h *AdminHandler) listUsers(c *gin.Context) {
	users, err := h.auth.ListUsers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load users"})
		return
	}

	result := make([]gin.H, 0, len(users))
	for _, user := range users {
		if user.IsAdmin {
			continue
		}

		accounts, err := h.accounts.ListByOwner(c.Request.Context(), user.ID)
		if err != nil {
			accounts = nil
		}

		result = append(result, gin.H{
			"user_id":    user.ID,
			"email":      user.Email,
			"name":       user.DisplayName(),
			"country":    user.Country,
			"created_at": user.CreatedAt,
			"accounts":   accounts,
		})
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "users": result})
}

// deleteUser удаляет пользователя и каскадом его счета;
// платежи и уведомления остаются в хранилище
func (h *AdminHandler) deleteUser(c *gin.Context) {
	id := c.Param("id")
	if err := validation.ValidateID(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	deleted, err := h.accounts.DeleteByOwner(c.Request.Context(), id)
	if err != nil {
		logger.Error().Err(err).Str("user_id", id).Msg("Failed to cascade account deletion")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to delete user accounts"})
		return
	}

	if err := h.auth.DeleteUser(c.Request.Context(), id); err != nil {
		if err == authservice.ErrUserNotFound {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to delete user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "accounts_deleted": deleted})
}

func (h *AdminHandler) usersWithoutAccounts(c *gin.Context) {
	users, err := h.auth.ListUsers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load users"})
		return
	}

	result := make([]gin.H, 0)
	for _, user := range users {
		if user.IsAdmin {
			continue
		}

		accounts, err := h.accounts.ListByOwner(c.Request.Context(), user.ID)
		if err != nil {
			continue
		}
		if len(accounts) > 0 {
			continue
		}

		result = append(result, gin.H{
			"user_id": user.ID,
			"email":   user.Email,
			"name":    user.DisplayName(),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(result),
		"users":   result,
	})
}
