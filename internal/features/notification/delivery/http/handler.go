package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"trading-portal-backend/internal/common/middleware"
	"trading-portal-backend/internal/common/validation"
	"trading-portal-backend/internal/features/notification/models"
	"trading-portal-backend/internal/features/notification/service"
)

type NotificationHandler struct {
	service service.NotificationService
}

func NewNotificationHandler(service service.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

func (h *NotificationHandler) RegisterRoutes(api *gin.RouterGroup) {
	user := api.Group("/user")
	user.Use(middleware.RequireAuth())
	{
		user.GET("/notifications", h.listForUser)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	{
		admin.GET("/notifications", h.listAdmin)
		admin.GET("/trading-password-notifications", h.listTradingPassword)
		admin.POST("/mark-password-notification-read/:id", h.markPasswordNotificationRead)
	}
}

func (h *NotificationHandler) listForUser(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	notifications, err := h.service.ListForUser(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "notifications": notifications})
}

func (h *NotificationHandler) listAdmin(c *gin.Context) {
	notifications, err := h.service.ListAdmin(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "notifications": notifications})
}

func (h *NotificationHandler) listTradingPassword(c *gin.Context) {
	notifications, err := h.service.ListAdminByType(c.Request.Context(), models.TypeTradingPasswordChanged)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "notifications": notifications})
}

func (h *NotificationHandler) markPasswordNotificationRead(c *gin.Context) {
	id := c.Param("id")
	if err := validation.ValidateID(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Notification not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
