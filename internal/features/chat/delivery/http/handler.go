package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"trading-portal-backend/internal/common/middleware"
	"trading-portal-backend/internal/common/validation"
	"trading-portal-backend/internal/features/chat/models"
	"trading-portal-backend/internal/features/chat/service"
)

type ChatHandler struct {
	service service.ChatService
}

func NewChatHandler(service service.ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

func (h *ChatHandler) RegisterRoutes(api *gin.RouterGroup) {
	chat := api.Group("/chat")

	user := chat.Group("")
	user.Use(middleware.RequireAuth())
	{
		user.POST("/user-send", h.userSend)
		user.GET("/user-messages", h.userMessages)
	}

	admin := chat.Group("")
	admin.Use(middleware.RequireAdmin())
	{
		admin.POST("/send", h.adminSend)
		admin.GET("/messages/:user_id", h.adminMessages)
		admin.GET("/unread-count", h.unreadCount)
	}
}

func (h *ChatHandler) userSend(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var input models.SendMessageRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Message is required"})
		return
	}

	message, err := h.service.SendFromUser(c.Request.Context(), user.ID, input.Message)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message_id": message.ID})
}

func (h *ChatHandler) userMessages(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	messages, err := h.service.UserMessages(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "messages": messages})
}

func (h *ChatHandler) adminSend(c *gin.Context) {
	admin, _ := middleware.CurrentUser(c)

	var input models.AdminSendMessageRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "User id and message are required"})
		return
	}
	if err := validation.ValidateID(input.UserID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	message, err := h.service.SendFromAdmin(c.Request.Context(), admin.ID, input.UserID, input.Message)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message_id": message.ID})
}

func (h *ChatHandler) adminMessages(c *gin.Context) {
	userID := c.Param("user_id")
	if err := validation.ValidateID(userID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	messages, err := h.service.AdminMessages(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "messages": messages})
}

func (h *ChatHandler) unreadCount(c *gin.Context) {
	users, err := h.service.UnreadUsers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load unread counts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"count":        len(users),
		"unread_users": users,
	})
}
