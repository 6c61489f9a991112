package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"trading-portal-backend/internal/common/config"
	"trading-portal-backend/internal/common/logger"
	"trading-portal-backend/internal/common/middleware"
	"trading-portal-backend/internal/features/auth/models"
	"trading-portal-backend/internal/features/auth/service"
)

type AuthHandler struct {
	service service.AuthService
	config  *config.Config
}

func NewAuthHandler(service service.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		service: service,
		config:  cfg,
	}
}

func (h *AuthHandler) RegisterRoutes(api, auth *gin.RouterGroup) {
	api.POST("/register", h.register)
	api.POST("/signin", h.signin)
	api.POST("/signout", h.signout)

	auth.POST("/google", h.googleSignin)

	profile := api.Group("")
	profile.Use(middleware.RequireAuth())
	{
		profile.POST("/update-name", h.updateName)
	}
}

func (h *AuthHandler) register(c *gin.Context) {
	var input models.RegisterRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Email and password are required"})
		return
	}

	user, token, err := h.service.Register(c.Request.Context(), &input)
	if err != nil {
		if err == service.ErrEmailTaken {
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	h.setSessionCookie(c, token)
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"user":     user,
		"redirect": "/account-selector",
	})
}

func (h *AuthHandler) signin(c *gin.Context) {
	var input models.SigninRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Email and password are required"})
		return
	}

	user, token, err := h.service.SignIn(c.Request.Context(), &input)
	if err != nil {
		// Не различаем неизвестный email и неверный пароль
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": service.ErrInvalidCredentials.Error()})
		return
	}

	h.setSessionCookie(c, token)
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"user":     user,
		"redirect": "/my-accounts",
	})
}

func (h *AuthHandler) googleSignin(c *gin.Context) {
	var input models.GoogleSigninRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Credential is required"})
		return
	}

	user, token, err := h.service.SignInWithGoogle(c.Request.Context(), input.Credential)
	if err != nil {
		// Сбой провайдера не валит процесс: логируем и отправляем на страницу входа
		logger.Error().Err(err).Msg("Google sign-in failed")
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "redirect": "/signin"})
		return
	}

	h.setSessionCookie(c, token)
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"user":     user,
		"redirect": "/my-accounts",
	})
}

func (h *AuthHandler) signout(c *gin.Context) {
	token, err := c.Cookie(h.config.Session.CookieName)
	if err == nil && token != "" {
		if err := h.service.SignOut(c.Request.Context(), token); err != nil {
			logger.Warn().Err(err).Msg("Failed to destroy session")
		}
	}

	c.SetCookie(h.config.Session.CookieName, "", -1, "/", "", h.config.Session.Secure, true)
	c.JSON(http.StatusOK, gin.H{"success": true, "redirect": "/signin"})
}

func (h *AuthHandler) updateName(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var input models.UpdateNameRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Name is required"})
		return
	}

	if err := h.service.UpdateName(c.Request.Context(), user.ID, input.Name); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	maxAge := int(h.config.Session.TTL.Seconds())
	c.SetCookie(h.config.Session.CookieName, token, maxAge, "/", "", h.config.Session.Secure, true)
}
