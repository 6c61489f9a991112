package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"trading-portal-backend/internal/common/config"
	"trading-portal-backend/internal/features/auth/models"
	"trading-portal-backend/internal/features/auth/service"
)

const ContextUserKey = "user"

// SessionAuth резолвит cookie сессии в документ пользователя.
// Невалидный или протухший токен не является ошибкой: cookie очищается,
// запрос продолжается как анонимный.
func SessionAuth(authService service.AuthService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cfg.Session.CookieName)
		if err != nil || token == "" {
			c.Next()
			return
		}

		user, err := authService.ResolveSession(c.Request.Context(), token)
		if err != nil {
			c.SetCookie(cfg.Session.CookieName, "", -1, "/", "", cfg.Session.Secure, true)
			c.Next()
			return
		}

		c.Set(ContextUserKey, user)
		c.Set("user_id", user.ID)
		c.Next()
	}
}

// RequireAuth пропускает только аутентифицированные запросы
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(ContextUserKey); !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
			return
		}

		c.Next()
	}
}

// RequireAdmin пропускает только администраторов;
// ответ единый "Unauthorized" без деталей
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok || !user.IsAdmin {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
			return
		}

		c.Next()
	}
}

// CurrentUser возвращает пользователя текущего запроса
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}

	user, ok := value.(*models.User)
	return user, ok
}
