package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	apperrors "github.com/yourusername/quiz-api/internal/pkg/errors"
	"github.com/yourusername/quiz-api/pkg/auth"
)

// Ключи контекста, которые выставляет RequireAuth
const (
	ContextUserID   = "user_id"
	ContextUsername = "username"
	ContextIsStaff  = "is_staff"
)

// TokenParser проверяет токен доступа (реализуется auth.JWTService)
type TokenParser interface {
	ParseToken(ctx context.Context, tokenString string) (*auth.JWTCustomClaims, error)
}

// AuthMiddleware обеспечивает аутентификацию для защищенных маршрутов
type AuthMiddleware struct {
	tokens TokenParser
}

// NewAuthMiddleware создает новый middleware
func NewAuthMiddleware(tokens TokenParser) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// extractToken берет токен из заголовка Authorization или, для upgrade-запросов
// websocket, из query-параметра token
func extractToken(c *gin.Context) (string, string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if token := c.Query("token"); token != "" {
			return token, ""
		}
		return "", "token_missing"
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", "token_format"
	}
	return parts[1], ""
}

func (m *AuthMiddleware) authenticate(c *gin.Context) (*auth.JWTCustomClaims, string) {
	token, errType := extractToken(c)
	if errType != "" {
		return nil, errType
	}
	claims, err := m.tokens.ParseToken(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, apperrors.ErrExpiredToken) {
			return nil, "token_expired"
		}
		return nil, "token_invalid"
	}
	return claims, ""
}

func setIdentity(c *gin.Context, claims *auth.JWTCustomClaims) {
	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextUsername, claims.Username)
	c.Set(ContextIsStaff, claims.IsStaff)
}

// RequireAuth проверяет, аутентифицирован ли пользователь
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, errType := m.authenticate(c)
		if errType != "" {
			message := "Invalid or expired token"
			switch errType {
			case "token_missing":
				message = "Authentication credentials were not provided"
			case "token_format":
				message = "Authorization header format must be Bearer {token}"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message, "error_type": errType})
			return
		}
		setIdentity(c, claims)
		c.Next()
	}
}

// OptionalAuth выставляет личность пользователя, если токен передан и валиден,
// и пропускает анонимные запросы
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, errType := m.authenticate(c); errType == "" {
			setIdentity(c, claims)
		}
		c.Next()
	}
}

// RequireStaff пропускает только сотрудников. Применяется после RequireAuth.
func (m *AuthMiddleware) RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(ContextUserID); !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "error_type": "token_missing"})
			return
		}
		if !IsStaff(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You do not have permission to perform this action", "error_type": "forbidden"})
			return
		}
		c.Next()
	}
}

// UserID возвращает ID аутентифицированного пользователя
func UserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get(ContextUserID)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// IsStaff сообщает, является ли пользователь сотрудником
func IsStaff(c *gin.Context) bool {
	return c.GetBool(ContextIsStaff)
}
