package middleware

import (
	"net/http"
	"strings"

	"church-service/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleAdmin   = "admin"
	RoleFinance = "finance"
)

type Claims struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Auth validates the bearer token and stores its claims on the context.
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				common.NewErrorResponse("Authorization token required", nil, http.StatusUnauthorized))
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				common.NewErrorResponse("Invalid or expired token", nil, http.StatusUnauthorized))
			return
		}

		c.Set("claims", claims)
		c.Next()
	}
}

// RequireRole gates a route on the token's role claim. Admin passes every
// gate.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, ok := c.Get("claims")
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				common.NewErrorResponse("Authorization token required", nil, http.StatusUnauthorized))
			return
		}
		claims := value.(*Claims)
		if claims.Role != role && claims.Role != RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden,
				common.NewErrorResponse("Insufficient permissions", nil, http.StatusForbidden))
			return
		}
		c.Next()
	}
}
