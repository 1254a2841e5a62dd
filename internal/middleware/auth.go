package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthGuard verifies the bearer token and, when roles are given, requires
// the token's role to match one of them.
func AuthGuard(secret string, allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsFromHeader(c, secret)
		if !ok {
			return
		}

		role, _ := claims["role"].(string)
		if len(allowedRoles) > 0 && !roleAllowed(role, allowedRoles) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "forbidden",
			})
			return
		}

		c.Set("claims", claims)
		if userID, _ := claims["userId"].(string); userID != "" {
			c.Set("userId", userID)
		}
		c.Next()
	}
}

// StaffAuth guards the operator endpoints: booking status changes, real
// price entry, order administration.
func StaffAuth(secret string) gin.HandlerFunc {
	return AuthGuard(secret, "staff", "admin")
}

// UserAuth only requires a valid token, attaching the user id for
// customer-facing endpoints.
func UserAuth(secret string) gin.HandlerFunc {
	return AuthGuard(secret)
}

func roleAllowed(role string, allowedRoles []string) bool {
	for _, allowed := range allowedRoles {
		if role == allowed {
			return true
		}
	}
	return false
}

func claimsFromHeader(c *gin.Context, secret string) (jwt.MapClaims, bool) {
	rejected := func(status int, message string) (jwt.MapClaims, bool) {
		c.AbortWithStatusJSON(status, gin.H{
			"success": false,
			"message": message,
		})
		return nil, false
	}

	raw := strings.TrimSpace(c.GetHeader("Authorization"))
	if raw == "" {
		return rejected(http.StatusUnauthorized, "missing token")
	}

	parts := strings.Split(raw, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return rejected(http.StatusUnauthorized, "invalid token")
	}

	token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return rejected(http.StatusUnauthorized, "unauthorized")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return rejected(http.StatusUnauthorized, "unauthorized")
	}
	return claims, true
}
