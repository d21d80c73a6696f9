package middleware

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"invoice-console/internal/utils"
)

const (
	ContextClaims = "claims"
	ContextToken  = "token"
)

// JWTAuth requires a valid, unrevoked bearer token. The raw token is kept in
// the context because the upstream invoice API is called with it.
func JWTAuth(secret []byte, revoker Revoker) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenStr := strings.TrimPrefix(header, "Bearer ")
		if header == "" || tokenStr == header || tokenStr == "" {
			unauthorized(c, "Missing bearer token")
			return
		}

		claims, err := utils.ParseToken(secret, tokenStr)
		if err != nil {
			unauthorized(c, "Invalid or expired token")
			return
		}

		if revoker != nil && claims.ID != "" {
			revoked, err := revoker.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				log.Printf("Failed to check token revocation: %v", err)
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
					"success": false,
					"message": "Authentication backend unavailable",
				})
				return
			}
			if revoked {
				unauthorized(c, "Token has been revoked")
				return
			}
		}

		c.Set(ContextClaims, claims)
		c.Set(ContextToken, tokenStr)
		c.Next()
	}
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": message,
	})
}

// ClaimsFrom returns the claims set by JWTAuth.
func ClaimsFrom(c *gin.Context) (*utils.Claims, bool) {
	v, ok := c.Get(ContextClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*utils.Claims)
	return claims, ok
}
