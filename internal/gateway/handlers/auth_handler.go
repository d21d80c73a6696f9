package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"invoice-console/internal/gateway/middleware"
)

type AuthHTTPHandler struct {
	revoker middleware.Revoker
}

func NewAuthHTTPHandler(revoker middleware.Revoker) *AuthHTTPHandler {
	return &AuthHTTPHandler{revoker: revoker}
}

type SessionInfo struct {
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *AuthHTTPHandler) GetSession(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("Not signed in"))
		return
	}
	info := SessionInfo{Email: claims.Email, Name: claims.Name}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	c.JSON(http.StatusOK, successResponse("Session retrieved successfully", info))
}

// Logout revokes the presented token until it would have expired.
func (h *AuthHTTPHandler) Logout(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("Not signed in"))
		return
	}
	until := time.Now().Add(24 * time.Hour)
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), readTimeout)
	defer cancel()

	if err := h.revoker.Revoke(ctx, claims.ID, until); err != nil {
		log.Printf("Failed to revoke token for %s: %v", claims.Email, err)
		c.JSON(http.StatusServiceUnavailable, errorResponse("Failed to sign out"))
		return
	}
	c.JSON(http.StatusOK, successResponse("Signed out", nil))
}
