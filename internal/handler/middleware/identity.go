package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"commerce-core/internal/domain/order"
	"commerce-core/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ctxUserIDKey  = "user_id"
	ctxGuestIDKey = "guest_id"

	guestIDHeader = "X-Guest-ID"

	// guest ids are client-generated; bound to keep them out of index bloat
	maxGuestIDLen = 64
)

// IdentityMiddleware resolves who is shopping: a signed-in user (Bearer
// token) or a guest (X-Guest-ID header). Checkout is open to both, so an
// absent token is not an error by itself.
type IdentityMiddleware struct {
	tokens *jwt.Manager
}

func NewIdentityMiddleware(tokens *jwt.Manager) *IdentityMiddleware {
	return &IdentityMiddleware{tokens: tokens}
}

// RequireShopper accepts a valid token or a guest id; a present-but-invalid
// token is rejected rather than silently downgraded to guest.
func (m *IdentityMiddleware) RequireShopper() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token != "" {
			userID, err := m.tokens.Validate(token)
			if err != nil {
				slog.Warn("token validation failed", "error", err.Error())
				c.JSON(http.StatusUnauthorized, gin.H{
					"error": "Invalid or expired token",
				})
				c.Abort()
				return
			}
			c.Set(ctxUserIDKey, userID)
			c.Next()
			return
		}

		guestID := strings.TrimSpace(c.GetHeader(guestIDHeader))
		if guestID == "" || len(guestID) > maxGuestIDLen {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication or guest id required",
			})
			c.Abort()
			return
		}
		c.Set(ctxGuestIDKey, guestID)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(authHeader[len("Bearer "):])
}

func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(ctxUserIDKey)
	if !exists {
		return uuid.Nil, false
	}

	id, ok := userID.(uuid.UUID)
	return id, ok
}

// GetOwner returns the resolved shopper identity; ok is false when
// RequireShopper did not run.
func GetOwner(c *gin.Context) (order.Owner, bool) {
	if userID, ok := GetUserID(c); ok {
		return order.NewUserOwner(userID), true
	}
	if guestID, exists := c.Get(ctxGuestIDKey); exists {
		if id, ok := guestID.(string); ok {
			return order.NewGuestOwner(id), true
		}
	}
	return order.Owner{}, false
}
