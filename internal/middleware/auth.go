package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/auth"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/logger"

	"github.com/gin-gonic/gin"
)

const (
	clientIDKey = "client_id"
	adminIDKey  = "admin_id"
	claimsKey   = "claims"
)

// ContextWithClientID stores the authenticated client id for services and the logger.
func ContextWithClientID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, logger.ClientIDKey, id)
}

func ClientIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(logger.ClientIDKey).(int64)
	return id, ok
}

// ClientID returns the id set by ClientAuth or OptionalClientAuth.
func ClientID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(clientIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// ClientIDPtr is ClientID for optional authentication.
func ClientIDPtr(c *gin.Context) *int64 {
	if id, ok := ClientID(c); ok {
		return &id
	}
	return nil
}

func AdminID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(adminIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// Claims returns the verified token claims of the request.
func Claims(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(h, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

func parse(tokens *auth.TokenManager, c *gin.Context, role string) (*auth.Claims, int64, bool) {
	raw := bearerToken(c)
	if raw == "" {
		return nil, 0, false
	}
	claims, err := tokens.Parse(raw)
	if err != nil || claims.Role != role {
		return nil, 0, false
	}
	id, err := claims.UserID()
	if err != nil {
		return nil, 0, false
	}
	return claims, id, true
}

func setClient(c *gin.Context, claims *auth.Claims, id int64) {
	c.Set(claimsKey, claims)
	c.Set(clientIDKey, id)
	c.Request = c.Request.WithContext(ContextWithClientID(c.Request.Context(), id))
}

// ClientAuth requires a valid client token.
func ClientAuth(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, id, ok := parse(tokens, c, auth.RoleClient)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		setClient(c, claims, id)
		c.Next()
	}
}

// OptionalClientAuth identifies the client when a valid token is sent and lets guests through otherwise.
func OptionalClientAuth(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, id, ok := parse(tokens, c, auth.RoleClient); ok {
			setClient(c, claims, id)
		}
		c.Next()
	}
}

// AdminAuth requires a valid back-office token.
func AdminAuth(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, id, ok := parse(tokens, c, auth.RoleAdmin)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Set(claimsKey, claims)
		c.Set(adminIDKey, id)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), logger.AdminIDKey, id))
		c.Next()
	}
}

// RequirePermission must run after AdminAuth.
func RequirePermission(perm string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := Claims(c)
		if !ok || !claims.HasPermission(perm) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		c.Next()
	}
}
