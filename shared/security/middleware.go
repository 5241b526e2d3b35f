package security

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"medicare-backend/models"
	"medicare-backend/shared/apperr"
)

const currentUserKey = "current_user"

// UserLoader resolves the token subject to a stored user.
type UserLoader interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// CurrentUser returns the user stored by AuthMiddleware.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*models.User)
	return u, ok && u != nil
}

// AuthMiddleware creates a Gin middleware for JWT authentication
func AuthMiddleware(tokens *TokenManager, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			SendError(c, http.StatusUnauthorized, CodeMissingToken, "Authentication required",
				"Please provide a valid authorization token in the request header", nil)
			c.Abort()
			return
		}

		tokenStr, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenStr == "" {
			SendError(c, http.StatusUnauthorized, CodeInvalidTokenFormat, "Invalid token format",
				"Authorization header must use the Bearer scheme", nil)
			c.Abort()
			return
		}

		claims, err := tokens.ParseAccess(tokenStr)
		if err != nil {
			SendError(c, http.StatusUnauthorized, CodeInvalidToken, "Invalid or expired token",
				"The provided token is invalid, expired, or malformed. Please login again to get a new token", nil)
			c.Abort()
			return
		}

		userID, _ := claims.UserID()
		user, err := users.GetByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				SendError(c, http.StatusUnauthorized, CodeUserNotFoundOrInactive, "User account not found",
					"Your account no longer exists. Please contact support", nil)
			} else {
				zerolog.Ctx(c.Request.Context()).Error().Err(err).Int64("user_id", userID).Msg("auth user lookup failed")
				SendError(c, http.StatusInternalServerError, CodeAuthVerificationError, "Authentication verification failed",
					"Unable to verify user status. Please try again later", nil)
			}
			c.Abort()
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

// RequireRole creates a Gin middleware for role-based access control.
// Admins pass every role check.
func RequireRole(expectedRoles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			SendError(c, http.StatusUnauthorized, CodeUserNotAuthenticated, "User not authenticated",
				"User authentication is required to access this resource", nil)
			c.Abort()
			return
		}

		if user.IsAdmin() {
			c.Next()
			return
		}
		for _, expected := range expectedRoles {
			if user.Role == expected {
				c.Next()
				return
			}
		}

		names := make([]string, len(expectedRoles))
		for i, r := range expectedRoles {
			names[i] = string(r)
		}
		var roleList string
		switch len(names) {
		case 1:
			roleList = names[0]
		case 2:
			roleList = names[0] + " or " + names[1]
		default:
			roleList = strings.Join(names[:len(names)-1], ", ") + ", or " + names[len(names)-1]
		}

		SendError(c, http.StatusForbidden, CodeInsufficientPermissions, "Insufficient permissions",
			"Access denied. This resource requires "+roleList+" role. Your current role: "+string(user.Role),
			gin.H{
				"required_roles": names,
				"user_role":      user.Role,
			})
		c.Abort()
	}
}

// CORSMiddleware allows the configured origins, or reflects any origin when
// none are configured. Credentials are always allowed.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization", "X-Requested-With", "Accept", "Origin", "Cache-Control"},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	}
	if len(allowedOrigins) == 0 {
		cfg.AllowOriginFunc = func(origin string) bool { return true }
	} else {
		cfg.AllowOrigins = allowedOrigins
	}
	return cors.New(cfg)
}

// RequestLogger attaches logger to the request context and writes one line
// per request.
func RequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context()))

		c.Next()

		status := c.Writer.Status()
		var event *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			event = logger.Error()
		case status >= http.StatusBadRequest:
			event = logger.Warn()
		default:
			event = logger.Info()
		}
		if user, ok := CurrentUser(c); ok {
			event = event.Int64("user_id", user.ID)
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("request")
	}
}
