package middleware

import (
	"context"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys set by the auth middlewares.
const (
	ContextUserID    = "userID"
	ContextUserEmail = "userEmail"
)

// ErrorResponse mirrors api.ErrorResponse; it is redefined here to avoid an import cycle.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// TokenVerifier verifies Firebase ID tokens. *auth.Client satisfies it.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// AuthMiddleware verifies the bearer token on every request and stores the caller's UID
// and email in the gin context.
func AuthMiddleware(verifier TokenVerifier, logger *zap.Logger) gin.HandlerFunc {
	if verifier == nil {
		panic("AuthMiddleware requires a non-nil TokenVerifier")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Authorization header is required"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Authorization header format must be 'Bearer {token}'"})
			return
		}

		token, err := verifier.VerifyIDToken(c.Request.Context(), parts[1])
		if err != nil {
			logger.Warn("Rejected Firebase ID token", zap.String("path", c.Request.URL.Path), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid or expired authentication token"})
			return
		}

		c.Set(ContextUserID, token.UID)
		if email, ok := token.Claims["email"].(string); ok {
			c.Set(ContextUserEmail, email)
		}
		c.Next()
	}
}

// LocalAuthMiddleware trusts the X-USERID and X-USER-EMAIL headers. It is only installed
// for the in-memory backend, where no Firebase project exists to verify tokens.
func LocalAuthMiddleware(defaultUserID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.GetHeader("X-USERID")
		if uid == "" {
			uid = defaultUserID
		}
		c.Set(ContextUserID, uid)
		if email := c.GetHeader("X-USER-EMAIL"); email != "" {
			c.Set(ContextUserEmail, email)
		} else {
			c.Set(ContextUserEmail, uid+"@localhost")
		}
		c.Next()
	}
}
