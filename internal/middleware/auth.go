package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"launchkit-backend-go/internal/auth"
)

// ErrorResponse mirrors api.ErrorResponse to avoid an import cycle.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Gin context keys set by the auth middleware.
const (
	ContextUserIDKey    = "userID"
	ContextUserEmailKey = "userEmail"
)

// TokenVerifier validates a bearer token.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// AuthMiddleware authenticates requests with identity provider session tokens.
type AuthMiddleware struct {
	verifier TokenVerifier
	logger   *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware instance.
func NewAuthMiddleware(verifier TokenVerifier, logger *zap.Logger) *AuthMiddleware {
	if verifier == nil {
		panic("AuthMiddleware requires a token verifier")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{verifier: verifier, logger: logger}
}

// RequireAuth rejects requests without a valid bearer token.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Authorization header is required"})
			return
		}
		if !m.authenticate(c, header) {
			return
		}
		c.Next()
	}
}

// OptionalAuth lets anonymous requests through. A header that is present but invalid is
// still rejected with 401.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}
		if !m.authenticate(c, header) {
			return
		}
		c.Next()
	}
}

func (m *AuthMiddleware) authenticate(c *gin.Context, header string) bool {
	token, ok := auth.ExtractBearerToken(header)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Authorization header format must be 'Bearer {token}'"})
		return false
	}

	claims, err := m.verifier.Verify(token)
	if err != nil {
		m.logger.Info("Session token rejected", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid or expired authentication token"})
		return false
	}

	c.Set(ContextUserIDKey, claims.Subject)
	if claims.Email != "" {
		c.Set(ContextUserEmailKey, claims.Email)
	}
	c.Request = c.Request.WithContext(auth.WithClaims(c.Request.Context(), claims))
	return true
}

// UserID returns the authenticated user's ID, or "" for anonymous requests.
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserIDKey)
}

// UserEmail returns the email claim of the session token when present.
func UserEmail(c *gin.Context) string {
	return c.GetString(ContextUserEmailKey)
}
