package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hanjob/resume-api/pkg/jwt"
)

const (
	// DraftSessionCookieName is the name of the session cookie
	DraftSessionCookieName = "resume_draft"

	// DraftIDContextKey is the key used to store the draft id in context
	DraftIDContextKey = "draft_id"
)

// ErrSessionNotFound is returned when no draft id was put in the context.
var ErrSessionNotFound = errors.New("session not found in context")

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Domain     string
	Secure     bool
	TTLSeconds int
}

// DraftSessionMiddleware reads the draft token from the session cookie or an
// "Authorization: Bearer" header and puts the draft id in the context.
func DraftSessionMiddleware(tokenManager *jwt.TokenManager, cookie CookieConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			token, _ = c.Cookie(DraftSessionCookieName)
		}
		if token == "" {
			_ = c.Error(fmt.Errorf("missing draft session token")) //nolint:errcheck
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		claims, err := tokenManager.ValidateToken(token)
		if err != nil {
			_ = c.Error(fmt.Errorf("invalid draft session token: %w", err)) //nolint:errcheck
			ClearSessionCookie(c, cookie)

			if errors.Is(err, jwt.ErrExpiredToken) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired"})
			} else {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			}
			c.Abort()
			return
		}

		c.Set(DraftIDContextKey, claims.DraftID)
		c.Next()
	}
}

// GetDraftID extracts the draft id from context
func GetDraftID(c *gin.Context) (string, error) {
	val, exists := c.Get(DraftIDContextKey)
	if !exists {
		return "", ErrSessionNotFound
	}
	id, ok := val.(string)
	if !ok || id == "" {
		return "", ErrSessionNotFound
	}
	return id, nil
}

// SetSessionCookie sets the draft session cookie
func SetSessionCookie(c *gin.Context, token string, cookie CookieConfig) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(DraftSessionCookieName, token, cookie.TTLSeconds, "/", cookie.Domain, cookie.Secure, true)
}

// ClearSessionCookie clears the draft session cookie
func ClearSessionCookie(c *gin.Context, cookie CookieConfig) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(DraftSessionCookieName, "", -1, "/", cookie.Domain, cookie.Secure, true)
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
