package middleware

import (
	"net/http"
	"strings"

	"backoffice/internal/apiclient"
	"backoffice/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	sessionKey = "session"
	roleKey    = "userRole"
)

// Session builds the explicit auth context of the request from the auth
// cookie (or a Bearer header for non-browser callers). Requests without a
// token are turned away before any handler runs. With a non-empty secret the
// token's HMAC signature is checked and a bad one is treated like no token.
// When the session ends up Anonymous, because the token expired or the remote
// API answered 401, the cookie is cleared on the way out.
func Session(cookieName string, secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, fromCookie := bearerToken(c, cookieName)
		sess, err := newSession(token, secret)
		if err != nil {
			utils.Logger().WithError(err).WithField("request_id", GetRequestID(c)).Warn("rejected token")
		}
		if err != nil || sess.State() != apiclient.Authenticated {
			if fromCookie {
				clearCookie(c, cookieName)
			}
			RejectAnonymous(c)
			return
		}

		c.Set(sessionKey, sess)
		c.Set(roleKey, sess.Role())

		if fromCookie {
			sess.OnLogout(func() { clearCookie(c, cookieName) })
		}
		c.Next()
	}
}

func newSession(token string, secret []byte) (*apiclient.Session, error) {
	if len(secret) == 0 {
		return apiclient.NewSession(token), nil
	}
	return apiclient.NewVerifiedSession(token, secret)
}

// RequireVerified guards routes served from the gateway's own data: only
// sessions whose token signature was checked get through.
func RequireVerified() gin.HandlerFunc {
	return func(c *gin.Context) {
		if sess := GetSession(c); sess == nil || !sess.Verified() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":      "forbidden",
				"code":       "verification_required",
				"message":    "this endpoint needs JWT_SECRET to be configured",
				"request_id": GetRequestID(c),
			})
			return
		}
		c.Next()
	}
}

// GetSession returns the request's session, or nil outside the Session middleware.
func GetSession(c *gin.Context) *apiclient.Session {
	if v, ok := c.Get(sessionKey); ok {
		if s, ok := v.(*apiclient.Session); ok {
			return s
		}
	}
	return nil
}

// RejectAnonymous ends a request whose session is gone: browsers navigating
// to a page are sent back to the root, API callers get a JSON logout signal.
func RejectAnonymous(c *gin.Context) {
	if c.Request.Method == http.MethodGet && strings.Contains(c.GetHeader("Accept"), "text/html") {
		c.Redirect(http.StatusFound, "/")
		c.Abort()
		return
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":      "unauthorized",
		"code":       "unauthorized",
		"message":    "your session has ended, please sign in again",
		"logout":     true,
		"request_id": GetRequestID(c),
	})
}

func bearerToken(c *gin.Context, cookieName string) (string, bool) {
	if v, err := c.Cookie(cookieName); err == nil && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v), true
	}
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:]), false
	}
	return "", false
}

func clearCookie(c *gin.Context, name string) {
	if c.Writer.Written() {
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, "", -1, "/", "", false, false)
}
