package middleware

import (
	"log"
	"net/http"

	"caravan-share/services"
	"caravan-share/utils"

	"github.com/gin-gonic/gin"
)

const (
	// VisitorIDKey holds the visitor id in the gin context.
	VisitorIDKey = "visitorID"
	sessionKey   = "sessionStore"
)

// CookieOptions controls the visitor cookie.
type CookieOptions struct {
	Name   string
	Secure bool
	MaxAge int
}

// Session binds each request to its visitor's SessionStore, issuing a
// visitor cookie when the browser has none.
func Session(registry *services.SessionRegistry, opts CookieOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		visitorID, err := c.Cookie(opts.Name)
		if err != nil || !services.ValidVisitorID(visitorID) {
			visitorID = services.NewVisitorID()
			SetVisitorCookie(c, opts, visitorID)
		}

		store, err := registry.Acquire(c.Request.Context(), visitorID)
		if err != nil {
			log.Printf("session: acquire visitor store: %v", err)
			utils.JSONError(c, http.StatusInternalServerError, "session unavailable")
			c.Abort()
			return
		}

		c.Set(VisitorIDKey, visitorID)
		c.Set(sessionKey, store)
		c.Request = c.Request.WithContext(services.WithVisitorID(c.Request.Context(), visitorID))
		c.Next()
	}
}

// SetVisitorCookie writes the visitor cookie. HttpOnly always; Secure per opts.
func SetVisitorCookie(c *gin.Context, opts CookieOptions, visitorID string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(opts.Name, visitorID, opts.MaxAge, "/", "", opts.Secure, true)
}

// SessionFrom returns the store bound by Session. It panics when the
// middleware is not installed.
func SessionFrom(c *gin.Context) *services.SessionStore {
	return c.MustGet(sessionKey).(*services.SessionStore)
}

// VisitorFrom returns the visitor id bound by Session.
func VisitorFrom(c *gin.Context) string {
	return c.GetString(VisitorIDKey)
}
