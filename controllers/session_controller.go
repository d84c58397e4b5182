package controllers

import (
	"net/http"

	"caravan-share/middleware"
	"caravan-share/services"
	"caravan-share/utils"

	"github.com/gin-gonic/gin"
)

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SessionController struct {
	Registry *services.SessionRegistry
	Cookie   middleware.CookieOptions
}

func NewSessionController(registry *services.SessionRegistry, cookie middleware.CookieOptions) *SessionController {
	return &SessionController{Registry: registry, Cookie: cookie}
}

// Me re-reads the identity from the backend.
func (ctrl *SessionController) Me(c *gin.Context) {
	store := middleware.SessionFrom(c)
	identity, err := store.CurrentIdentity(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to fetch user.")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{
		"authenticated": identity != nil,
		"user":          identity,
	})
}

func (ctrl *SessionController) Login(c *gin.Context) {
	var payload loginPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid payload")
		return
	}

	store := middleware.SessionFrom(c)
	identity, err := store.Login(c.Request.Context(), payload.Email, payload.Password)
	if err != nil {
		respondError(c, err, "Failed to log in.")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"authenticated": true, "user": identity})
}

// Logout clears the visitor's session and rotates the visitor cookie. An
// incomplete logout still succeeds but carries a warning.
func (ctrl *SessionController) Logout(c *gin.Context) {
	store := middleware.SessionFrom(c)
	err := store.Logout(c.Request.Context())
	if err != nil && !services.IsIncompleteLogout(err) {
		respondError(c, err, "Failed to log out.")
		return
	}

	ctrl.Registry.Drop(middleware.VisitorFrom(c))
	middleware.SetVisitorCookie(c, ctrl.Cookie, services.NewVisitorID())

	data := gin.H{"authenticated": false, "complete": err == nil}
	if err != nil {
		data["warning"] = err.Error()
	}
	utils.JSONSuccess(c, http.StatusOK, data)
}

func (ctrl *SessionController) GoogleURL(c *gin.Context) {
	store := middleware.SessionFrom(c)
	redirect, err := store.GoogleAuthURL(c.Request.Context())
	if err != nil {
		respondError(c, err, "Could not connect to Google login.")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"url": redirect})
}
