package controllers

import (
	"errors"
	"log"
	"net/http"

	"caravan-share/apiclient"
	"caravan-share/services"
	"caravan-share/utils"

	"github.com/gin-gonic/gin"
)

// respondError maps the service error taxonomy onto HTTP statuses.
func respondError(c *gin.Context, err error, fallback string) {
	var (
		authErr  *services.AuthenticationError
		validErr *services.ValidationError
	)
	switch {
	case errors.As(err, &validErr):
		code := http.StatusBadRequest
		if validErr.Reason == services.ReasonAuthRequired {
			code = http.StatusUnauthorized
		}
		utils.JSONErrorWith(c, code, validErr.Message, gin.H{"reason": validErr.Reason})
	case errors.As(err, &authErr):
		utils.JSONError(c, http.StatusUnauthorized, authErr.Message)
	case errors.Is(err, apiclient.ErrNotFound):
		utils.JSONError(c, http.StatusNotFound, "not found")
	default:
		log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		utils.JSONError(c, http.StatusBadGateway, fallback)
	}
}

// attemptStatus picks the HTTP status for a finished booking attempt.
func attemptStatus(a *services.Attempt) int {
	if a.Succeeded() {
		return http.StatusCreated
	}
	switch a.Reason {
	case services.ReasonAuthRequired:
		return http.StatusUnauthorized
	case services.ReasonMissingDates, services.ReasonInvalidDate, services.ReasonInvalidRange:
		return http.StatusBadRequest
	case services.ReasonRejected:
		if code := apiclient.StatusCode(a.Err); code >= 400 && code < 500 {
			return code
		}
	}
	return http.StatusBadGateway
}
