package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"caravan-share/middleware"
	"caravan-share/models"
	"caravan-share/services"
	"caravan-share/utils"

	"github.com/gin-gonic/gin"
)

type reservationPayload struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type ReservationController struct {
	Submitter *services.ReservationSubmitter
	// Journal is nil when the booking journal is disabled.
	Journal *services.BookingJournal
}

func NewReservationController(submitter *services.ReservationSubmitter, journal *services.BookingJournal) *ReservationController {
	return &ReservationController{Submitter: submitter, Journal: journal}
}

// CreateReservation runs one booking attempt for caravan :id.
func (ctrl *ReservationController) CreateReservation(c *gin.Context) {
	caravanID, err := strconv.ParseInt(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || caravanID <= 0 {
		utils.JSONError(c, http.StatusNotFound, "caravan not found")
		return
	}

	var payload reservationPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid payload")
		return
	}

	attempt := ctrl.Submitter.Submit(c.Request.Context(), middleware.SessionFrom(c), models.ReservationRequest{
		CaravanID: caravanID,
		StartDate: payload.StartDate,
		EndDate:   payload.EndDate,
	})

	code := attemptStatus(attempt)
	if attempt.Succeeded() {
		utils.JSONSuccess(c, code, gin.H{
			"reservation_id": attempt.ReservationID(),
			"attempt":        attempt,
		})
		return
	}
	utils.JSONErrorWith(c, code, attempt.Message, gin.H{
		"reason":  attempt.Reason,
		"attempt": attempt,
	})
}

// MyReservations lists the signed-in user's reservations.
func (ctrl *ReservationController) MyReservations(c *gin.Context) {
	reservations, err := ctrl.Submitter.MyReservations(c.Request.Context(), middleware.SessionFrom(c))
	if err != nil {
		respondError(c, err, "Failed to fetch reservations.")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, reservations)
}

// MyAttempts lists the signed-in user's journaled booking attempts.
func (ctrl *ReservationController) MyAttempts(c *gin.Context) {
	if ctrl.Journal == nil {
		utils.JSONError(c, http.StatusNotFound, "booking journal disabled")
		return
	}

	identity := middleware.SessionFrom(c).Identity()
	if identity == nil {
		respondError(c, &services.ValidationError{
			Reason:  services.ReasonAuthRequired,
			Message: "Authentication required: please log in.",
		}, "")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	rows, err := ctrl.Journal.ForUser(c.Request.Context(), identity.UserID, limit)
	if err != nil {
		respondError(c, err, "Failed to load booking attempts.")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, rows)
}
