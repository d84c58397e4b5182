package services

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"caravan-share/apiclient"
	"caravan-share/models"

	"github.com/google/uuid"
)

const (
	msgAuthRequired   = "Authentication required: please log in to make a reservation."
	msgMissingDates   = "Please choose both a start date and an end date."
	msgInvalidDate    = "Dates must be in YYYY-MM-DD format."
	msgInvalidRange   = "Start date must be before end date."
	msgSubmitFailed   = "Failed to submit reservation."
	msgReservationsNA = "Failed to fetch reservations."
)

// AttemptState is a booking attempt's position in
// Idle → Validating → Submitting → {Succeeded | Failed}.
type AttemptState string

const (
	StateIdle       AttemptState = "idle"
	StateValidating AttemptState = "validating"
	StateSubmitting AttemptState = "submitting"
	StateSucceeded  AttemptState = "succeeded"
	StateFailed     AttemptState = "failed"
)

// Attempt is the result of one Submit call. Every call returns a new Attempt.
type Attempt struct {
	ID        string                    `json:"attempt_id"`
	Request   models.ReservationRequest `json:"request"`
	UserID    *int64                    `json:"user_id,omitempty"`
	State     AttemptState              `json:"state"`
	Reason    FailureReason             `json:"reason,omitempty"`
	Message   string                    `json:"message,omitempty"`
	Record    *models.ReservationRecord `json:"reservation,omitempty"`
	Trace     []AttemptState            `json:"trace"`
	StartedAt time.Time                 `json:"started_at"`
	EndedAt   time.Time                 `json:"ended_at"`
	// Calls counts requests sent to the reservation endpoint.
	Calls int `json:"-"`
	// Err is the underlying failure, if any.
	Err error `json:"-"`
}

func newAttempt(req models.ReservationRequest, now time.Time) *Attempt {
	return &Attempt{
		ID:        uuid.NewString(),
		Request:   req,
		State:     StateIdle,
		Trace:     []AttemptState{StateIdle},
		StartedAt: now,
	}
}

func (a *Attempt) enter(state AttemptState) {
	a.State = state
	a.Trace = append(a.Trace, state)
}

func (a *Attempt) fail(reason FailureReason, message string, err error) {
	a.Reason = reason
	a.Message = message
	a.Err = err
	a.enter(StateFailed)
}

// Succeeded reports whether the backend confirmed the reservation.
func (a *Attempt) Succeeded() bool { return a.State == StateSucceeded }

// ReservationID returns the confirmed reservation id as a string, or "".
func (a *Attempt) ReservationID() string {
	if a.Record == nil || a.Record.ID == 0 {
		return ""
	}
	return strconv.FormatInt(a.Record.ID, 10)
}

// SessionSource is what the submitter needs from a visitor session.
type SessionSource interface {
	Identity() *models.Identity
	Client() *apiclient.Client
}

// AttemptRecorder receives every finished attempt.
type AttemptRecorder interface {
	Record(ctx context.Context, a *Attempt) error
}

// ReservationSubmitter runs booking attempts against the backend. Local
// checks only fail fast; availability, overlap and price stay with the
// backend.
type ReservationSubmitter struct {
	recorder AttemptRecorder
	now      func() time.Time
}

// NewReservationSubmitter builds a submitter; recorder may be nil.
func NewReservationSubmitter(recorder AttemptRecorder) *ReservationSubmitter {
	return &ReservationSubmitter{recorder: recorder, now: time.Now}
}

// ValidateReservation runs the local checks in order: identity present, both
// dates present, dates parse, start strictly before end. The first failing
// check is returned.
func ValidateReservation(identity *models.Identity, req models.ReservationRequest) (models.Date, models.Date, *ValidationError) {
	if identity == nil {
		return models.Date{}, models.Date{}, &ValidationError{Reason: ReasonAuthRequired, Message: msgAuthRequired}
	}
	if strings.TrimSpace(req.StartDate) == "" || strings.TrimSpace(req.EndDate) == "" {
		return models.Date{}, models.Date{}, &ValidationError{Reason: ReasonMissingDates, Message: msgMissingDates}
	}
	start, err := models.ParseDate(req.StartDate)
	if err != nil {
		return models.Date{}, models.Date{}, &ValidationError{Reason: ReasonInvalidDate, Message: msgInvalidDate}
	}
	end, err := models.ParseDate(req.EndDate)
	if err != nil {
		return models.Date{}, models.Date{}, &ValidationError{Reason: ReasonInvalidDate, Message: msgInvalidDate}
	}
	if !start.Before(end) {
		return models.Date{}, models.Date{}, &ValidationError{Reason: ReasonInvalidRange, Message: msgInvalidRange}
	}
	return start, end, nil
}

// Submit runs one booking attempt. Validation failures send nothing; a valid
// request is sent exactly once with the session's cookies.
func (s *ReservationSubmitter) Submit(ctx context.Context, session SessionSource, req models.ReservationRequest) *Attempt {
	a := newAttempt(req, s.now())
	defer s.finish(ctx, a)

	a.enter(StateValidating)
	identity := session.Identity()
	if identity != nil {
		uid := identity.UserID
		a.UserID = &uid
	}
	start, end, verr := ValidateReservation(identity, req)
	if verr != nil {
		a.fail(verr.Reason, verr.Message, verr)
		return a
	}

	a.enter(StateSubmitting)
	body := models.ReservationRequest{
		CaravanID: req.CaravanID,
		StartDate: start.String(),
		EndDate:   end.String(),
	}
	a.Request = body

	var record models.ReservationRecord
	a.Calls++
	err := session.Client().PostJSON(ctx, apiclient.PathReservations, body, &record)
	if err != nil {
		if apiclient.StatusCode(err) == 0 {
			a.fail(ReasonTransport, msgSubmitFailed, err)
			return a
		}
		msg, ok := apiclient.Detail(err)
		if !ok {
			msg = msgSubmitFailed
		}
		a.fail(ReasonRejected, msg, err)
		return a
	}
	if record.ID == 0 {
		a.fail(ReasonTransport, msgSubmitFailed, fmt.Errorf("services: reservation response without id"))
		return a
	}

	a.Record = &record
	a.enter(StateSucceeded)
	return a
}

func (s *ReservationSubmitter) finish(ctx context.Context, a *Attempt) {
	a.EndedAt = s.now()
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Record(ctx, a); err != nil {
		log.Printf("booking journal: record attempt %s: %v", a.ID, err)
	}
}

// MyReservations returns the signed-in user's reservation history.
func (s *ReservationSubmitter) MyReservations(ctx context.Context, session SessionSource) ([]models.ReservationDetails, error) {
	if session.Identity() == nil {
		return nil, &ValidationError{Reason: ReasonAuthRequired, Message: msgAuthRequired}
	}

	var out []models.ReservationDetails
	if err := session.Client().GetJSON(ctx, apiclient.PathMyReservations, nil, &out); err != nil {
		return nil, asTransport("GET", apiclient.PathMyReservations, fmt.Errorf("%s: %w", msgReservationsNA, err))
	}
	if out == nil {
		out = []models.ReservationDetails{}
	}
	return out, nil
}
