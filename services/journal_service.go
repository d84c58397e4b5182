package services

import (
	"context"
	"encoding/json"
	"fmt"

	"caravan-share/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const maxJournalPage = 200

type visitorKey struct{}

// WithVisitorID tags ctx with the visitor whose request is being served.
func WithVisitorID(ctx context.Context, visitorID string) context.Context {
	return context.WithValue(ctx, visitorKey{}, visitorID)
}

// VisitorIDFromContext returns the id set by WithVisitorID, or "".
func VisitorIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(visitorKey{}).(string)
	return id
}

// BookingJournal persists finished booking attempts.
type BookingJournal struct {
	DB *gorm.DB
}

func NewBookingJournal(db *gorm.DB) *BookingJournal {
	return &BookingJournal{DB: db}
}

// Record implements AttemptRecorder.
func (j *BookingJournal) Record(ctx context.Context, a *Attempt) error {
	if a == nil {
		return gorm.ErrInvalidData
	}

	raw, err := json.Marshal(a.Request)
	if err != nil {
		return fmt.Errorf("journal: encode request: %w", err)
	}

	row := models.BookingAttempt{
		AttemptID: a.ID,
		VisitorID: VisitorIDFromContext(ctx),
		UserID:    a.UserID,
		CaravanID: a.Request.CaravanID,
		StartDate: a.Request.StartDate,
		EndDate:   a.Request.EndDate,
		State:     string(a.State),
		Reason:    string(a.Reason),
		Message:   a.Message,
		Request:   datatypes.JSON(raw),
	}
	if a.Record != nil {
		id := a.Record.ID
		row.ReservationID = &id
	}

	if err := j.DB.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("journal: create attempt: %w", err)
	}
	return nil
}

// Recent returns the newest attempts first.
func (j *BookingJournal) Recent(ctx context.Context, limit int) ([]models.BookingAttempt, error) {
	if limit <= 0 || limit > maxJournalPage {
		limit = maxJournalPage
	}
	var rows []models.BookingAttempt
	if err := j.DB.WithContext(ctx).Order("id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("journal: list attempts: %w", err)
	}
	return rows, nil
}

// ForUser returns the attempts made by userID, newest first.
func (j *BookingJournal) ForUser(ctx context.Context, userID int64, limit int) ([]models.BookingAttempt, error) {
	if limit <= 0 || limit > maxJournalPage {
		limit = maxJournalPage
	}
	var rows []models.BookingAttempt
	err := j.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("journal: list attempts for user %d: %w", userID, err)
	}
	return rows, nil
}
