package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// BookingAttempt is the journal row written for every finished booking attempt.
type BookingAttempt struct {
	ID uint `gorm:"primaryKey" json:"id"`

	AttemptID     string         `gorm:"column:attempt_id;size:36;uniqueIndex" json:"attempt_id"`
	VisitorID     string         `gorm:"column:visitor_id;size:36;index" json:"visitor_id"`
	UserID        *int64         `gorm:"column:user_id;index" json:"user_id,omitempty"`
	CaravanID     int64          `gorm:"column:caravan_id;index" json:"caravan_id"`
	StartDate     string         `gorm:"column:start_date;size:32" json:"start_date"`
	EndDate       string         `gorm:"column:end_date;size:32" json:"end_date"`
	State         string         `gorm:"column:state;size:16;index" json:"state"`
	Reason        string         `gorm:"column:reason;size:64" json:"reason,omitempty"`
	Message       string         `gorm:"column:message;type:text" json:"message,omitempty"`
	ReservationID *int64         `gorm:"column:reservation_id" json:"reservation_id,omitempty"`
	Request       datatypes.JSON `gorm:"column:request" json:"request,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
