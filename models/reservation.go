package models

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCancelled ReservationStatus = "cancelled"
)

// ReservationRequest is the body of POST /api/reservations. Dates are kept as
// the raw form strings until validation parses them.
type ReservationRequest struct {
	CaravanID int64  `json:"caravan_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// ReservationRecord is the backend's confirmation of a reservation.
type ReservationRecord struct {
	ID         int64             `json:"reservation_id"`
	CaravanID  int64             `json:"caravan_id"`
	StartDate  Date              `json:"start_date"`
	EndDate    Date              `json:"end_date"`
	TotalPrice float64           `json:"total_price"`
	Status     ReservationStatus `json:"status"`
}

// ReservationDetails is one row of the signed-in user's reservation history.
type ReservationDetails struct {
	ID              int64             `json:"reservation_id"`
	StartDate       Date              `json:"start_date"`
	EndDate         Date              `json:"end_date"`
	TotalPrice      float64           `json:"total_price"`
	Status          ReservationStatus `json:"status"`
	CaravanName     string            `json:"caravan_name"`
	CaravanImageURL *string           `json:"caravan_image_url,omitempty"`
}
