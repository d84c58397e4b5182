package models

import "strings"

type CaravanType string

const (
	CaravanMotorhome CaravanType = "Motorhome"
	CaravanCampervan CaravanType = "Campervan"
	CaravanTrailer   CaravanType = "Trailer"
)

// Valid reports whether t is one of the known caravan types (case-insensitive).
func (t CaravanType) Valid() bool {
	for _, known := range []CaravanType{CaravanMotorhome, CaravanCampervan, CaravanTrailer} {
		if strings.EqualFold(string(t), string(known)) {
			return true
		}
	}
	return false
}

type Host struct {
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Listing is a rentable caravan. Owned by the backend; read-only here.
type Listing struct {
	ID            int64       `json:"caravan_id"`
	Name          string      `json:"name"`
	Type          CaravanType `json:"type"`
	PricePerDay   float64     `json:"price_per_day"`
	Location      string      `json:"location,omitempty"`
	Sleeps        int         `json:"sleeps,omitempty"`
	OwnerID       int64       `json:"owner_id"`
	IsAvailable   bool        `json:"is_available"`
	AverageRating float64     `json:"average_rating"`
	ReviewCount   int         `json:"review_count"`
	ImageURL      *string     `json:"image_url,omitempty"`

	Description string   `json:"description,omitempty"`
	Amenities   []string `json:"amenities,omitempty"`
	Host        *Host    `json:"host,omitempty"`
}
