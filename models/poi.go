package models

type POICategory string

const (
	POICampground POICategory = "campground"
	POIToilet     POICategory = "toilet"
)

// PointOfInterest is a facility near a listing's location, shown on the map.
type PointOfInterest struct {
	Name      string      `json:"name"`
	Type      POICategory `json:"type"`
	Latitude  float64     `json:"latitude"`
	Longitude float64     `json:"longitude"`
	Address   string      `json:"address"`
}
