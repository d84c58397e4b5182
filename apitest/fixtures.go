package apitest

import "caravan-share/models"

func strPtr(s string) *string { return &s }

// Caravans are the listings every fake backend starts with.
func Caravans() []models.Listing {
	return []models.Listing{
		{
			ID:            1,
			Name:          `Modern Motorhome "The Voyager"`,
			Type:          models.CaravanMotorhome,
			PricePerDay:   150,
			Location:      "Seoul, South Korea",
			Sleeps:        4,
			OwnerID:       101,
			IsAvailable:   true,
			AverageRating: 4.8,
			ReviewCount:   12,
			ImageURL:      strPtr("https://placehold.co/600x400/E2E8F0/4A5568?text=Caravan+1"),
			Amenities:     []string{"Kitchen", "Wi-Fi", "Air Conditioning", "Shower", "TV"},
			Host:          &models.Host{Name: "Min-jun Kim"},
		},
		{
			ID:            2,
			Name:          `Vintage Campervan "Daisy"`,
			Type:          models.CaravanCampervan,
			PricePerDay:   90,
			Location:      "Busan, South Korea",
			Sleeps:        2,
			OwnerID:       102,
			IsAvailable:   true,
			AverageRating: 4.6,
			ReviewCount:   8,
			ImageURL:      strPtr("https://placehold.co/600x400/E2E8F0/4A5568?text=Caravan+2"),
			Amenities:     []string{"Kitchenette", "Heating", "Sound System"},
			Host:          &models.Host{Name: "Seo-yeon Park"},
		},
		{
			ID:            3,
			Name:          `Family Sized Trailer "The Nomad"`,
			Type:          models.CaravanTrailer,
			PricePerDay:   120,
			Location:      "Jeju Island, South Korea",
			Sleeps:        6,
			OwnerID:       101,
			IsAvailable:   true,
			AverageRating: 4.9,
			ReviewCount:   21,
			Amenities:     []string{"Full Kitchen", "Bunk Beds", "Awning", "Outdoor Grill"},
			Host:          &models.Host{Name: "Ji-hoon Lee"},
		},
		{
			ID:            4,
			Name:          `Compact Camper "The Adventurer"`,
			Type:          models.CaravanCampervan,
			PricePerDay:   80,
			Location:      "Gyeongju, South Korea",
			Sleeps:        2,
			OwnerID:       104,
			IsAvailable:   true,
			AverageRating: 4.3,
			ReviewCount:   5,
			Amenities:     []string{"Basic Kitchenette", "Portable Toilet", "Heating"},
			Host:          &models.Host{Name: "Ha-eun Choi"},
		},
	}
}

// Facilities are the points of interest keyed by listing location.
func Facilities() map[string][]models.PointOfInterest {
	return map[string][]models.PointOfInterest{
		"Busan, South Korea": {
			{Name: "Dadaepo Beach Campground", Type: models.POICampground, Latitude: 35.047, Longitude: 128.966, Address: "Saha-gu, Busan"},
			{Name: "Haeundae Public Toilet", Type: models.POIToilet, Latitude: 35.158, Longitude: 129.160, Address: "Haeundae-gu, Busan"},
		},
		"Jeju Island, South Korea": {
			{Name: "Hamdeok Campground", Type: models.POICampground, Latitude: 33.543, Longitude: 126.669, Address: "Jocheon-eup, Jeju"},
		},
	}
}

// Account is a user the fake backend can log in.
type Account struct {
	Identity models.Identity
	Password string
}

func Accounts() []Account {
	return []Account{
		{
			Identity: models.Identity{UserID: 1, Email: "minjun@example.com", Name: "Min-jun Kim", Balance: 2000},
			Password: "correct-horse",
		},
		{
			Identity: models.Identity{UserID: 2, Email: "seoyeon@example.com", Name: "Seo-yeon Park", Balance: 500, Provider: strPtr("google"), SocialID: strPtr("g-123")},
			Password: "battery-staple",
		},
	}
}
