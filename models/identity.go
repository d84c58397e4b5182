package models

// Identity is the signed-in user as reported by GET /api/users/me.
type Identity struct {
	UserID   int64   `json:"user_id"`
	Email    string  `json:"email"`
	Name     string  `json:"name"`
	Picture  *string `json:"picture,omitempty"`
	Balance  float64 `json:"balance"`
	Provider *string `json:"provider,omitempty"`
	SocialID *string `json:"social_id,omitempty"`
}
