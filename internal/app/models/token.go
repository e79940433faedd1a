package models

import "time"

// RefreshToken is a stored long-lived credential used to mint new access
// tokens. RevokedAt is nil while the token is still usable.
type RefreshToken struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"userId"`
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expiresAt"`
	RevokedAt *time.Time `json:"revokedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}
