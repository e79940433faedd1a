package models

import (
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID            int64     `json:"id" db:"id" example:"1"`
	Email         string    `json:"email" db:"email" example:"user@school.edu"`
	Password      string    `json:"-" db:"password"` // Hashed password, excluded from JSON
	FirstName     string    `json:"firstName" db:"first_name" example:"John"`
	LastName      string    `json:"lastName" db:"last_name" example:"Doe"`
	RoleType      RoleType  `json:"roleType" db:"role_type" example:"STUDENT"`
	StudentNumber *string   `json:"studentNumber,omitempty" db:"student_number"` // Registrar-issued id, students only
	IsActive      bool      `json:"isActive" db:"is_active" example:"true"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

// Profile is the disclosure-safe projection of a user used in attendance
// summaries and roster listings. It never carries credentials.
type Profile struct {
	ID            int64   `json:"id" db:"id"`
	FirstName     string  `json:"firstName" db:"first_name"`
	LastName      string  `json:"lastName" db:"last_name"`
	Email         string  `json:"email" db:"email"`
	StudentNumber *string `json:"studentNumber,omitempty" db:"student_number"`
}

// AsProfile strips a user down to its safe projection.
func (u *User) AsProfile() Profile {
	return Profile{
		ID:            u.ID,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Email:         u.Email,
		StudentNumber: u.StudentNumber,
	}
}
