package models

import "time"

// Schedule is the weekly meeting slot of a course.
type Schedule struct {
	Day       string `json:"day" db:"schedule_day" example:"Monday"`
	StartTime string `json:"startTime" db:"schedule_start" example:"09:00"`
	EndTime   string `json:"endTime" db:"schedule_end" example:"10:30"`
}

// Course represents a course with an owning faculty member and an enrolled
// student roster. The roster is owned by the course and only changes through
// the enroll/unenroll operations.
type Course struct {
	ID         int64     `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	Code       string    `json:"code" db:"code"` // Globally unique
	Department string    `json:"department" db:"department"`
	FacultyID  int64     `json:"facultyId" db:"faculty_id"`
	Schedule   Schedule  `json:"schedule"`
	StudentIDs []int64   `json:"studentIds"` // Enrolled roster, insertion order
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`

	// Relations (populated when needed)
	Faculty  *Profile  `json:"faculty,omitempty"`
	Students []Profile `json:"students,omitempty"`
}
