package dto

import (
	"time"

	"github.com/rollbook/rollbook/internal/app/models"
)

// AttendanceEntry is one student's proposed mark within a session batch
type AttendanceEntry struct {
	StudentID int64   `json:"studentId" binding:"required,min=1"`
	Status    string  `json:"status,omitempty"`
	Notes     *string `json:"notes,omitempty"`
}

// MarkAttendanceRequest represents a full session batch
type MarkAttendanceRequest struct {
	CourseID int64             `json:"courseId" binding:"required,min=1"`
	Date     string            `json:"date" binding:"required" example:"2026-08-29"`
	Entries  []AttendanceEntry `json:"entries" binding:"required,min=1,dive"`
}

// UpdateAttendanceRequest represents a correction to one record. Notes left
// out of the payload preserve the stored value; an empty string clears it.
type UpdateAttendanceRequest struct {
	Status string  `json:"status" binding:"required"`
	Notes  *string `json:"notes,omitempty"`
}

// AttendanceRecordResponse represents one persisted attendance record
type AttendanceRecordResponse struct {
	ID        int64           `json:"id"`
	CourseID  int64           `json:"courseId"`
	StudentID int64           `json:"studentId"`
	Date      string          `json:"date" example:"2026-08-29"`
	Status    string          `json:"status"`
	Notes     string          `json:"notes,omitempty"`
	Session   string          `json:"session"`
	Student   *models.Profile `json:"student,omitempty"`
	MarkedBy  *models.Profile `json:"markedBy,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// RecordToResponse maps an attendance record onto the response shape
func RecordToResponse(rec *models.AttendanceRecord) AttendanceRecordResponse {
	return AttendanceRecordResponse{
		ID:        rec.ID,
		CourseID:  rec.CourseID,
		StudentID: rec.StudentID,
		Date:      rec.Date.UTC().Format("2006-01-02"),
		Status:    string(rec.Status),
		Notes:     rec.Notes,
		Session:   rec.Session,
		Student:   rec.Student,
		MarkedBy:  rec.MarkedBy,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}

// RecordsToResponse maps a record list onto response shapes
func RecordsToResponse(records []*models.AttendanceRecord) []AttendanceRecordResponse {
	out := make([]AttendanceRecordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, RecordToResponse(rec))
	}
	return out
}
