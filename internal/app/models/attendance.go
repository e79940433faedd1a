package models

import (
	"strconv"
	"time"
)

// SessionKey derives the identifier of one class meeting from the course and
// the calendar day of the date, truncated in UTC. The same function is used
// when probing for an existing session and when writing the batch; both sides
// must agree or the uniqueness guarantee silently breaks.
func SessionKey(courseID int64, date time.Time) string {
	return strconv.FormatInt(courseID, 10) + "_" + date.UTC().Format("2006-01-02")
}

// AttendanceRecord is one student's outcome for one class meeting.
// (student_id, session) is unique: at most one record per student per session.
type AttendanceRecord struct {
	ID         int64            `json:"id" db:"id"`
	CourseID   int64            `json:"courseId" db:"course_id"`
	StudentID  int64            `json:"studentId" db:"student_id"`
	Date       time.Time        `json:"date" db:"date"`
	Status     AttendanceStatus `json:"status" db:"status"`
	MarkedByID int64            `json:"markedById" db:"marked_by"`
	Notes      string           `json:"notes,omitempty" db:"notes"`
	Session    string           `json:"session" db:"session"` // Immutable across updates
	CreatedAt  time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time        `json:"updatedAt" db:"updated_at"`

	// Relations (populated when needed)
	Student  *Profile `json:"student,omitempty"`
	MarkedBy *Profile `json:"markedBy,omitempty"`
	Course   *Course  `json:"course,omitempty"`
}

// StatusCount is one (status, count) pair in a student's summary.
type StatusCount struct {
	Status AttendanceStatus `json:"status"`
	Count  int64            `json:"count"`
}

// StudentSummary is one student's aggregated attendance for a course:
// counts grouped by status plus the total across statuses, joined with the
// student's safe profile.
type StudentSummary struct {
	Student    Profile       `json:"student"`
	Attendance []StatusCount `json:"attendance"`
	Total      int64         `json:"total"`
}

// StudentStatusCount is a stage-one aggregation row: records grouped by
// (student, status).
type StudentStatusCount struct {
	StudentID int64            `db:"student_id"`
	Status    AttendanceStatus `db:"status"`
	Count     int64            `db:"count"`
}

// FlatCounts are the per-status totals for a single student in a course.
type FlatCounts struct {
	Total   int64 `json:"total"`
	Present int64 `json:"present"`
	Absent  int64 `json:"absent"`
	Late    int64 `json:"late"`
	Excused int64 `json:"excused"`
}
