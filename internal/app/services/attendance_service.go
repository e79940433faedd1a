package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rollbook/rollbook/internal/app/auth"
	"github.com/rollbook/rollbook/internal/app/models"
	"github.com/rollbook/rollbook/internal/app/models/dto"
	"github.com/rollbook/rollbook/internal/pkg/apperrors"
	"github.com/rollbook/rollbook/internal/pkg/logger"
)

// AttendanceStore is the persistence surface the attendance service needs.
// *repositories.AttendanceRepository satisfies it.
type AttendanceStore interface {
	SessionExists(ctx context.Context, session string) (bool, error)
	InsertBatch(ctx context.Context, records []*models.AttendanceRecord) error
	GetByID(ctx context.Context, id int64) (*models.AttendanceRecord, error)
	Update(ctx context.Context, rec *models.AttendanceRecord) error
	List(ctx context.Context, courseID int64, studentID *int64) ([]*models.AttendanceRecord, error)
	StatusCounts(ctx context.Context, courseID int64, studentID *int64) ([]models.StudentStatusCount, error)
}

// CourseStore provides course lookups for authorization and enrollment checks.
type CourseStore interface {
	GetByID(ctx context.Context, id int64) (*models.Course, error)
}

// ProfileStore provides the credential-free profile projection.
type ProfileStore interface {
	GetProfilesByIDs(ctx context.Context, ids []int64) (map[int64]models.Profile, error)
}

// AttendanceService records, corrects and aggregates attendance
type AttendanceService struct {
	attendance AttendanceStore
	courses    CourseStore
	users      ProfileStore
}

// NewAttendanceService creates a new attendance service instance
func NewAttendanceService(attendance AttendanceStore, courses CourseStore, users ProfileStore) *AttendanceService {
	return &AttendanceService{
		attendance: attendance,
		courses:    courses,
		users:      users,
	}
}

const dateLayout = "2006-01-02"

// MarkSession records one full session batch. The course must exist and be
// owned by the actor (or the actor is an admin), every proposed student must
// be enrolled, every explicit status must be valid, and the session must not
// have been marked before. The batch is written atomically; a concurrent
// batch for the same session loses on the (student, session) unique index.
func (s *AttendanceService) MarkSession(ctx context.Context, actor auth.Actor, req *dto.MarkAttendanceRequest) ([]*models.AttendanceRecord, error) {
	course, err := s.courses.GetByID(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, apperrors.ErrCourseNotFound
	}

	if err := auth.Require(actor, auth.ActionMark, auth.Resource{CourseFacultyID: course.FacultyID}); err != nil {
		return nil, err
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return nil, apperrors.NewCustomError(apperrors.ErrValidationFailed, "date must be formatted as YYYY-MM-DD")
	}
	session := models.SessionKey(course.ID, date)

	proposed := make([]int64, 0, len(req.Entries))
	seen := make(map[int64]bool, len(req.Entries))
	for _, entry := range req.Entries {
		if seen[entry.StudentID] {
			return nil, apperrors.NewCustomError(apperrors.ErrValidationFailed,
				fmt.Sprintf("student %d appears more than once in the batch", entry.StudentID))
		}
		seen[entry.StudentID] = true
		proposed = append(proposed, entry.StudentID)
	}

	// All-or-nothing enrollment check: one outsider rejects the whole batch.
	if missing := missingEnrollments(course.StudentIDs, proposed); len(missing) > 0 {
		return nil, apperrors.NewEnrollmentViolation(missing)
	}

	records := make([]*models.AttendanceRecord, 0, len(req.Entries))
	for _, entry := range req.Entries {
		status := models.AttendanceStatus(entry.Status)
		if entry.Status == "" {
			status = models.StatusAbsent
		} else if !models.ValidStatus(status) {
			return nil, apperrors.ErrInvalidStatus
		}

		notes := ""
		if entry.Notes != nil {
			notes = *entry.Notes
		}

		records = append(records, &models.AttendanceRecord{
			CourseID:   course.ID,
			StudentID:  entry.StudentID,
			Date:       date,
			Status:     status,
			MarkedByID: actor.ID,
			Notes:      notes,
			Session:    session,
		})
	}

	// Fast-path duplicate probe. The unique index still backs this up when
	// two batches race past the probe at the same time.
	exists, err := s.attendance.SessionExists(ctx, session)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.ErrDuplicateSession
	}

	if err := s.attendance.InsertBatch(ctx, records); err != nil {
		return nil, err
	}

	logger.Info().
		Str("session", session).
		Int64("courseId", course.ID).
		Int("records", len(records)).
		Int64("markedBy", actor.ID).
		Msg("Attendance session recorded")

	return records, nil
}

// UpdateRecord corrects the status and optionally the notes of one record.
// Notes semantics: a nil pointer preserves the stored notes, an empty string
// clears them. The marker is re-stamped to the correcting actor and the
// session key is never touched.
func (s *AttendanceService) UpdateRecord(ctx context.Context, actor auth.Actor, recordID int64, req *dto.UpdateAttendanceRequest) (*models.AttendanceRecord, error) {
	rec, err := s.attendance.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, apperrors.ErrRecordNotFound
	}

	if err := auth.Require(actor, auth.ActionUpdate, auth.Resource{CourseFacultyID: rec.Course.FacultyID}); err != nil {
		return nil, err
	}

	status := models.AttendanceStatus(req.Status)
	if !models.ValidStatus(status) {
		return nil, apperrors.ErrInvalidStatus
	}

	rec.Status = status
	if req.Notes != nil {
		rec.Notes = *req.Notes
	}
	rec.MarkedByID = actor.ID

	if err := s.attendance.Update(ctx, rec); err != nil {
		return nil, err
	}

	logger.Info().
		Int64("recordId", rec.ID).
		Str("status", string(rec.Status)).
		Int64("markedBy", actor.ID).
		Msg("Attendance record updated")

	return rec, nil
}

// ListCourseAttendance returns a course's records newest-first, optionally
// filtered to one student. Student actors are always narrowed to themselves.
func (s *AttendanceService) ListCourseAttendance(ctx context.Context, actor auth.Actor, courseID int64, studentID *int64) ([]*models.AttendanceRecord, error) {
	course, scoped, err := s.authorizeView(ctx, actor, courseID, studentID)
	if err != nil {
		return nil, err
	}

	return s.attendance.List(ctx, course.ID, scoped)
}

// CourseSummary aggregates a course's records per student: counts grouped by
// status plus a total, joined with each student's profile. Rows are ordered
// by student id.
func (s *AttendanceService) CourseSummary(ctx context.Context, actor auth.Actor, courseID int64, studentID *int64) ([]models.StudentSummary, error) {
	course, scoped, err := s.authorizeView(ctx, actor, courseID, studentID)
	if err != nil {
		return nil, err
	}

	counts, err := s.attendance.StatusCounts(ctx, course.ID, scoped)
	if err != nil {
		return nil, err
	}

	grouped := regroupByStudent(counts)

	studentIDs := make([]int64, len(grouped))
	for i, g := range grouped {
		studentIDs[i] = g.StudentID
	}
	profiles, err := s.users.GetProfilesByIDs(ctx, studentIDs)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.StudentSummary, 0, len(grouped))
	for _, g := range grouped {
		summaries = append(summaries, models.StudentSummary{
			Student:    profiles[g.StudentID],
			Attendance: g.Attendance,
			Total:      g.Total,
		})
	}

	return summaries, nil
}

// StudentCourseDetail returns one student's records in a course newest-first
// together with flat per-status counts.
func (s *AttendanceService) StudentCourseDetail(ctx context.Context, actor auth.Actor, courseID, studentID int64) ([]*models.AttendanceRecord, models.FlatCounts, error) {
	var flat models.FlatCounts

	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, flat, err
	}
	if course == nil {
		return nil, flat, apperrors.ErrCourseNotFound
	}

	if err := auth.Require(actor, auth.ActionView, auth.Resource{CourseFacultyID: course.FacultyID, StudentID: studentID}); err != nil {
		return nil, flat, err
	}

	records, err := s.attendance.List(ctx, course.ID, &studentID)
	if err != nil {
		return nil, flat, err
	}

	for _, rec := range records {
		flat.Total++
		switch rec.Status {
		case models.StatusPresent:
			flat.Present++
		case models.StatusAbsent:
			flat.Absent++
		case models.StatusLate:
			flat.Late++
		case models.StatusExcused:
			flat.Excused++
		}
	}

	return records, flat, nil
}

// authorizeView loads the course and applies view scoping for any read path.
func (s *AttendanceService) authorizeView(ctx context.Context, actor auth.Actor, courseID int64, studentID *int64) (*models.Course, *int64, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, nil, err
	}
	if course == nil {
		return nil, nil, apperrors.ErrCourseNotFound
	}

	scoped := auth.ScopeToStudent(actor, studentID)

	resource := auth.Resource{CourseFacultyID: course.FacultyID}
	if scoped != nil {
		resource.StudentID = *scoped
	}
	if err := auth.Require(actor, auth.ActionView, resource); err != nil {
		return nil, nil, err
	}

	return course, scoped, nil
}

// missingEnrollments returns the proposed ids absent from the enrolled set,
// in proposal order. An empty result means the whole batch is enrolled.
func missingEnrollments(enrolled, proposed []int64) []int64 {
	roster := make(map[int64]bool, len(enrolled))
	for _, id := range enrolled {
		roster[id] = true
	}

	var missing []int64
	for _, id := range proposed {
		if !roster[id] {
			missing = append(missing, id)
		}
	}
	return missing
}

// studentGroup is the second aggregation stage output for one student.
type studentGroup struct {
	StudentID  int64
	Attendance []models.StatusCount
	Total      int64
}

// regroupByStudent folds (student, status, count) rows into one group per
// student, preserving the input's student order.
func regroupByStudent(counts []models.StudentStatusCount) []studentGroup {
	var groups []studentGroup
	index := make(map[int64]int)

	for _, c := range counts {
		i, ok := index[c.StudentID]
		if !ok {
			i = len(groups)
			index[c.StudentID] = i
			groups = append(groups, studentGroup{StudentID: c.StudentID})
		}
		groups[i].Attendance = append(groups[i].Attendance, models.StatusCount{
			Status: c.Status,
			Count:  c.Count,
		})
		groups[i].Total += c.Count
	}

	return groups
}
