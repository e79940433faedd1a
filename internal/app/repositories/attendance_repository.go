package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rollbook/rollbook/internal/app/models"
	"github.com/rollbook/rollbook/internal/db"
	"github.com/rollbook/rollbook/internal/pkg/apperrors"
	"github.com/rollbook/rollbook/internal/pkg/dberrors"
)

// studentSessionConstraint is the unique index on (student_id, session). It is
// the hard guarantee behind one-record-per-student-per-session: a racing
// duplicate batch fails here even after passing the existence probe.
const studentSessionConstraint = "attendance_student_session_key"

// AttendanceRepository handles database operations for attendance records
type AttendanceRepository struct {
	db *pgxpool.Pool
}

// NewAttendanceRepository creates a new attendance repository
func NewAttendanceRepository(db *pgxpool.Pool) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// SessionExists checks whether any record carries the given session key.
func (r *AttendanceRepository) SessionExists(ctx context.Context, session string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM attendance_records WHERE session = $1)`, session).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking session existence: %w", err)
	}
	return exists, nil
}

// InsertBatch persists all records of one session inside a single
// transaction: either every record is written or none is. A unique violation
// on the (student_id, session) index is reported as ErrDuplicateSession.
func (r *AttendanceRepository) InsertBatch(ctx context.Context, records []*models.AttendanceRecord) error {
	if len(records) == 0 {
		return nil
	}

	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		query := `
			INSERT INTO attendance_records (course_id, student_id, date, status, marked_by, notes, session)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, created_at, updated_at
		`

		for _, rec := range records {
			err := tx.QueryRow(ctx, query,
				rec.CourseID,
				rec.StudentID,
				rec.Date,
				rec.Status,
				rec.MarkedByID,
				rec.Notes,
				rec.Session,
			).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
			if err != nil {
				if dberrors.IsDuplicateConstraintError(err, studentSessionConstraint) {
					return apperrors.ErrDuplicateSession
				}
				return fmt.Errorf("error inserting attendance record: %w", err)
			}
		}

		return nil
	})
}

// GetByID retrieves a record together with its course (for ownership
// checks). Returns nil when the record does not exist.
func (r *AttendanceRepository) GetByID(ctx context.Context, id int64) (*models.AttendanceRecord, error) {
	query := `
		SELECT r.id, r.course_id, r.student_id, r.date, r.status, r.marked_by, r.notes, r.session,
		       r.created_at, r.updated_at,
		       c.name, c.code, c.faculty_id
		FROM attendance_records r
		JOIN courses c ON c.id = r.course_id
		WHERE r.id = $1
	`

	var rec models.AttendanceRecord
	var course models.Course
	err := r.db.QueryRow(ctx, query, id).Scan(
		&rec.ID,
		&rec.CourseID,
		&rec.StudentID,
		&rec.Date,
		&rec.Status,
		&rec.MarkedByID,
		&rec.Notes,
		&rec.Session,
		&rec.CreatedAt,
		&rec.UpdatedAt,
		&course.Name,
		&course.Code,
		&course.FacultyID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error retrieving attendance record: %w", err)
	}

	course.ID = rec.CourseID
	rec.Course = &course
	return &rec, nil
}

// Update applies status, notes and marker to an existing record. The session
// key is deliberately not part of the statement.
func (r *AttendanceRepository) Update(ctx context.Context, rec *models.AttendanceRecord) error {
	query := `
		UPDATE attendance_records
		SET status = $2, notes = $3, marked_by = $4, updated_at = $5
		WHERE id = $1
	`

	now := time.Now()
	cmdTag, err := r.db.Exec(ctx, query, rec.ID, rec.Status, rec.Notes, rec.MarkedByID, now)
	if err != nil {
		return fmt.Errorf("error updating attendance record: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrRecordNotFound
	}

	rec.UpdatedAt = now
	return nil
}

// List retrieves the records of a course newest-first, optionally restricted
// to one student, with student and marker profiles attached.
func (r *AttendanceRepository) List(ctx context.Context, courseID int64, studentID *int64) ([]*models.AttendanceRecord, error) {
	query := squirrel.Select(
		"r.id", "r.course_id", "r.student_id", "r.date", "r.status", "r.marked_by", "r.notes", "r.session",
		"r.created_at", "r.updated_at",
		"s.first_name", "s.last_name", "s.email", "s.student_number",
		"m.first_name", "m.last_name", "m.email",
	).
		From("attendance_records r").
		Join("users s ON s.id = r.student_id").
		Join("users m ON m.id = r.marked_by").
		Where("r.course_id = ?", courseID).
		OrderBy("r.date DESC", "r.id").
		PlaceholderFormat(squirrel.Dollar)

	if studentID != nil {
		query = query.Where("r.student_id = ?", *studentID)
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing attendance records: %w", err)
	}
	defer rows.Close()

	var records []*models.AttendanceRecord
	for rows.Next() {
		var rec models.AttendanceRecord
		var student, marker models.Profile
		err := rows.Scan(
			&rec.ID,
			&rec.CourseID,
			&rec.StudentID,
			&rec.Date,
			&rec.Status,
			&rec.MarkedByID,
			&rec.Notes,
			&rec.Session,
			&rec.CreatedAt,
			&rec.UpdatedAt,
			&student.FirstName,
			&student.LastName,
			&student.Email,
			&student.StudentNumber,
			&marker.FirstName,
			&marker.LastName,
			&marker.Email,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning attendance record: %w", err)
		}
		student.ID = rec.StudentID
		marker.ID = rec.MarkedByID
		rec.Student = &student
		rec.MarkedBy = &marker
		records = append(records, &rec)
	}

	return records, rows.Err()
}

// StatusCounts runs the first aggregation stage: matching records grouped by
// (student, status) with a count per group.
func (r *AttendanceRepository) StatusCounts(ctx context.Context, courseID int64, studentID *int64) ([]models.StudentStatusCount, error) {
	query := squirrel.Select("student_id", "status", "COUNT(*)").
		From("attendance_records").
		Where("course_id = ?", courseID).
		GroupBy("student_id", "status").
		OrderBy("student_id", "status").
		PlaceholderFormat(squirrel.Dollar)

	if studentID != nil {
		query = query.Where("student_id = ?", *studentID)
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error aggregating attendance: %w", err)
	}
	defer rows.Close()

	var counts []models.StudentStatusCount
	for rows.Next() {
		var c models.StudentStatusCount
		if err := rows.Scan(&c.StudentID, &c.Status, &c.Count); err != nil {
			return nil, fmt.Errorf("error scanning aggregation row: %w", err)
		}
		counts = append(counts, c)
	}

	return counts, rows.Err()
}
