package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rollbook/rollbook/internal/app/models"
	"github.com/rollbook/rollbook/internal/pkg/apperrors"
	"github.com/rollbook/rollbook/internal/pkg/dberrors"
)

// CourseRepository handles database operations for courses and their rosters
type CourseRepository struct {
	db *pgxpool.Pool
}

// NewCourseRepository creates a new course repository
func NewCourseRepository(db *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{db: db}
}

const courseColumns = "id, name, code, department, faculty_id, schedule_day, schedule_start, schedule_end, created_at"

func scanCourse(row pgx.Row) (*models.Course, error) {
	var c models.Course
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Code,
		&c.Department,
		&c.FacultyID,
		&c.Schedule.Day,
		&c.Schedule.StartTime,
		&c.Schedule.EndTime,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new course.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	query := `
		INSERT INTO courses (name, code, department, faculty_id, schedule_day, schedule_start, schedule_end)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query,
		course.Name,
		course.Code,
		course.Department,
		course.FacultyID,
		course.Schedule.Day,
		course.Schedule.StartTime,
		course.Schedule.EndTime,
	).Scan(&course.ID, &course.CreatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "courses_code_key") {
			return apperrors.ErrCourseCodeExists
		}
		return fmt.Errorf("error creating course: %w", err)
	}

	return nil
}

// GetByID retrieves a course with its enrolled roster. Returns nil when the
// course does not exist.
func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	course, err := scanCourse(r.db.QueryRow(ctx,
		`SELECT `+courseColumns+` FROM courses WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error retrieving course: %w", err)
	}

	course.StudentIDs, err = r.GetStudentIDs(ctx, id)
	if err != nil {
		return nil, err
	}

	return course, nil
}

// List retrieves courses, optionally restricted to an owning faculty member
// or an enrolled student.
func (r *CourseRepository) List(ctx context.Context, facultyID, studentID *int64) ([]*models.Course, error) {
	query := squirrel.Select(
		"c.id", "c.name", "c.code", "c.department", "c.faculty_id",
		"c.schedule_day", "c.schedule_start", "c.schedule_end", "c.created_at",
	).
		From("courses c").
		OrderBy("c.code").
		PlaceholderFormat(squirrel.Dollar)

	if facultyID != nil {
		query = query.Where("c.faculty_id = ?", *facultyID)
	}
	if studentID != nil {
		query = query.
			Join("course_students cs ON cs.course_id = c.id").
			Where("cs.student_id = ?", *studentID)
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing courses: %w", err)
	}
	defer rows.Close()

	var courses []*models.Course
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning course: %w", err)
		}
		courses = append(courses, course)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, course := range courses {
		course.StudentIDs, err = r.GetStudentIDs(ctx, course.ID)
		if err != nil {
			return nil, err
		}
	}

	return courses, nil
}

// GetStudentIDs returns the enrolled roster of a course in enrollment order.
func (r *CourseRepository) GetStudentIDs(ctx context.Context, courseID int64) ([]int64, error) {
	rows, err := r.db.Query(ctx, `
		SELECT student_id
		FROM course_students
		WHERE course_id = $1
		ORDER BY enrolled_at, student_id
	`, courseID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving course roster: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// EnrollStudents adds the given students to a course roster. Ids already on
// the roster are left untouched.
func (r *CourseRepository) EnrollStudents(ctx context.Context, courseID int64, studentIDs []int64) error {
	for _, id := range studentIDs {
		_, err := r.db.Exec(ctx, `
			INSERT INTO course_students (course_id, student_id)
			VALUES ($1, $2)
			ON CONFLICT (course_id, student_id) DO NOTHING
		`, courseID, id)
		if err != nil {
			return fmt.Errorf("error enrolling student %d: %w", id, err)
		}
	}
	return nil
}

// UnenrollStudent removes one student from a course roster.
func (r *CourseRepository) UnenrollStudent(ctx context.Context, courseID, studentID int64) error {
	cmdTag, err := r.db.Exec(ctx, `
		DELETE FROM course_students
		WHERE course_id = $1 AND student_id = $2
	`, courseID, studentID)
	if err != nil {
		return fmt.Errorf("error unenrolling student: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotEnrolled
	}

	return nil
}

// Delete removes a course and its roster.
func (r *CourseRepository) Delete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting course: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrCourseNotFound
	}

	return nil
}
