package services

import (
	"context"

	"github.com/rollbook/rollbook/internal/app/auth"
	"github.com/rollbook/rollbook/internal/app/models"
	"github.com/rollbook/rollbook/internal/app/models/dto"
	"github.com/rollbook/rollbook/internal/pkg/apperrors"
	"github.com/rollbook/rollbook/internal/pkg/logger"
)

// CourseRosterStore is the persistence surface the course service needs.
// *repositories.CourseRepository satisfies it.
type CourseRosterStore interface {
	Create(ctx context.Context, course *models.Course) error
	GetByID(ctx context.Context, id int64) (*models.Course, error)
	List(ctx context.Context, facultyID, studentID *int64) ([]*models.Course, error)
	EnrollStudents(ctx context.Context, courseID int64, studentIDs []int64) error
	UnenrollStudent(ctx context.Context, courseID, studentID int64) error
	Delete(ctx context.Context, id int64) error
}

// UserStore provides user lookups for faculty validation and roster checks.
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	FilterStudentIDs(ctx context.Context, ids []int64) ([]int64, error)
	GetProfilesByIDs(ctx context.Context, ids []int64) (map[int64]models.Profile, error)
}

// CourseService handles course and roster operations
type CourseService struct {
	courses CourseRosterStore
	users   UserStore
}

// NewCourseService creates a new course service instance
func NewCourseService(courses CourseRosterStore, users UserStore) *CourseService {
	return &CourseService{
		courses: courses,
		users:   users,
	}
}

// CreateCourse creates a course. Admins may assign any faculty member;
// faculty may only create courses they own themselves.
func (s *CourseService) CreateCourse(ctx context.Context, actor auth.Actor, req *dto.CreateCourseRequest) (*models.Course, error) {
	if actor.Role != models.RoleAdmin && !(actor.Role == models.RoleFaculty && actor.ID == req.FacultyID) {
		return nil, apperrors.NewForbiddenError("only admins or the owning faculty member can create courses")
	}

	if !models.ValidScheduleDay(req.Schedule.Day) {
		return nil, apperrors.NewCustomError(apperrors.ErrValidationFailed, "schedule day must be a weekday name")
	}

	faculty, err := s.users.GetByID(ctx, req.FacultyID)
	if err != nil {
		return nil, err
	}
	if faculty == nil || faculty.RoleType != models.RoleFaculty {
		return nil, apperrors.ErrInvalidFaculty
	}

	course := &models.Course{
		Name:       req.Name,
		Code:       req.Code,
		Department: req.Department,
		FacultyID:  req.FacultyID,
		Schedule: models.Schedule{
			Day:       req.Schedule.Day,
			StartTime: req.Schedule.StartTime,
			EndTime:   req.Schedule.EndTime,
		},
	}

	if err := s.courses.Create(ctx, course); err != nil {
		return nil, err
	}

	logger.Info().
		Int64("courseId", course.ID).
		Str("code", course.Code).
		Int64("facultyId", course.FacultyID).
		Msg("Course created")

	return course, nil
}

// GetCourse retrieves a course with faculty and roster profiles attached.
// Faculty see only their own courses; students only courses they are
// enrolled in.
func (s *CourseService) GetCourse(ctx context.Context, actor auth.Actor, id int64) (*models.Course, error) {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, apperrors.ErrCourseNotFound
	}

	resource := auth.Resource{CourseFacultyID: course.FacultyID}
	if actor.Role == models.RoleStudent {
		// A student passes the view policy only when enrolled.
		for _, sid := range course.StudentIDs {
			if sid == actor.ID {
				resource.StudentID = actor.ID
				break
			}
		}
	}
	if err := auth.Require(actor, auth.ActionView, resource); err != nil {
		return nil, err
	}

	if err := s.attachProfiles(ctx, course); err != nil {
		return nil, err
	}

	return course, nil
}

// ListCourses retrieves the courses visible to the actor: all for admins,
// owned for faculty, enrolled for students.
func (s *CourseService) ListCourses(ctx context.Context, actor auth.Actor) ([]*models.Course, error) {
	var facultyID, studentID *int64

	switch actor.Role {
	case models.RoleFaculty:
		facultyID = &actor.ID
	case models.RoleStudent:
		studentID = &actor.ID
	}

	return s.courses.List(ctx, facultyID, studentID)
}

// DeleteCourse removes a course. Admins or the owning faculty only.
func (s *CourseService) DeleteCourse(ctx context.Context, actor auth.Actor, id int64) error {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if course == nil {
		return apperrors.ErrCourseNotFound
	}

	if err := auth.Require(actor, auth.ActionUpdate, auth.Resource{CourseFacultyID: course.FacultyID}); err != nil {
		return err
	}

	if err := s.courses.Delete(ctx, id); err != nil {
		return err
	}

	logger.Info().Int64("courseId", id).Int64("deletedBy", actor.ID).Msg("Course deleted")
	return nil
}

// EnrollStudents adds students to a course roster. Every listed id must
// belong to an active student; ids already on the roster are skipped, and
// the call fails when nothing new would be enrolled.
func (s *CourseService) EnrollStudents(ctx context.Context, actor auth.Actor, courseID int64, studentIDs []int64) (*models.Course, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, apperrors.ErrCourseNotFound
	}

	if err := auth.Require(actor, auth.ActionUpdate, auth.Resource{CourseFacultyID: course.FacultyID}); err != nil {
		return nil, err
	}

	valid, err := s.users.FilterStudentIDs(ctx, studentIDs)
	if err != nil {
		return nil, err
	}
	if invalid := missingEnrollments(valid, studentIDs); len(invalid) > 0 {
		return nil, apperrors.NewCustomError(apperrors.ErrInvalidStudentIDs, "").
			WithDetails(map[string]interface{}{"invalidStudents": invalid})
	}

	newcomers := missingEnrollments(course.StudentIDs, studentIDs)
	if len(newcomers) == 0 {
		return nil, apperrors.ErrNothingToEnroll
	}

	if err := s.courses.EnrollStudents(ctx, courseID, newcomers); err != nil {
		return nil, err
	}

	logger.Info().
		Int64("courseId", courseID).
		Int("enrolled", len(newcomers)).
		Msg("Students enrolled")

	return s.courses.GetByID(ctx, courseID)
}

// UnenrollStudent removes one student from a course roster.
func (s *CourseService) UnenrollStudent(ctx context.Context, actor auth.Actor, courseID, studentID int64) error {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return err
	}
	if course == nil {
		return apperrors.ErrCourseNotFound
	}

	if err := auth.Require(actor, auth.ActionUpdate, auth.Resource{CourseFacultyID: course.FacultyID}); err != nil {
		return err
	}

	return s.courses.UnenrollStudent(ctx, courseID, studentID)
}

// attachProfiles loads the faculty and roster profiles of a course.
func (s *CourseService) attachProfiles(ctx context.Context, course *models.Course) error {
	ids := make([]int64, 0, len(course.StudentIDs)+1)
	ids = append(ids, course.FacultyID)
	ids = append(ids, course.StudentIDs...)

	profiles, err := s.users.GetProfilesByIDs(ctx, ids)
	if err != nil {
		return err
	}

	if p, ok := profiles[course.FacultyID]; ok {
		course.Faculty = &p
	}
	course.Students = make([]models.Profile, 0, len(course.StudentIDs))
	for _, sid := range course.StudentIDs {
		if p, ok := profiles[sid]; ok {
			course.Students = append(course.Students, p)
		}
	}

	return nil
}
