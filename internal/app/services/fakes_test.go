package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rollbook/rollbook/internal/app/models"
	"github.com/rollbook/rollbook/internal/pkg/apperrors"
)

// fakeAttendanceStore is an in-memory AttendanceStore enforcing the same
// (student, session) uniqueness the real schema does.
type fakeAttendanceStore struct {
	records []*models.AttendanceRecord
	nextID  int64
}

func uniqueKey(studentID int64, session string) string {
	return fmt.Sprintf("%d|%s", studentID, session)
}

func (f *fakeAttendanceStore) SessionExists(_ context.Context, session string) (bool, error) {
	for _, r := range f.records {
		if r.Session == session {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAttendanceStore) InsertBatch(_ context.Context, records []*models.AttendanceRecord) error {
	taken := make(map[string]bool, len(f.records))
	for _, r := range f.records {
		taken[uniqueKey(r.StudentID, r.Session)] = true
	}

	// All-or-nothing: reject the whole batch before touching state.
	for _, r := range records {
		key := uniqueKey(r.StudentID, r.Session)
		if taken[key] {
			return apperrors.ErrDuplicateSession
		}
		taken[key] = true
	}

	now := time.Now()
	for _, r := range records {
		f.nextID++
		r.ID = f.nextID
		r.CreatedAt = now
		r.UpdatedAt = now
		cp := *r
		f.records = append(f.records, &cp)
	}
	return nil
}

func (f *fakeAttendanceStore) GetByID(_ context.Context, id int64) (*models.AttendanceRecord, error) {
	for _, r := range f.records {
		if r.ID == id {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeAttendanceStore) Update(_ context.Context, rec *models.AttendanceRecord) error {
	for _, r := range f.records {
		if r.ID == rec.ID {
			r.Status = rec.Status
			r.Notes = rec.Notes
			r.MarkedByID = rec.MarkedByID
			r.UpdatedAt = time.Now()
			rec.UpdatedAt = r.UpdatedAt
			return nil
		}
	}
	return apperrors.ErrRecordNotFound
}

func (f *fakeAttendanceStore) List(_ context.Context, courseID int64, studentID *int64) ([]*models.AttendanceRecord, error) {
	var out []*models.AttendanceRecord
	for _, r := range f.records {
		if r.CourseID != courseID {
			continue
		}
		if studentID != nil && r.StudentID != *studentID {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f *fakeAttendanceStore) StatusCounts(_ context.Context, courseID int64, studentID *int64) ([]models.StudentStatusCount, error) {
	type key struct {
		student int64
		status  models.AttendanceStatus
	}
	counts := make(map[key]int64)
	for _, r := range f.records {
		if r.CourseID != courseID {
			continue
		}
		if studentID != nil && r.StudentID != *studentID {
			continue
		}
		counts[key{r.StudentID, r.Status}]++
	}

	out := make([]models.StudentStatusCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, models.StudentStatusCount{StudentID: k.student, Status: k.status, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StudentID != out[j].StudentID {
			return out[i].StudentID < out[j].StudentID
		}
		return out[i].Status < out[j].Status
	})
	return out, nil
}

// racyAttendanceStore hides existing sessions from the duplicate probe, so a
// batch always reaches the insert path the way a racing writer would.
type racyAttendanceStore struct {
	*fakeAttendanceStore
}

func (r *racyAttendanceStore) SessionExists(context.Context, string) (bool, error) {
	return false, nil
}

// fakeCourseStore is an in-memory CourseRosterStore.
type fakeCourseStore struct {
	courses map[int64]*models.Course
	nextID  int64

	listFacultyID *int64
	listStudentID *int64
}

func newFakeCourseStore(courses ...*models.Course) *fakeCourseStore {
	f := &fakeCourseStore{courses: make(map[int64]*models.Course)}
	for _, c := range courses {
		f.courses[c.ID] = c
		if c.ID > f.nextID {
			f.nextID = c.ID
		}
	}
	return f
}

func (f *fakeCourseStore) Create(_ context.Context, course *models.Course) error {
	for _, c := range f.courses {
		if c.Code == course.Code {
			return apperrors.ErrCourseCodeExists
		}
	}
	f.nextID++
	course.ID = f.nextID
	course.CreatedAt = time.Now()
	f.courses[course.ID] = course
	return nil
}

func (f *fakeCourseStore) GetByID(_ context.Context, id int64) (*models.Course, error) {
	c, ok := f.courses[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	cp.StudentIDs = append([]int64(nil), c.StudentIDs...)
	return &cp, nil
}

func (f *fakeCourseStore) List(_ context.Context, facultyID, studentID *int64) ([]*models.Course, error) {
	f.listFacultyID = facultyID
	f.listStudentID = studentID

	var out []*models.Course
	for _, c := range f.courses {
		if facultyID != nil && c.FacultyID != *facultyID {
			continue
		}
		if studentID != nil {
			enrolled := false
			for _, sid := range c.StudentIDs {
				if sid == *studentID {
					enrolled = true
					break
				}
			}
			if !enrolled {
				continue
			}
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (f *fakeCourseStore) EnrollStudents(_ context.Context, courseID int64, studentIDs []int64) error {
	c, ok := f.courses[courseID]
	if !ok {
		return apperrors.ErrCourseNotFound
	}
	for _, id := range studentIDs {
		already := false
		for _, sid := range c.StudentIDs {
			if sid == id {
				already = true
				break
			}
		}
		if !already {
			c.StudentIDs = append(c.StudentIDs, id)
		}
	}
	return nil
}

func (f *fakeCourseStore) UnenrollStudent(_ context.Context, courseID, studentID int64) error {
	c, ok := f.courses[courseID]
	if !ok {
		return apperrors.ErrCourseNotFound
	}
	for i, sid := range c.StudentIDs {
		if sid == studentID {
			c.StudentIDs = append(c.StudentIDs[:i], c.StudentIDs[i+1:]...)
			return nil
		}
	}
	return apperrors.ErrStudentNotEnrolled
}

func (f *fakeCourseStore) Delete(_ context.Context, id int64) error {
	if _, ok := f.courses[id]; !ok {
		return apperrors.ErrCourseNotFound
	}
	delete(f.courses, id)
	return nil
}

// fakeUserStore is an in-memory UserStore and ProfileStore.
type fakeUserStore struct {
	users map[int64]*models.User
}

func newFakeUserStore(users ...*models.User) *fakeUserStore {
	f := &fakeUserStore{users: make(map[int64]*models.User)}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUserStore) GetByID(_ context.Context, id int64) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	return u, nil
}

func (f *fakeUserStore) FilterStudentIDs(_ context.Context, ids []int64) ([]int64, error) {
	var out []int64
	for _, id := range ids {
		if u, ok := f.users[id]; ok && u.RoleType == models.RoleStudent && u.IsActive {
			out = append(out, id)
		}
	}
	return out, nil
}

func (f *fakeUserStore) GetProfilesByIDs(_ context.Context, ids []int64) (map[int64]models.Profile, error) {
	out := make(map[int64]models.Profile, len(ids))
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out[id] = u.AsProfile()
		}
	}
	return out, nil
}
