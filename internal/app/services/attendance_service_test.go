package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rollbook/rollbook/internal/app/auth"
	"github.com/rollbook/rollbook/internal/app/models"
	"github.com/rollbook/rollbook/internal/app/models/dto"
	"github.com/rollbook/rollbook/internal/pkg/apperrors"
)

var (
	adminActor   = auth.Actor{ID: 1, Role: models.RoleAdmin}
	ownerActor   = auth.Actor{ID: 10, Role: models.RoleFaculty}
	otherFaculty = auth.Actor{ID: 11, Role: models.RoleFaculty}
	studentActor = auth.Actor{ID: 100, Role: models.RoleStudent}
)

func strPtr(s string) *string { return &s }

func newFixture() (*AttendanceService, *fakeAttendanceStore, *fakeCourseStore, *fakeUserStore) {
	course := &models.Course{
		ID:         1,
		Name:       "Algorithms",
		Code:       "CS301",
		Department: "Computer Science",
		FacultyID:  10,
		StudentIDs: []int64{100, 101, 102},
	}
	users := newFakeUserStore(
		&models.User{ID: 10, Email: "faculty@example.edu", FirstName: "Fay", LastName: "Lecturer", RoleType: models.RoleFaculty, IsActive: true},
		&models.User{ID: 100, Email: "s100@example.edu", FirstName: "Ada", LastName: "One", RoleType: models.RoleStudent, IsActive: true},
		&models.User{ID: 101, Email: "s101@example.edu", FirstName: "Ben", LastName: "Two", RoleType: models.RoleStudent, IsActive: true},
		&models.User{ID: 102, Email: "s102@example.edu", FirstName: "Cem", LastName: "Three", RoleType: models.RoleStudent, IsActive: true},
	)
	attendance := &fakeAttendanceStore{}
	courses := newFakeCourseStore(course)
	return NewAttendanceService(attendance, courses, users), attendance, courses, users
}

func markRequest() *dto.MarkAttendanceRequest {
	return &dto.MarkAttendanceRequest{
		CourseID: 1,
		Date:     "2026-03-02",
		Entries: []dto.AttendanceEntry{
			{StudentID: 100, Status: "present"},
			{StudentID: 101},
			{StudentID: 102, Status: "late", Notes: strPtr("bus delay")},
		},
	}
}

func TestMarkSession(t *testing.T) {
	svc, store, _, _ := newFixture()

	records, err := svc.MarkSession(context.Background(), ownerActor, markRequest())
	if err != nil {
		t.Fatalf("MarkSession: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}

	for _, rec := range records {
		if rec.Session != "1_2026-03-02" {
			t.Errorf("session = %q, want 1_2026-03-02", rec.Session)
		}
		if rec.MarkedByID != ownerActor.ID {
			t.Errorf("markedBy = %d, want %d", rec.MarkedByID, ownerActor.ID)
		}
		if rec.ID == 0 {
			t.Error("record was not assigned an id")
		}
	}

	// An omitted status defaults to absent.
	if records[1].Status != models.StatusAbsent {
		t.Errorf("omitted status = %q, want absent", records[1].Status)
	}
	if records[0].Status != models.StatusPresent || records[2].Status != models.StatusLate {
		t.Errorf("explicit statuses not preserved: %q, %q", records[0].Status, records[2].Status)
	}
	if records[2].Notes != "bus delay" {
		t.Errorf("notes = %q, want %q", records[2].Notes, "bus delay")
	}

	if len(store.records) != 3 {
		t.Errorf("store holds %d records, want 3", len(store.records))
	}
}

func TestMarkSessionCourseNotFound(t *testing.T) {
	svc, _, _, _ := newFixture()

	req := markRequest()
	req.CourseID = 999
	_, err := svc.MarkSession(context.Background(), ownerActor, req)
	if !errors.Is(err, apperrors.ErrCourseNotFound) {
		t.Errorf("err = %v, want ErrCourseNotFound", err)
	}
}

func TestMarkSessionAuthorization(t *testing.T) {
	tests := []struct {
		name    string
		actor   auth.Actor
		wantErr bool
	}{
		{"admin allowed", adminActor, false},
		{"owner allowed", ownerActor, false},
		{"other faculty denied", otherFaculty, true},
		{"student denied", studentActor, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, _, _ := newFixture()
			_, err := svc.MarkSession(context.Background(), tt.actor, markRequest())
			if tt.wantErr {
				if !errors.Is(err, apperrors.ErrPermissionDenied) {
					t.Errorf("err = %v, want ErrPermissionDenied", err)
				}
				if len(store.records) != 0 {
					t.Error("denied mark must not persist records")
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestMarkSessionBadDate(t *testing.T) {
	svc, _, _, _ := newFixture()

	req := markRequest()
	req.Date = "02-03-2026"
	_, err := svc.MarkSession(context.Background(), ownerActor, req)
	if !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Errorf("err = %v, want ErrValidationFailed", err)
	}
}

func TestMarkSessionEnrollmentViolation(t *testing.T) {
	svc, store, _, _ := newFixture()

	req := markRequest()
	req.Entries = append(req.Entries,
		dto.AttendanceEntry{StudentID: 999, Status: "present"},
		dto.AttendanceEntry{StudentID: 998},
	)

	_, err := svc.MarkSession(context.Background(), ownerActor, req)
	if !errors.Is(err, apperrors.ErrEnrollmentViolation) {
		t.Fatalf("err = %v, want ErrEnrollmentViolation", err)
	}

	var violation *apperrors.EnrollmentViolationError
	if !errors.As(err, &violation) {
		t.Fatal("error does not carry the offending ids")
	}
	if len(violation.StudentIDs) != 2 || violation.StudentIDs[0] != 999 || violation.StudentIDs[1] != 998 {
		t.Errorf("offending ids = %v, want [999 998]", violation.StudentIDs)
	}

	// One outsider invalidates the entire batch.
	if len(store.records) != 0 {
		t.Errorf("store holds %d records, want 0", len(store.records))
	}
}

func TestMarkSessionInvalidStatus(t *testing.T) {
	svc, store, _, _ := newFixture()

	req := markRequest()
	req.Entries[1].Status = "tardy"

	_, err := svc.MarkSession(context.Background(), ownerActor, req)
	if !errors.Is(err, apperrors.ErrInvalidStatus) {
		t.Errorf("err = %v, want ErrInvalidStatus", err)
	}
	if len(store.records) != 0 {
		t.Error("invalid batch must not persist records")
	}
}

func TestMarkSessionDuplicateStudentInBatch(t *testing.T) {
	svc, store, _, _ := newFixture()

	req := markRequest()
	req.Entries = append(req.Entries, dto.AttendanceEntry{StudentID: 100, Status: "absent"})

	_, err := svc.MarkSession(context.Background(), ownerActor, req)
	if !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Errorf("err = %v, want ErrValidationFailed", err)
	}
	if len(store.records) != 0 {
		t.Error("rejected batch must not persist records")
	}
}

func TestMarkSessionDuplicate(t *testing.T) {
	svc, store, _, _ := newFixture()
	ctx := context.Background()

	if _, err := svc.MarkSession(ctx, ownerActor, markRequest()); err != nil {
		t.Fatalf("first mark: %v", err)
	}

	_, err := svc.MarkSession(ctx, ownerActor, markRequest())
	if !errors.Is(err, apperrors.ErrDuplicateSession) {
		t.Errorf("err = %v, want ErrDuplicateSession", err)
	}
	if len(store.records) != 3 {
		t.Errorf("store holds %d records, want the original 3", len(store.records))
	}

	// The same course on another day is a fresh session.
	req := markRequest()
	req.Date = "2026-03-09"
	if _, err := svc.MarkSession(ctx, ownerActor, req); err != nil {
		t.Errorf("next week's session: %v", err)
	}
}

func TestMarkSessionRaceLosesOnUniqueIndex(t *testing.T) {
	svc, store, courses, users := newFixture()
	ctx := context.Background()

	if _, err := svc.MarkSession(ctx, ownerActor, markRequest()); err != nil {
		t.Fatalf("first mark: %v", err)
	}

	// A racing writer passes the existence probe before the first batch
	// lands. The store-level uniqueness constraint must still reject it.
	racySvc := NewAttendanceService(&racyAttendanceStore{store}, courses, users)
	_, err := racySvc.MarkSession(ctx, ownerActor, markRequest())
	if !errors.Is(err, apperrors.ErrDuplicateSession) {
		t.Errorf("err = %v, want ErrDuplicateSession", err)
	}
	if len(store.records) != 3 {
		t.Errorf("store holds %d records, want the original 3", len(store.records))
	}
}

func seedRecord(store *fakeAttendanceStore, id int64) *models.AttendanceRecord {
	rec := &models.AttendanceRecord{
		ID:         id,
		CourseID:   1,
		StudentID:  100,
		Date:       time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		Status:     models.StatusAbsent,
		MarkedByID: 10,
		Notes:      "left early",
		Session:    "1_2026-03-02",
		Course:     &models.Course{ID: 1, FacultyID: 10},
	}
	store.records = append(store.records, rec)
	if id > store.nextID {
		store.nextID = id
	}
	return rec
}

func TestUpdateRecord(t *testing.T) {
	svc, store, _, _ := newFixture()
	seedRecord(store, 7)

	// Nil notes preserve the stored value.
	updated, err := svc.UpdateRecord(context.Background(), adminActor, 7, &dto.UpdateAttendanceRequest{Status: "excused"})
	if err != nil {
		t.Fatalf("UpdateRecord: %v", err)
	}
	if updated.Status != models.StatusExcused {
		t.Errorf("status = %q, want excused", updated.Status)
	}
	if updated.Notes != "left early" {
		t.Errorf("notes = %q, want preserved %q", updated.Notes, "left early")
	}
	if updated.MarkedByID != adminActor.ID {
		t.Errorf("markedBy = %d, want re-stamped to %d", updated.MarkedByID, adminActor.ID)
	}
	if updated.Session != "1_2026-03-02" {
		t.Errorf("session = %q, must never change", updated.Session)
	}

	// An empty string clears the notes.
	updated, err = svc.UpdateRecord(context.Background(), ownerActor, 7, &dto.UpdateAttendanceRequest{Status: "present", Notes: strPtr("")})
	if err != nil {
		t.Fatalf("UpdateRecord: %v", err)
	}
	if updated.Notes != "" {
		t.Errorf("notes = %q, want cleared", updated.Notes)
	}
	if updated.MarkedByID != ownerActor.ID {
		t.Errorf("markedBy = %d, want %d", updated.MarkedByID, ownerActor.ID)
	}
}

func TestUpdateRecordInvalidStatusLeavesRecordUntouched(t *testing.T) {
	svc, store, _, _ := newFixture()
	seedRecord(store, 7)

	_, err := svc.UpdateRecord(context.Background(), ownerActor, 7, &dto.UpdateAttendanceRequest{Status: "vanished", Notes: strPtr("x")})
	if !errors.Is(err, apperrors.ErrInvalidStatus) {
		t.Fatalf("err = %v, want ErrInvalidStatus", err)
	}

	stored := store.records[0]
	if stored.Status != models.StatusAbsent || stored.Notes != "left early" || stored.MarkedByID != 10 {
		t.Errorf("record mutated by rejected update: %+v", stored)
	}
}

func TestUpdateRecordNotFound(t *testing.T) {
	svc, _, _, _ := newFixture()

	_, err := svc.UpdateRecord(context.Background(), ownerActor, 404, &dto.UpdateAttendanceRequest{Status: "present"})
	if !errors.Is(err, apperrors.ErrRecordNotFound) {
		t.Errorf("err = %v, want ErrRecordNotFound", err)
	}
}

func TestUpdateRecordForbidden(t *testing.T) {
	svc, store, _, _ := newFixture()
	seedRecord(store, 7)

	for _, actor := range []auth.Actor{otherFaculty, studentActor} {
		_, err := svc.UpdateRecord(context.Background(), actor, 7, &dto.UpdateAttendanceRequest{Status: "present"})
		if !errors.Is(err, apperrors.ErrPermissionDenied) {
			t.Errorf("actor %+v: err = %v, want ErrPermissionDenied", actor, err)
		}
	}
}

func seedSummaryRecords(t *testing.T, svc *AttendanceService) {
	t.Helper()
	ctx := context.Background()

	batches := []*dto.MarkAttendanceRequest{
		{CourseID: 1, Date: "2026-03-02", Entries: []dto.AttendanceEntry{
			{StudentID: 100, Status: "present"},
			{StudentID: 101, Status: "late"},
		}},
		{CourseID: 1, Date: "2026-03-09", Entries: []dto.AttendanceEntry{
			{StudentID: 100, Status: "present"},
		}},
		{CourseID: 1, Date: "2026-03-16", Entries: []dto.AttendanceEntry{
			{StudentID: 100, Status: "absent"},
		}},
	}
	for _, b := range batches {
		if _, err := svc.MarkSession(ctx, ownerActor, b); err != nil {
			t.Fatalf("seeding batch %s: %v", b.Date, err)
		}
	}
}

func TestCourseSummary(t *testing.T) {
	svc, _, _, _ := newFixture()
	seedSummaryRecords(t, svc)

	summaries, err := svc.CourseSummary(context.Background(), ownerActor, 1, nil)
	if err != nil {
		t.Fatalf("CourseSummary: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("got %d summary rows, want 2", len(summaries))
	}

	// Ordered by student id: 100 first, then 101.
	s100 := summaries[0]
	if s100.Student.ID != 100 {
		t.Fatalf("first row student = %d, want 100", s100.Student.ID)
	}
	if s100.Total != 3 {
		t.Errorf("student 100 total = %d, want 3", s100.Total)
	}
	wantCounts := map[models.AttendanceStatus]int64{models.StatusPresent: 2, models.StatusAbsent: 1}
	for _, sc := range s100.Attendance {
		if wantCounts[sc.Status] != sc.Count {
			t.Errorf("student 100 %s = %d, want %d", sc.Status, sc.Count, wantCounts[sc.Status])
		}
		delete(wantCounts, sc.Status)
	}
	if len(wantCounts) != 0 {
		t.Errorf("missing status groups: %v", wantCounts)
	}

	s101 := summaries[1]
	if s101.Student.ID != 101 || s101.Total != 1 {
		t.Errorf("second row = student %d total %d, want student 101 total 1", s101.Student.ID, s101.Total)
	}
	if len(s101.Attendance) != 1 || s101.Attendance[0].Status != models.StatusLate || s101.Attendance[0].Count != 1 {
		t.Errorf("student 101 counts = %+v, want one late", s101.Attendance)
	}

	// The joined profile carries identity fields only.
	if s100.Student.Email != "s100@example.edu" || s100.Student.FirstName != "Ada" {
		t.Errorf("profile not joined: %+v", s100.Student)
	}
}

func TestCourseSummaryScopesStudentsToThemselves(t *testing.T) {
	svc, _, _, _ := newFixture()
	seedSummaryRecords(t, svc)

	other := int64(101)
	summaries, err := svc.CourseSummary(context.Background(), studentActor, 1, &other)
	if err != nil {
		t.Fatalf("CourseSummary: %v", err)
	}
	if len(summaries) != 1 || summaries[0].Student.ID != studentActor.ID {
		t.Errorf("student sees %+v, want only their own row", summaries)
	}
}

func TestStudentCourseDetail(t *testing.T) {
	svc, _, _, _ := newFixture()
	seedSummaryRecords(t, svc)

	records, counts, err := svc.StudentCourseDetail(context.Background(), ownerActor, 1, 100)
	if err != nil {
		t.Fatalf("StudentCourseDetail: %v", err)
	}

	if counts.Total != 3 || counts.Present != 2 || counts.Absent != 1 || counts.Late != 0 || counts.Excused != 0 {
		t.Errorf("counts = %+v, want total 3, present 2, absent 1", counts)
	}

	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	// Newest first.
	for i := 1; i < len(records); i++ {
		if records[i].Date.After(records[i-1].Date) {
			t.Errorf("records not ordered newest first: %v before %v", records[i-1].Date, records[i].Date)
		}
	}
}

func TestStudentCourseDetailStudentAccess(t *testing.T) {
	svc, _, _, _ := newFixture()
	seedSummaryRecords(t, svc)
	ctx := context.Background()

	if _, _, err := svc.StudentCourseDetail(ctx, studentActor, 1, 100); err != nil {
		t.Errorf("student reading own detail: %v", err)
	}

	_, _, err := svc.StudentCourseDetail(ctx, studentActor, 1, 101)
	if !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Errorf("student reading another's detail: err = %v, want ErrPermissionDenied", err)
	}
}

func TestMissingEnrollments(t *testing.T) {
	enrolled := []int64{100, 101, 102}

	tests := []struct {
		name     string
		proposed []int64
		want     []int64
	}{
		{"all enrolled", []int64{100, 102}, nil},
		{"empty proposal", nil, nil},
		{"single outsider", []int64{100, 999}, []int64{999}},
		{"proposal order preserved", []int64{999, 100, 998}, []int64{999, 998}},
		{"all outsiders", []int64{5, 6}, []int64{5, 6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := missingEnrollments(enrolled, tt.proposed)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestRegroupByStudent(t *testing.T) {
	counts := []models.StudentStatusCount{
		{StudentID: 100, Status: models.StatusAbsent, Count: 1},
		{StudentID: 100, Status: models.StatusPresent, Count: 2},
		{StudentID: 101, Status: models.StatusLate, Count: 1},
	}

	groups := regroupByStudent(counts)
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if groups[0].StudentID != 100 || groups[0].Total != 3 || len(groups[0].Attendance) != 2 {
		t.Errorf("group 0 = %+v, want student 100 total 3 with 2 status groups", groups[0])
	}
	if groups[1].StudentID != 101 || groups[1].Total != 1 {
		t.Errorf("group 1 = %+v, want student 101 total 1", groups[1])
	}

	if got := regroupByStudent(nil); len(got) != 0 {
		t.Errorf("regrouping no rows = %v, want empty", got)
	}
}
