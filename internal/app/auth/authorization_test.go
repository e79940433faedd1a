package auth

import (
	"errors"
	"testing"

	"github.com/rollbook/rollbook/internal/app/models"
	"github.com/rollbook/rollbook/internal/pkg/apperrors"
)

func TestDecide(t *testing.T) {
	admin := Actor{ID: 1, Role: models.RoleAdmin}
	owner := Actor{ID: 10, Role: models.RoleFaculty}
	otherFaculty := Actor{ID: 11, Role: models.RoleFaculty}
	student := Actor{ID: 100, Role: models.RoleStudent}

	ownedCourse := Resource{CourseFacultyID: 10}

	tests := []struct {
		name     string
		actor    Actor
		action   Action
		resource Resource
		allowed  bool
	}{
		{"admin marks any course", admin, ActionMark, ownedCourse, true},
		{"admin updates any course", admin, ActionUpdate, ownedCourse, true},
		{"admin views any course", admin, ActionView, ownedCourse, true},

		{"owner marks own course", owner, ActionMark, ownedCourse, true},
		{"owner updates own course", owner, ActionUpdate, ownedCourse, true},
		{"owner views own course", owner, ActionView, ownedCourse, true},

		{"other faculty cannot mark", otherFaculty, ActionMark, ownedCourse, false},
		{"other faculty cannot update", otherFaculty, ActionUpdate, ownedCourse, false},
		{"other faculty cannot view", otherFaculty, ActionView, ownedCourse, false},

		{"student cannot mark", student, ActionMark, Resource{CourseFacultyID: 10, StudentID: 100}, false},
		{"student cannot update", student, ActionUpdate, Resource{CourseFacultyID: 10, StudentID: 100}, false},
		{"student views own records", student, ActionView, Resource{CourseFacultyID: 10, StudentID: 100}, true},
		{"student cannot view others", student, ActionView, Resource{CourseFacultyID: 10, StudentID: 101}, false},
		{"student cannot view course-wide", student, ActionView, ownedCourse, false},

		{"unknown role denied", Actor{ID: 5, Role: "GUEST"}, ActionView, ownedCourse, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decide(tt.actor, tt.action, tt.resource)
			if d.Allowed != tt.allowed {
				t.Errorf("Decide(%+v, %q, %+v).Allowed = %v, want %v",
					tt.actor, tt.action, tt.resource, d.Allowed, tt.allowed)
			}
			if !d.Allowed && d.Reason == "" {
				t.Error("denial carries no reason")
			}
		})
	}
}

func TestRequireMapsDenialToForbidden(t *testing.T) {
	student := Actor{ID: 100, Role: models.RoleStudent}

	err := Require(student, ActionMark, Resource{CourseFacultyID: 10})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Errorf("error %v does not match ErrPermissionDenied", err)
	}

	if err := Require(Actor{ID: 1, Role: models.RoleAdmin}, ActionMark, Resource{}); err != nil {
		t.Errorf("admin should pass, got %v", err)
	}
}

func TestScopeToStudent(t *testing.T) {
	requested := int64(42)

	student := Actor{ID: 100, Role: models.RoleStudent}
	if got := ScopeToStudent(student, &requested); got == nil || *got != 100 {
		t.Errorf("student scope = %v, want 100", got)
	}
	if got := ScopeToStudent(student, nil); got == nil || *got != 100 {
		t.Errorf("student scope with no filter = %v, want 100", got)
	}

	faculty := Actor{ID: 10, Role: models.RoleFaculty}
	if got := ScopeToStudent(faculty, &requested); got == nil || *got != 42 {
		t.Errorf("faculty scope = %v, want 42", got)
	}
	if got := ScopeToStudent(faculty, nil); got != nil {
		t.Errorf("faculty scope with no filter = %v, want nil", got)
	}
}
