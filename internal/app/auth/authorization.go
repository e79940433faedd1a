package auth

import (
	"github.com/rollbook/rollbook/internal/app/models"
	"github.com/rollbook/rollbook/internal/pkg/apperrors"
)

// Action is an attendance operation subject to the authorization policy.
type Action string

const (
	// ActionMark is marking a session's attendance batch.
	ActionMark Action = "mark"
	// ActionUpdate is mutating a single attendance record.
	ActionUpdate Action = "update"
	// ActionView is reading attendance records or summaries.
	ActionView Action = "view"
)

// Actor is the authenticated user performing an operation.
type Actor struct {
	ID   int64
	Role models.RoleType
}

// Resource describes the thing an action targets, built from data fetched
// from the store — never from client-supplied claims.
type Resource struct {
	// CourseFacultyID is the owning instructor of the target course.
	CourseFacultyID int64
	// StudentID is the subject student of a detail query, or 0 when the
	// resource is course-wide (summary, batch mark).
	StudentID int64
}

// Decision is the outcome of a policy evaluation.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision             { return Decision{Allowed: true} }
func deny(reason string) Decision { return Decision{Allowed: false, Reason: reason} }

// Decide evaluates the role-based access rules:
// admins are always allowed; faculty may mark, update and view only on
// courses they own; students may view only their own records and may never
// mark or update.
func Decide(actor Actor, action Action, resource Resource) Decision {
	switch actor.Role {
	case models.RoleAdmin:
		return allow()

	case models.RoleFaculty:
		switch action {
		case ActionMark, ActionUpdate, ActionView:
			if resource.CourseFacultyID == actor.ID {
				return allow()
			}
			return deny("not course owner")
		}
		return deny("unknown action")

	case models.RoleStudent:
		if action != ActionView {
			return deny("students cannot " + string(action) + " attendance")
		}
		if resource.StudentID == actor.ID {
			return allow()
		}
		return deny("students may only view their own records")
	}

	return deny("unknown role")
}

// Require evaluates the policy and converts a denial into a Forbidden error
// carrying the denial reason.
func Require(actor Actor, action Action, resource Resource) error {
	if d := Decide(actor, action, resource); !d.Allowed {
		return apperrors.NewForbiddenError(d.Reason)
	}
	return nil
}

// ScopeToStudent narrows a requested student filter for summary queries:
// student actors always see only themselves regardless of the requested
// filter; other roles keep the requested scope.
func ScopeToStudent(actor Actor, requested *int64) *int64 {
	if actor.Role == models.RoleStudent {
		id := actor.ID
		return &id
	}
	return requested
}
