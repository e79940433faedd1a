package models

// RoleType defines the user role type
type RoleType string

const (
	RoleAdmin   RoleType = "ADMIN"
	RoleFaculty RoleType = "FACULTY"
	RoleStudent RoleType = "STUDENT"
)

// ValidRole reports whether the given value is one of the known roles.
func ValidRole(r RoleType) bool {
	switch r {
	case RoleAdmin, RoleFaculty, RoleStudent:
		return true
	}
	return false
}

// AttendanceStatus is the per-record attendance outcome.
type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "present"
	StatusAbsent  AttendanceStatus = "absent"
	StatusLate    AttendanceStatus = "late"
	StatusExcused AttendanceStatus = "excused"
)

// AllStatuses lists every attendance status in a stable order.
var AllStatuses = []AttendanceStatus{StatusPresent, StatusAbsent, StatusLate, StatusExcused}

// ValidStatus reports whether the given value is in the attendance status enum.
func ValidStatus(s AttendanceStatus) bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate, StatusExcused:
		return true
	}
	return false
}

// ScheduleDays are the accepted values for a course schedule day.
var ScheduleDays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// ValidScheduleDay reports whether day names a weekday.
func ValidScheduleDay(day string) bool {
	for _, d := range ScheduleDays {
		if d == day {
			return true
		}
	}
	return false
}
