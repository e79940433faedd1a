package models

import (
	"testing"
	"time"
)

func TestSessionKey(t *testing.T) {
	utc := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		courseID int64
		date     time.Time
		want     string
	}{
		{
			name:     "midnight UTC",
			courseID: 42,
			date:     utc,
			want:     "42_2026-03-15",
		},
		{
			name:     "time of day is ignored",
			courseID: 42,
			date:     time.Date(2026, 3, 15, 23, 59, 59, 0, time.UTC),
			want:     "42_2026-03-15",
		},
		{
			name:     "non-UTC zone is normalized before truncation",
			courseID: 42,
			date:     time.Date(2026, 3, 15, 22, 0, 0, 0, time.FixedZone("UTC-5", -5*3600)),
			want:     "42_2026-03-16",
		},
		{
			name:     "different course yields different key",
			courseID: 43,
			date:     utc,
			want:     "43_2026-03-15",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SessionKey(tt.courseID, tt.date); got != tt.want {
				t.Errorf("SessionKey(%d, %v) = %q, want %q", tt.courseID, tt.date, got, tt.want)
			}
		})
	}
}

func TestSessionKeyDeterministic(t *testing.T) {
	date := time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC)
	first := SessionKey(7, date)
	for i := 0; i < 10; i++ {
		if got := SessionKey(7, date); got != first {
			t.Fatalf("SessionKey not deterministic: %q != %q", got, first)
		}
	}
}

func TestValidStatus(t *testing.T) {
	for _, status := range AllStatuses {
		if !ValidStatus(status) {
			t.Errorf("ValidStatus(%q) = false, want true", status)
		}
	}

	for _, invalid := range []AttendanceStatus{"", "PRESENT", "tardy", "present "} {
		if ValidStatus(invalid) {
			t.Errorf("ValidStatus(%q) = true, want false", invalid)
		}
	}
}

func TestValidRole(t *testing.T) {
	for _, role := range []RoleType{RoleAdmin, RoleFaculty, RoleStudent} {
		if !ValidRole(role) {
			t.Errorf("ValidRole(%q) = false, want true", role)
		}
	}
	if ValidRole("INSTRUCTOR") {
		t.Error("ValidRole(\"INSTRUCTOR\") = true, want false")
	}
}
