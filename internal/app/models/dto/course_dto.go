package dto

// ScheduleRequest represents a weekly meeting slot
type ScheduleRequest struct {
	Day       string `json:"day" binding:"required"`
	StartTime string `json:"startTime" binding:"required"`
	EndTime   string `json:"endTime" binding:"required"`
}

// CreateCourseRequest represents course creation data
type CreateCourseRequest struct {
	Name       string          `json:"name" binding:"required"`
	Code       string          `json:"code" binding:"required"`
	Department string          `json:"department" binding:"required"`
	FacultyID  int64           `json:"facultyId" binding:"required,min=1"`
	Schedule   ScheduleRequest `json:"schedule" binding:"required"`
}

// EnrollStudentsRequest represents a roster addition request
type EnrollStudentsRequest struct {
	StudentIDs []int64 `json:"studentIds" binding:"required,min=1"`
}
