package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rollbook/rollbook/internal/app/models/dto"
	"github.com/rollbook/rollbook/internal/app/services"
	"github.com/rollbook/rollbook/internal/middleware"
)

// AttendanceController handles attendance-related operations
type AttendanceController struct {
	attendanceService *services.AttendanceService
}

// NewAttendanceController creates a new AttendanceController
func NewAttendanceController(attendanceService *services.AttendanceService) *AttendanceController {
	return &AttendanceController{
		attendanceService: attendanceService,
	}
}

// MarkAttendance records a full session batch
// @Summary Mark attendance for a session
// @Description Records attendance for every listed student of one course meeting. Fails when the session was already marked.
// @Tags attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.MarkAttendanceRequest true "Session batch"
// @Success 201 {object} dto.APIResponse{data=[]dto.AttendanceRecordResponse} "Attendance recorded"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data or enrollment violation"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - not the course owner"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Failure 409 {object} dto.ErrorResponse "Session already marked"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /attendance [post]
func (c *AttendanceController) MarkAttendance(ctx *gin.Context) {
	actor, ok := actorFromContext(ctx)
	if !ok {
		return
	}

	var req dto.MarkAttendanceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid attendance data").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return
	}

	records, err := c.attendanceService.MarkSession(ctx, actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(dto.RecordsToResponse(records)))
}

// UpdateAttendance corrects one attendance record
// @Summary Update an attendance record
// @Description Changes the status (and optionally the notes) of an existing record. The session key never changes.
// @Tags attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Record ID"
// @Param request body dto.UpdateAttendanceRequest true "Correction"
// @Success 200 {object} dto.APIResponse{data=dto.AttendanceRecordResponse} "Record updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid status"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - not the course owner"
// @Failure 404 {object} dto.ErrorResponse "Record not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /attendance/{id} [put]
func (c *AttendanceController) UpdateAttendance(ctx *gin.Context) {
	actor, ok := actorFromContext(ctx)
	if !ok {
		return
	}

	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateAttendanceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid update data").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return
	}

	record, err := c.attendanceService.UpdateRecord(ctx, actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.RecordToResponse(record)))
}

// GetCourseAttendance returns a course's summary and record list
// @Summary Get course attendance
// @Description Returns per-student aggregated counts plus the full record list, newest first. Students only see their own records.
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "Course ID"
// @Param studentId query int false "Restrict to one student"
// @Success 200 {object} dto.APIResponse "Summary and records"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /attendance/course/{courseId} [get]
func (c *AttendanceController) GetCourseAttendance(ctx *gin.Context) {
	actor, ok := actorFromContext(ctx)
	if !ok {
		return
	}

	courseID, ok := parseIDParam(ctx, "courseId")
	if !ok {
		return
	}

	var studentID *int64
	if raw := ctx.Query("studentId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid studentId").
				WithDetails("studentId must be a positive number")
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
			return
		}
		studentID = &id
	}

	summary, err := c.attendanceService.CourseSummary(ctx, actor, courseID, studentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	records, err := c.attendanceService.ListCourseAttendance(ctx, actor, courseID, studentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(gin.H{
		"summary": summary,
		"records": dto.RecordsToResponse(records),
	}))
}

// GetStudentCourseAttendance returns one student's attendance in a course
// @Summary Get a student's attendance in a course
// @Description Returns the student's records newest first together with flat per-status counts.
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param studentId path int true "Student ID"
// @Param courseId path int true "Course ID"
// @Success 200 {object} dto.APIResponse "Records and counts"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /attendance/student/{studentId}/course/{courseId} [get]
func (c *AttendanceController) GetStudentCourseAttendance(ctx *gin.Context) {
	actor, ok := actorFromContext(ctx)
	if !ok {
		return
	}

	studentID, ok := parseIDParam(ctx, "studentId")
	if !ok {
		return
	}
	courseID, ok := parseIDParam(ctx, "courseId")
	if !ok {
		return
	}

	records, counts, err := c.attendanceService.StudentCourseDetail(ctx, actor, courseID, studentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(gin.H{
		"records": dto.RecordsToResponse(records),
		"counts":  counts,
	}))
}
