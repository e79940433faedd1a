package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rollbook/rollbook/internal/app/controllers"
	"github.com/rollbook/rollbook/internal/app/models"
	"github.com/rollbook/rollbook/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	courseController *controllers.CourseController,
	attendanceController *controllers.AttendanceController,
	authMiddleware *middleware.AuthMiddleware,
) {
	// Operational endpoints
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API version group
	v1 := router.Group("/api/v1")

	v1.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// --- Public auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.POST("/refresh", authController.RefreshToken)
	}

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.POST("/auth/logout", authController.Logout)

		// Admins create non-student accounts through the same handler; the
		// public register route only grants the student role.
		users := authenticated.Group("/users")
		users.Use(authMiddleware.RoleRequired(models.RoleAdmin))
		{
			users.POST("", authController.Register)
		}

		courses := authenticated.Group("/courses")
		{
			courses.GET("", courseController.ListCourses)
			courses.GET("/:id", courseController.GetCourse)

			coursesStaff := courses.Group("")
			coursesStaff.Use(authMiddleware.RoleRequired(models.RoleAdmin, models.RoleFaculty))
			{
				coursesStaff.POST("", courseController.CreateCourse)
				coursesStaff.DELETE("/:id", courseController.DeleteCourse)
				coursesStaff.PUT("/:id/enroll", courseController.EnrollStudents)
				coursesStaff.DELETE("/:id/enroll/:studentId", courseController.UnenrollStudent)
			}
		}

		attendance := authenticated.Group("/attendance")
		{
			attendance.GET("/course/:courseId", attendanceController.GetCourseAttendance)
			attendance.GET("/student/:studentId/course/:courseId", attendanceController.GetStudentCourseAttendance)

			attendanceStaff := attendance.Group("")
			attendanceStaff.Use(authMiddleware.RoleRequired(models.RoleAdmin, models.RoleFaculty))
			{
				attendanceStaff.POST("", attendanceController.MarkAttendance)
				attendanceStaff.PUT("/:id", attendanceController.UpdateAttendance)
			}
		}
	}
}
