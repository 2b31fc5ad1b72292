package routes

import (
	"github.com/skairipa08/FundEd2/handlers/users"
	"github.com/skairipa08/FundEd2/middleware"

	"github.com/gin-gonic/gin"
)

func UsersRoutes(r *gin.Engine) {
	usersRoutes := r.Group("/users")
	usersRoutes.Use(middleware.JWTAuth())
	{
		usersRoutes.GET("/me", users.GetMe)
	}

	adminRoutes := r.Group("/admin")
	adminRoutes.Use(middleware.AdminAuth())
	{
		adminRoutes.GET("/stats", users.GetPlatformStats)
		adminRoutes.GET("/users", users.GetAllUsers)
		adminRoutes.PUT("/users/:id/role", users.UpdateUserRole)
		adminRoutes.GET("/students/pending", users.GetPendingStudents)
		adminRoutes.PUT("/students/:id/verify", users.VerifyStudent)
	}
}
