package routes

import (
	"github.com/skairipa08/FundEd2/handlers/students"
	"github.com/skairipa08/FundEd2/middleware"

	"github.com/gin-gonic/gin"
)

func StudentsRoutes(r *gin.Engine) {
	studentsRoutes := r.Group("/students")
	studentsRoutes.Use(middleware.JWTAuth())
	{
		studentsRoutes.POST("/profile", students.CreateProfile)
		studentsRoutes.GET("/profile", students.GetProfile)
	}
}
