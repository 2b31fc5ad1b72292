package routes

import (
	"github.com/skairipa08/FundEd2/handlers/campaigns"
	"github.com/skairipa08/FundEd2/middleware"

	"github.com/gin-gonic/gin"
)

func CampaignsRoutes(r *gin.Engine) {
	// Public routes
	r.GET("/campaigns", campaigns.GetAllCampaigns)

	campaignsRoutes := r.Group("/campaigns")
	campaignsRoutes.Use(middleware.JWTAuth())
	{
		campaignsRoutes.POST("", campaigns.CreateCampaign)
		campaignsRoutes.GET("/my", campaigns.GetMyCampaigns)
	}

	r.GET("/campaigns/:id", campaigns.GetCampaignByID)

	adminRoutes := r.Group("/admin/campaigns")
	adminRoutes.Use(middleware.AdminAuth())
	{
		adminRoutes.PUT("/:id/status", campaigns.UpdateCampaignStatus)
	}
}
