package routes

import (
	"github.com/skairipa08/FundEd2/handlers/donations"
	stripehandlers "github.com/skairipa08/FundEd2/handlers/stripe"
	"github.com/skairipa08/FundEd2/lock"
	"github.com/skairipa08/FundEd2/middleware"
	"github.com/skairipa08/FundEd2/payments"

	"github.com/gin-gonic/gin"
)

func DonationsRoutes(r *gin.Engine, provider payments.Provider, locks lock.KeyLocker) {
	donationsHandler := donations.New(provider, locks)
	webhookHandler := stripehandlers.New(provider)

	// Checkout accepts anonymous visitors; a bearer token only enriches the
	// donor identity
	r.POST("/donations/checkout", middleware.OptionalJWTAuth(), donationsHandler.CreateCheckout)
	r.GET("/donations/status/:sessionId", donationsHandler.GetDonationStatus)
	r.GET("/campaigns/:id/donations", donationsHandler.GetCampaignDonations)

	donationsRoutes := r.Group("/donations")
	donationsRoutes.Use(middleware.JWTAuth())
	{
		donationsRoutes.GET("/my", donationsHandler.GetMyDonations)
	}

	r.POST("/stripe/webhook", webhookHandler.HandleWebhook)
}
