package donations

import (
	"errors"
	"net/http"

	"github.com/skairipa08/FundEd2/db"
	"github.com/skairipa08/FundEd2/models"
	"github.com/skairipa08/FundEd2/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetDonationStatus reports the current payment state for a checkout session.
// The success page polls it to bridge the gap between the browser redirect
// and the webhook arrival: poll every 2 seconds, give up after 10 attempts.
// PENDING is the only state that warrants another poll; every other state is
// terminal.
// @Summary Donation payment status
// @Description Return the payment state for a checkout session. Clients should poll every 2s, at most 10 times, while the state is PENDING.
// @Tags donations
// @Produce json
// @Param sessionId path string true "Checkout session id"
// @Success 200 {object} utils.Response "data: sessionId, campaignId, amount, paymentStatus, donorName, createdAt"
// @Failure 404 {object} utils.Response "error: Donation not found"
// @Router /donations/status/{sessionId} [get]
func (h *Handler) GetDonationStatus(c *gin.Context) {
	sessionID := c.Param("sessionId")

	var donation models.Donation
	if err := db.DB.First(&donation, "stripe_session_id = ?", sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.SendError(c, http.StatusNotFound, "Donation not found")
			return
		}
		utils.LogError(err, "Error fetching donation for session "+sessionID)
		utils.SendError(c, http.StatusInternalServerError, "Error fetching donation")
		return
	}

	utils.SendSuccess(c, http.StatusOK, "", gin.H{
		"sessionId":     donation.StripeSessionID,
		"campaignId":    donation.CampaignID,
		"amount":        donation.Amount,
		"paymentStatus": donation.PaymentStatus,
		"donorName":     donation.DisplayName(),
		"createdAt":     donation.CreatedAt,
	})
}
