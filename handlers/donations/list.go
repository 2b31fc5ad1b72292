package donations

import (
	"net/http"

	"github.com/skairipa08/FundEd2/db"
	"github.com/skairipa08/FundEd2/models"
	"github.com/skairipa08/FundEd2/utils"

	"github.com/gin-gonic/gin"
)

// GetMyDonations lists the authenticated donor's donation history.
// @Summary List my donations
// @Description Return all donations made by the connected user
// @Tags donations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.Response "data: donations"
// @Failure 401 {object} utils.Response "error: Unauthorized"
// @Router /donations/my [get]
func (h *Handler) GetMyDonations(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		utils.SendError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var donations []models.Donation
	if err := db.DB.Where("donor_id = ?", userID).Order("created_at DESC").Find(&donations).Error; err != nil {
		utils.LogErrorWithUser(userID, err, "Error fetching donations")
		utils.SendError(c, http.StatusInternalServerError, "Error fetching donations")
		return
	}

	utils.SendSuccess(c, http.StatusOK, "", gin.H{"donations": donations})
}

// donorWallEntry is the public projection of a paid donation.
type donorWallEntry struct {
	DonorName string  `json:"donorName"`
	Amount    float64 `json:"amount"`
	CreatedAt string  `json:"createdAt"`
}

// GetCampaignDonations returns the donor wall for a campaign: recent PAID
// donations only, with anonymous entries redacted.
// @Summary Campaign donor wall
// @Description Return the most recent confirmed donations for a campaign
// @Tags donations
// @Produce json
// @Param id path string true "Campaign id"
// @Success 200 {object} utils.Response "data: donations"
// @Router /campaigns/{id}/donations [get]
func (h *Handler) GetCampaignDonations(c *gin.Context) {
	campaignID := c.Param("id")

	var donations []models.Donation
	if err := db.DB.
		Where("campaign_id = ? AND payment_status = ?", campaignID, models.PaymentPaid).
		Order("created_at DESC").
		Limit(20).
		Find(&donations).Error; err != nil {
		utils.LogError(err, "Error fetching donor wall for campaign "+campaignID)
		utils.SendError(c, http.StatusInternalServerError, "Error fetching donations")
		return
	}

	wall := make([]donorWallEntry, 0, len(donations))
	for i := range donations {
		wall = append(wall, donorWallEntry{
			DonorName: donations[i].DisplayName(),
			Amount:    donations[i].Amount,
			CreatedAt: donations[i].CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	utils.SendSuccess(c, http.StatusOK, "", gin.H{"donations": wall})
}
