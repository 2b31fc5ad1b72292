package donations

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/skairipa08/FundEd2/db"
	"github.com/skairipa08/FundEd2/lock"
	"github.com/skairipa08/FundEd2/models"
	"github.com/skairipa08/FundEd2/payments"
	"github.com/skairipa08/FundEd2/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxDonationAmount = 100000

type Handler struct {
	provider payments.Provider
	locks    lock.KeyLocker
}

func New(provider payments.Provider, locks lock.KeyLocker) *Handler {
	return &Handler{provider: provider, locks: locks}
}

// CreateCheckout validates a donation request, deduplicates it by idempotency
// key and creates a hosted checkout session. The PENDING donation row is
// persisted before the checkout URL is returned, so a webhook can never refer
// to a session we have no record of.
// @Summary Create a donation checkout session
// @Description Start a hosted checkout for a campaign donation. Retried requests carrying the same idempotencyKey return the session created by the first request.
// @Tags donations
// @Accept json
// @Produce json
// @Param donation body models.CheckoutRequest true "Donation request"
// @Success 200 {object} utils.Response "data: url, sessionId"
// @Failure 400 {object} utils.Response "error: validation error"
// @Failure 404 {object} utils.Response "error: Campaign not found"
// @Failure 409 {object} utils.Response "error: Campaign is not accepting donations"
// @Failure 502 {object} utils.Response "error: payment provider error"
// @Router /donations/checkout [post]
func (h *Handler) CreateCheckout(c *gin.Context) {
	var req models.CheckoutRequest
	if !utils.ValidateRequestBody(c, &req) {
		return
	}

	if req.Amount <= 0 || req.Amount > maxDonationAmount {
		utils.SendError(c, http.StatusBadRequest, "Amount must be between $0.01 and $100,000")
		return
	}

	// Without an explicit client key the synthesized one carries a random
	// suffix: retried requests that omit the key are NOT deduplicated
	idemKey := req.IdempotencyKey
	if idemKey == "" {
		idemKey = fmt.Sprintf("%s_%g_%s", req.CampaignID, req.Amount, strings.ReplaceAll(uuid.NewString(), "-", "")[:16])
	}

	release, err := h.locks.Acquire(c.Request.Context(), "checkout:"+idemKey)
	if err != nil {
		utils.LogError(err, "Could not acquire idempotency lock for key "+idemKey)
		utils.SendError(c, http.StatusServiceUnavailable, "A request with the same idempotency key is in progress, please retry")
		return
	}
	defer release()

	var existing models.Donation
	err = db.DB.First(&existing, "idempotency_key = ?", idemKey).Error
	if err == nil {
		utils.SendSuccess(c, http.StatusOK, "Existing checkout session returned", gin.H{
			"url":       existing.CheckoutURL,
			"sessionId": existing.StripeSessionID,
		})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.LogError(err, "Error checking idempotency key")
		utils.SendError(c, http.StatusInternalServerError, "Error checking for an existing donation")
		return
	}

	var campaign models.Campaign
	if err := db.DB.First(&campaign, "id = ?", req.CampaignID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.SendError(c, http.StatusNotFound, "Campaign not found")
			return
		}
		utils.LogError(err, "Error fetching campaign "+req.CampaignID)
		utils.SendError(c, http.StatusInternalServerError, "Error fetching campaign")
		return
	}

	if campaign.Status != models.CampaignActive {
		utils.SendError(c, http.StatusConflict, "Campaign is not accepting donations")
		return
	}

	donorName := req.DonorName
	if donorName == "" {
		donorName = "Anonymous"
	}
	donorEmail := req.DonorEmail

	// Donor identity is optional: fall back to the authenticated user when
	// the request supplies nothing
	var donorID *string
	if uid, exists := c.Get("user_id"); exists {
		if id, ok := uid.(string); ok && id != "" {
			donorID = &id
			var donor models.User
			if err := db.DB.First(&donor, "id = ?", id).Error; err == nil {
				if donorEmail == "" {
					donorEmail = donor.Email
				}
				if req.DonorName == "" && donor.Name != "" {
					donorName = donor.Name
				}
			}
		}
	}

	successURL := req.OriginURL + "/donate/success?session_id={CHECKOUT_SESSION_ID}&campaign_id=" + campaign.ID
	cancelURL := req.OriginURL + "/campaign/" + campaign.ID

	var resolvedDonorID string
	if donorID != nil {
		resolvedDonorID = *donorID
	}
	session, err := h.provider.CreateCheckoutSession(payments.CheckoutParams{
		CampaignID:     campaign.ID,
		CampaignTitle:  campaign.Title,
		Amount:         req.Amount,
		DonorID:        resolvedDonorID,
		DonorName:      donorName,
		DonorEmail:     donorEmail,
		Anonymous:      req.Anonymous,
		SuccessURL:     successURL,
		CancelURL:      cancelURL,
		IdempotencyKey: idemKey,
	})
	if err != nil {
		utils.LogError(err, "Error creating checkout session for campaign "+campaign.ID)
		utils.SendError(c, http.StatusBadGateway, "Payment provider error, please retry")
		return
	}

	donation := models.Donation{
		CampaignID:      campaign.ID,
		DonorID:         donorID,
		DonorName:       donorName,
		DonorEmail:      donorEmail,
		Amount:          req.Amount,
		Anonymous:       req.Anonymous,
		StripeSessionID: session.ID,
		CheckoutURL:     session.URL,
		PaymentStatus:   models.PaymentPending,
		IdempotencyKey:  idemKey,
	}

	if err := db.DB.Create(&donation).Error; err != nil {
		// Two concurrent requests with the same key can both pass the lookup;
		// the unique constraint settles the race and the loser returns the
		// winner's session
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if err := db.DB.First(&existing, "idempotency_key = ?", idemKey).Error; err == nil {
				utils.SendSuccess(c, http.StatusOK, "Existing checkout session returned", gin.H{
					"url":       existing.CheckoutURL,
					"sessionId": existing.StripeSessionID,
				})
				return
			}
		}
		utils.LogError(err, "Error recording donation for session "+session.ID)
		utils.SendError(c, http.StatusInternalServerError, "Error recording donation")
		return
	}

	utils.LogSuccess("Checkout session " + session.ID + " created for campaign " + campaign.ID)
	utils.SendSuccess(c, http.StatusOK, "", gin.H{
		"url":       session.URL,
		"sessionId": session.ID,
	})
}
