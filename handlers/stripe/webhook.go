package stripe

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/skairipa08/FundEd2/db"
	"github.com/skairipa08/FundEd2/models"
	"github.com/skairipa08/FundEd2/payments"
	"github.com/skairipa08/FundEd2/utils"

	"github.com/gin-gonic/gin"
	stripe "github.com/stripe/stripe-go/v82"
	"gorm.io/gorm"
)

// errRefundBeforePayment marks a refund that arrived while the donation is
// still PENDING. The delivery is rejected with a 5xx so the provider retries
// it after the payment confirmation has been processed.
var errRefundBeforePayment = errors.New("refund received before payment confirmation")

type Handler struct {
	provider payments.Provider
}

func New(provider payments.Provider) *Handler {
	return &Handler{provider: provider}
}

// HandleWebhook processes Stripe webhook deliveries. Delivery is
// at-least-once and out-of-order, so every transition below is guarded by a
// conditional update and campaign totals are only touched when the guard
// actually flipped the row.
// @Summary Stripe webhook receiver
// @Description Verifies the Stripe signature over the raw body and applies idempotent state transitions to donations and campaigns.
// @Tags donations
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "received: true"
// @Failure 400 {object} map[string]string "error: Invalid signature"
// @Failure 500 {object} map[string]string "error: Webhook not configured"
// @Router /stripe/webhook [post]
func (h *Handler) HandleWebhook(c *gin.Context) {
	const MaxBodyBytes = int64(65536)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes)

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Cannot read request body"})
		return
	}

	// Signature verification runs against the raw body, before any parsing
	sig := c.GetHeader("Stripe-Signature")
	event, err := h.provider.ConstructEvent(payload, sig)
	if err != nil {
		if errors.Is(err, payments.ErrNotConfigured) {
			utils.LogError(err, "Stripe webhook secret not configured")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Webhook not configured"})
			return
		}
		utils.LogSecurityEvent(err, "Stripe webhook signature verification failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid signature"})
		return
	}

	var procErr error

	switch event.Type {
	case "checkout.session.completed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			procErr = err
			break
		}
		if session.PaymentStatus == "paid" {
			procErr = processSuccessfulPayment(&session)
		} else {
			// async payment still pending: record the payment intent now so
			// an out-of-band refund can be correlated before the payment
			// confirmation lands
			procErr = recordPaymentIntent(&session)
		}

	case "checkout.session.async_payment_succeeded":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			procErr = err
			break
		}
		procErr = processSuccessfulPayment(&session)

	case "checkout.session.async_payment_failed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			procErr = err
			break
		}
		procErr = markSessionStatus(session.ID, models.PaymentFailed)

	case "checkout.session.expired":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			procErr = err
			break
		}
		procErr = markSessionStatus(session.ID, models.PaymentExpired)

	case "charge.refunded":
		var charge stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
			procErr = err
			break
		}
		var paymentIntentID string
		if charge.PaymentIntent != nil {
			paymentIntentID = charge.PaymentIntent.ID
		}
		refundAmount := float64(charge.AmountRefunded) / 100
		procErr = processRefund(paymentIntentID, refundAmount)

	default:
		utils.LogInfo("Unhandled Stripe event type: " + string(event.Type))
	}

	if errors.Is(procErr, errRefundBeforePayment) {
		utils.LogWarn("Refund delivery rejected for retry, payment confirmation not processed yet")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Refund received before payment confirmation"})
		return
	}

	// Unprocessable deliveries (unknown session, already-final state) are
	// handled inside the processors and acked. An error surfacing here means
	// the transition rolled back, so ask the provider to redeliver.
	if procErr != nil {
		utils.LogError(procErr, "Error processing Stripe event "+string(event.Type))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error processing event"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// processSuccessfulPayment moves a donation PENDING -> PAID and credits the
// campaign in one transaction: a failed credit rolls back the flip, so the
// redelivery re-applies the whole transition instead of finding an
// already-PAID row with no matching credit. The conditional update is the
// idempotency guard: a redelivery finds zero affected rows and never credits
// the campaign twice.
func processSuccessfulPayment(session *stripe.CheckoutSession) error {
	var paymentIntentID string
	if session.PaymentIntent != nil {
		paymentIntentID = session.PaymentIntent.ID
	}

	return db.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Donation{}).
			Where("stripe_session_id = ? AND payment_status = ?", session.ID, models.PaymentPending).
			Updates(map[string]interface{}{
				"payment_status":        models.PaymentPaid,
				"stripe_payment_intent": paymentIntentID,
			})
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			var donation models.Donation
			if err := tx.First(&donation, "stripe_session_id = ?", session.ID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					utils.LogWarn("No donation found for session " + session.ID)
					return nil
				}
				return err
			}
			utils.LogInfo("Donation for session " + session.ID + " already in state " + string(donation.PaymentStatus))
			return nil
		}

		var donation models.Donation
		if err := tx.First(&donation, "stripe_session_id = ?", session.ID).Error; err != nil {
			return err
		}

		if err := creditCampaign(tx, donation.CampaignID, donation.Amount); err != nil {
			return err
		}

		utils.LogSuccess("Processed payment for session " + session.ID)
		return nil
	})
}

// recordPaymentIntent stores the charge reference on a still pending donation
// without changing its state.
func recordPaymentIntent(session *stripe.CheckoutSession) error {
	if session.PaymentIntent == nil || session.PaymentIntent.ID == "" {
		return nil
	}
	return db.DB.Model(&models.Donation{}).
		Where("stripe_session_id = ? AND payment_status = ?", session.ID, models.PaymentPending).
		Update("stripe_payment_intent", session.PaymentIntent.ID).Error
}

// markSessionStatus moves a donation PENDING -> FAILED/EXPIRED. Neither
// transition touches campaign totals, and neither overwrites a donation that
// already reached PAID.
func markSessionStatus(sessionID string, status models.PaymentStatus) error {
	res := db.DB.Model(&models.Donation{}).
		Where("stripe_session_id = ? AND payment_status = ?", sessionID, models.PaymentPending).
		Update("payment_status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		utils.LogWarn("No pending donation for session " + sessionID + ", " + string(status) + " event ignored")
		return nil
	}
	utils.LogInfo("Marked donation for session " + sessionID + " as " + string(status))
	return nil
}

// processRefund moves a donation PAID -> REFUNDED and debits the campaign in
// one transaction, mirroring processSuccessfulPayment: a failed debit rolls
// back the flip so the redelivery retries it. Refund events only carry the
// charge reference, so correlation goes through the payment intent, not the
// session id.
func processRefund(paymentIntentID string, refundAmount float64) error {
	if paymentIntentID == "" {
		utils.LogWarn("Refund event without payment intent reference, dropped")
		return nil
	}

	now := time.Now()
	return db.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Donation{}).
			Where("stripe_payment_intent = ? AND payment_status = ?", paymentIntentID, models.PaymentPaid).
			Updates(map[string]interface{}{
				"payment_status": models.PaymentRefunded,
				"refund_amount":  refundAmount,
				"refunded_at":    now,
			})
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			var donation models.Donation
			if err := tx.First(&donation, "stripe_payment_intent = ?", paymentIntentID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					// cannot correlate; do not fail the whole delivery
					utils.LogWarn("No donation found for refunded payment intent " + paymentIntentID)
					return nil
				}
				return err
			}
			switch donation.PaymentStatus {
			case models.PaymentRefunded:
				utils.LogInfo("Refund for payment intent " + paymentIntentID + " already processed")
				return nil
			case models.PaymentPending:
				return errRefundBeforePayment
			default:
				utils.LogWarn("Refund for donation in state " + string(donation.PaymentStatus) + " ignored")
				return nil
			}
		}

		var donation models.Donation
		if err := tx.First(&donation, "stripe_payment_intent = ?", paymentIntentID).Error; err != nil {
			return err
		}

		if err := debitCampaign(tx, donation.CampaignID, refundAmount); err != nil {
			return err
		}

		utils.LogSuccess("Processed refund for payment intent " + paymentIntentID)
		return nil
	})
}

// creditCampaign adjusts the aggregate with atomic arithmetic updates, never
// read-modify-write, so concurrent confirmations on the same campaign cannot
// lose updates. It runs on the caller's transaction so the adjustment commits
// or rolls back together with the donation state flip.
func creditCampaign(tx *gorm.DB, campaignID string, amount float64) error {
	res := tx.Model(&models.Campaign{}).
		Where("id = ?", campaignID).
		Updates(map[string]interface{}{
			"raised_amount": gorm.Expr("raised_amount + ?", amount),
			"donor_count":   gorm.Expr("donor_count + ?", 1),
		})
	if res.Error != nil {
		return res.Error
	}

	// completion is one-directional: a later refund dropping the total back
	// under target does not reopen the campaign
	return tx.Model(&models.Campaign{}).
		Where("id = ? AND status = ? AND raised_amount >= target_amount", campaignID, models.CampaignActive).
		Update("status", models.CampaignCompleted).Error
}

func debitCampaign(tx *gorm.DB, campaignID string, amount float64) error {
	return tx.Model(&models.Campaign{}).
		Where("id = ?", campaignID).
		Updates(map[string]interface{}{
			"raised_amount": gorm.Expr("raised_amount - ?", amount),
			"donor_count":   gorm.Expr("donor_count - ?", 1),
		}).Error
}
