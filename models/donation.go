package models

import (
	"time"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentFailed   PaymentStatus = "FAILED"
	PaymentExpired  PaymentStatus = "EXPIRED"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

// IsTerminal reports whether polling for this donation can stop. PENDING is
// the only state that should cause a client to keep polling.
func (s PaymentStatus) IsTerminal() bool {
	return s != PaymentPending
}

// Donation is one row per payment attempt. Rows are created PENDING by the
// checkout handler and mutated exclusively by the webhook processor
// afterwards; they are never deleted, so the table doubles as the audit trail
// from which campaign totals can be recomputed.
type Donation struct {
	ID                  string        `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	CampaignID          string        `json:"campaignId" gorm:"type:uuid;not null;index"`
	DonorID             *string       `json:"donorId,omitempty" gorm:"type:uuid;index"`
	DonorName           string        `json:"donorName" gorm:"not null"`
	DonorEmail          string        `json:"donorEmail,omitempty"`
	Amount              float64       `json:"amount" gorm:"not null"`
	Currency            string        `json:"currency" gorm:"type:varchar(3);default:'usd'"`
	Anonymous           bool          `json:"anonymous" gorm:"default:false"`
	StripeSessionID     string        `json:"stripeSessionId" gorm:"uniqueIndex;not null"`
	StripePaymentIntent string        `json:"stripePaymentIntent,omitempty" gorm:"index"`
	CheckoutURL         string        `json:"-"`
	PaymentStatus       PaymentStatus `json:"paymentStatus" gorm:"type:varchar(20);default:'PENDING';index"`
	IdempotencyKey      string        `json:"-" gorm:"uniqueIndex;not null"`
	RefundAmount        float64       `json:"refundAmount,omitempty"`
	RefundedAt          *time.Time    `json:"refundedAt,omitempty"`
	CreatedAt           time.Time     `json:"createdAt"`
	UpdatedAt           time.Time     `json:"updatedAt"`
}

// DisplayName is what the donor wall and the status endpoint show.
func (d *Donation) DisplayName() string {
	if d.Anonymous {
		return "Anonymous"
	}
	return d.DonorName
}

type CheckoutRequest struct {
	CampaignID     string  `json:"campaignId" binding:"required"`
	Amount         float64 `json:"amount" binding:"required"`
	DonorName      string  `json:"donorName"`
	DonorEmail     string  `json:"donorEmail"`
	Anonymous      bool    `json:"anonymous"`
	OriginURL      string  `json:"originUrl" binding:"required"`
	IdempotencyKey string  `json:"idempotencyKey"`
}
