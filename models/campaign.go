package models

import (
	"time"
)

type CampaignStatus string

const (
	CampaignActive    CampaignStatus = "ACTIVE"
	CampaignCompleted CampaignStatus = "COMPLETED"
	CampaignCancelled CampaignStatus = "CANCELLED"
	CampaignSuspended CampaignStatus = "SUSPENDED"
)

type CampaignCategory string

const (
	CategoryTuition   CampaignCategory = "TUITION"
	CategoryBooks     CampaignCategory = "BOOKS"
	CategoryLaptop    CampaignCategory = "LAPTOP"
	CategoryHousing   CampaignCategory = "HOUSING"
	CategoryTravel    CampaignCategory = "TRAVEL"
	CategoryEmergency CampaignCategory = "EMERGENCY"
)

// Campaign is the aggregate root for funding totals. RaisedAmount and
// DonorCount are only ever adjusted through atomic increments by the webhook
// processor; they are a cache over the donation ledger and can be recomputed
// from it.
type Campaign struct {
	ID           string           `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	StudentID    string           `json:"studentId" gorm:"type:uuid;not null;index"`
	Title        string           `json:"title" gorm:"not null"`
	Story        string           `json:"story"`
	Category     CampaignCategory `json:"category" gorm:"type:varchar(20);index"`
	TargetAmount float64          `json:"targetAmount" gorm:"not null"`
	RaisedAmount float64          `json:"raisedAmount" gorm:"default:0"`
	DonorCount   int              `json:"donorCount" gorm:"default:0"`
	Timeline     string           `json:"timeline"`
	ImpactLog    string           `json:"impactLog"`
	Status       CampaignStatus   `json:"status" gorm:"type:varchar(20);default:'ACTIVE';index"`
	StatusReason string           `json:"statusReason,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

type CampaignCreate struct {
	Title        string  `json:"title" binding:"required"`
	Story        string  `json:"story" binding:"required"`
	Category     string  `json:"category" binding:"required"`
	TargetAmount float64 `json:"targetAmount" binding:"required,gt=0"`
	Timeline     string  `json:"timeline" binding:"required"`
}

type CampaignStatusUpdate struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason"`
}
