package models

import (
	"time"
)

type Role string

const (
	AdminRole   Role = "ADMIN"
	StudentRole Role = "STUDENT"
	DonorRole   Role = "DONOR"
)

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "PENDING"
	VerificationVerified VerificationStatus = "VERIFIED"
	VerificationRejected VerificationStatus = "REJECTED"
)

type User struct {
	ID                 string             `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Email              string             `json:"email" gorm:"uniqueIndex;not null" binding:"required,email"`
	Password           string             `json:"-" gorm:"not null"`
	Name               string             `json:"name"`
	Role               Role               `json:"role" gorm:"type:varchar(20);default:'DONOR'"`
	Country            string             `json:"country"`
	FieldOfStudy       string             `json:"fieldOfStudy"`
	University         string             `json:"university"`
	VerificationStatus VerificationStatus `json:"verificationStatus" gorm:"type:varchar(20);default:'PENDING'"`
	VerifiedAt         *time.Time         `json:"verifiedAt,omitempty"`
	RejectionReason    string             `json:"rejectionReason,omitempty"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`
}

type UserCreate struct {
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=6"`
	Name         string `json:"name" binding:"required"`
	Role         string `json:"role"`
	Country      string `json:"country"`
	FieldOfStudy string `json:"fieldOfStudy"`
	University   string `json:"university"`
}

type UserLogin struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
