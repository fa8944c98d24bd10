package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	KYCSubmissionPending  = "pending"
	KYCSubmissionApproved = "approved"
	KYCSubmissionRejected = "rejected"
)

// KYCSubmission is an identity verification request reviewed by an admin.
type KYCSubmission struct {
	gorm.Model
	UserID       uint       `gorm:"index;not null" json:"user_id"`
	DocumentType string     `gorm:"not null" json:"document_type"`
	DocumentRef  string     `gorm:"not null" json:"document_ref"`
	Status       string     `gorm:"default:pending" json:"status"`
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty"`
}
