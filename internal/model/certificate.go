package model

import (
	"time"

	"github.com/google/uuid"
)

// Certificate is the credential issued once a course reaches 100% completion.
// CertificateNumber is generated exactly once and never regenerated.
type Certificate struct {
	ID                uuid.UUID `json:"id"`
	UserID            int       `json:"user_id"`
	CourseID          uuid.UUID `json:"course_id"`
	CertificateNumber string    `json:"certificate_number"`
	IssueDate         time.Time `json:"issue_date"`
}
