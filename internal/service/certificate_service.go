package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lumina-lms/lumina-backend/internal/model"
	"github.com/lumina-lms/lumina-backend/internal/repository"
	"github.com/rs/zerolog"
)

// Common certificate errors.
var (
	ErrCertificateNotFound = errors.New("certificate not found")
	ErrCourseNotCompleted  = errors.New("course has not been completed")
)

// CertificateVerification is the public verification result.
type CertificateVerification struct {
	Certificate *model.Certificate `json:"certificate"`
	CourseTitle string             `json:"course_title"`
	HolderName  string             `json:"holder_name"`
}

// CertificateService issues and verifies course completion certificates.
type CertificateService struct {
	certRepo       *repository.CertificateRepository
	enrollmentRepo *repository.EnrollmentRepository
	courseRepo     *repository.CourseRepository
	userRepo       *repository.UserRepository
	log            zerolog.Logger
}

// NewCertificateService creates a new CertificateService.
func NewCertificateService(
	certRepo *repository.CertificateRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	courseRepo *repository.CourseRepository,
	userRepo *repository.UserRepository,
	log zerolog.Logger,
) *CertificateService {
	return &CertificateService{
		certRepo:       certRepo,
		enrollmentRepo: enrollmentRepo,
		courseRepo:     courseRepo,
		userRepo:       userRepo,
		log:            log.With().Str("component", "certificate_service").Logger(),
	}
}

// Issue creates the certificate for a completed enrollment. The insert is
// idempotent on (user, course): repeated calls and concurrent completions
// all converge on the one certificate with its original number.
func (s *CertificateService) Issue(ctx context.Context, userID int, courseID uuid.UUID) (*model.Certificate, error) {
	enrollment, err := s.enrollmentRepo.GetByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		return nil, ErrNotEnrolled
	}
	if enrollment.CompletionPercentage < 100 {
		return nil, ErrCourseNotCompleted
	}

	cert := &model.Certificate{
		UserID:            userID,
		CourseID:          courseID,
		CertificateNumber: certificateNumber(time.Now().UTC(), courseID, userID, randomSuffix()),
	}
	if err := s.certRepo.Create(ctx, cert); err != nil {
		return nil, fmt.Errorf("issue certificate: %w", err)
	}

	s.log.Info().
		Int("user_id", userID).
		Str("course_id", courseID.String()).
		Str("number", cert.CertificateNumber).
		Msg("Certificate issued")
	return cert, nil
}

// GetForCourse retrieves the caller's certificate for a course.
func (s *CertificateService) GetForCourse(ctx context.Context, userID int, courseID uuid.UUID) (*model.Certificate, error) {
	cert, err := s.certRepo.GetByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		return nil, ErrCertificateNotFound
	}
	return cert, nil
}

// ListMine retrieves the caller's certificates.
func (s *CertificateService) ListMine(ctx context.Context, userID int) ([]model.Certificate, error) {
	return s.certRepo.ListByUser(ctx, userID)
}

// Verify resolves a public certificate number to its holder and course.
// This endpoint is unauthenticated; it exposes nothing beyond what the
// printed certificate already shows.
func (s *CertificateService) Verify(ctx context.Context, number string) (*CertificateVerification, error) {
	cert, err := s.certRepo.GetByNumber(ctx, number)
	if err != nil {
		return nil, ErrCertificateNotFound
	}

	verification := &CertificateVerification{Certificate: cert}
	if course, err := s.courseRepo.GetByID(ctx, cert.CourseID); err == nil {
		verification.CourseTitle = course.Title
	}
	if user, err := s.userRepo.GetByID(ctx, cert.UserID); err == nil {
		verification.HolderName = user.Name
	}
	return verification, nil
}

// certificateNumber formats CERT-<year>-<course prefix>-<user>-<suffix>.
// The uniqueness guarantee comes from the database constraint, not from the
// random suffix; the format just keeps numbers human-checkable.
func certificateNumber(issuedAt time.Time, courseID uuid.UUID, userID int, suffix string) string {
	coursePart := strings.ToUpper(strings.ReplaceAll(courseID.String(), "-", ""))[:8]
	return fmt.Sprintf("CERT-%d-%s-%d-%s", issuedAt.Year(), coursePart, userID, suffix)
}

// suffixAlphabet omits easily confused characters (0/O, 1/I/L).
const suffixAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

func randomSuffix() string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing is effectively fatal elsewhere; fall back to
		// a constant and let the unique index arbitrate.
		return "XXXXXX"
	}
	for i, b := range buf {
		buf[i] = suffixAlphabet[int(b)%len(suffixAlphabet)]
	}
	return string(buf)
}
