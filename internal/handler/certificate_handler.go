package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lumina-lms/lumina-backend/internal/middleware"
	"github.com/lumina-lms/lumina-backend/internal/response"
	"github.com/lumina-lms/lumina-backend/internal/service"
)

// CertificateHandler handles certificate retrieval and verification.
type CertificateHandler struct {
	certificateService *service.CertificateService
}

// NewCertificateHandler creates a new CertificateHandler.
func NewCertificateHandler(certificateService *service.CertificateService) *CertificateHandler {
	return &CertificateHandler{certificateService: certificateService}
}

// ListMyCertificates godoc
// GET /api/v1/certificates
func (h *CertificateHandler) ListMyCertificates(c *gin.Context) {
	claims := middleware.GetClaims(c)

	certificates, err := h.certificateService.ListMine(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"certificates": certificates})
}

// GetCourseCertificate godoc
// GET /api/v1/courses/:course_id/certificate
func (h *CertificateHandler) GetCourseCertificate(c *gin.Context) {
	claims := middleware.GetClaims(c)
	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	certificate, err := h.certificateService.GetForCourse(c.Request.Context(), claims.UserID, courseID)
	if err != nil {
		if errors.Is(err, service.ErrCertificateNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrCertificateNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"certificate": certificate})
}

// RequestCertificate godoc
// POST /api/v1/courses/:course_id/certificate
// Explicitly requests the certificate for a completed course. Normally the
// certificate is issued automatically when the course completes; this is the
// recovery path when that issuance failed, and is idempotent.
func (h *CertificateHandler) RequestCertificate(c *gin.Context) {
	claims := middleware.GetClaims(c)
	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	certificate, err := h.certificateService.Issue(c.Request.Context(), claims.UserID, courseID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotEnrolled):
			response.Fail(c, http.StatusForbidden, response.ErrEnrollmentRequired)
		case errors.Is(err, service.ErrCourseNotCompleted):
			response.Fail(c, http.StatusBadRequest, response.ErrCourseNotCompleted)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"certificate": certificate})
}

// VerifyCertificate godoc
// GET /api/v1/certificates/verify/:number
// Public endpoint for third parties checking a certificate number.
func (h *CertificateHandler) VerifyCertificate(c *gin.Context) {
	number := c.Param("number")
	if number == "" {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	verification, err := h.certificateService.Verify(c.Request.Context(), number)
	if err != nil {
		if errors.Is(err, service.ErrCertificateNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrCertificateNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"certificate": verification})
}
