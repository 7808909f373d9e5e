package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lumina-lms/lumina-backend/internal/model"
)

// CertificateRepository handles certificate data access.
type CertificateRepository struct {
	pool *pgxpool.Pool
}

// NewCertificateRepository creates a new CertificateRepository.
func NewCertificateRepository(pool *pgxpool.Pool) *CertificateRepository {
	return &CertificateRepository{pool: pool}
}

const certificateColumns = `id, user_id, course_id, certificate_number, issue_date`

// Create issues a certificate. A concurrent or repeated issue for the same
// (user, course) collapses onto the existing row, which is returned with its
// original number intact.
func (r *CertificateRepository) Create(ctx context.Context, c *model.Certificate) error {
	err := r.pool.QueryRow(ctx,
		`WITH ins AS (
		   INSERT INTO certificates (user_id, course_id, certificate_number)
		   VALUES ($1, $2, $3)
		   ON CONFLICT (user_id, course_id) DO NOTHING
		   RETURNING `+certificateColumns+`
		 )
		 SELECT * FROM ins
		 UNION ALL
		 SELECT `+certificateColumns+` FROM certificates WHERE user_id = $1 AND course_id = $2
		 LIMIT 1`,
		c.UserID, c.CourseID, c.CertificateNumber,
	).Scan(&c.ID, &c.UserID, &c.CourseID, &c.CertificateNumber, &c.IssueDate)
	if errors.Is(err, pgx.ErrNoRows) {
		// Losing the insert race exactly as the winner commits leaves the
		// statement's snapshot without the winner's row; a fresh statement
		// sees it.
		err = r.pool.QueryRow(ctx,
			`SELECT `+certificateColumns+` FROM certificates WHERE user_id = $1 AND course_id = $2`,
			c.UserID, c.CourseID,
		).Scan(&c.ID, &c.UserID, &c.CourseID, &c.CertificateNumber, &c.IssueDate)
	}
	return err
}

// GetByUserAndCourse retrieves a certificate.
func (r *CertificateRepository) GetByUserAndCourse(ctx context.Context, userID int, courseID uuid.UUID) (*model.Certificate, error) {
	c := &model.Certificate{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+certificateColumns+`
		 FROM certificates
		 WHERE user_id = $1 AND course_id = $2`,
		userID, courseID,
	).Scan(&c.ID, &c.UserID, &c.CourseID, &c.CertificateNumber, &c.IssueDate)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// GetByNumber retrieves a certificate by its public number, for
// verification.
func (r *CertificateRepository) GetByNumber(ctx context.Context, number string) (*model.Certificate, error) {
	c := &model.Certificate{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+certificateColumns+`
		 FROM certificates
		 WHERE certificate_number = $1`, number,
	).Scan(&c.ID, &c.UserID, &c.CourseID, &c.CertificateNumber, &c.IssueDate)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListByUser retrieves a user's certificates, newest first.
func (r *CertificateRepository) ListByUser(ctx context.Context, userID int) ([]model.Certificate, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+certificateColumns+`
		 FROM certificates
		 WHERE user_id = $1
		 ORDER BY issue_date DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var certs []model.Certificate
	for rows.Next() {
		var c model.Certificate
		if err := rows.Scan(&c.ID, &c.UserID, &c.CourseID, &c.CertificateNumber, &c.IssueDate); err != nil {
			return nil, err
		}
		certs = append(certs, c)
	}
	return certs, rows.Err()
}
